package auth

// Claims is the normalized result of verifying a Google ID token.
// It contains facts asserted by the identity provider, no decisions.
// Instances are produced fresh per verification and never persisted.
type Claims struct {
	Subject   string // stable Google user identifier (sub)
	Email     string
	Name      string
	Picture   string
	IssuedAt  int64 // unix seconds
	ExpiresAt int64 // unix seconds
}
