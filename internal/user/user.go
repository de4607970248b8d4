package user

import "time"

// Known action tags. The set is open: the store accepts any tag, these are
// the ones the routes currently care about.
const (
	// ActionAll is the wildcard tag granting every capability.
	ActionAll = "all"
	// ActionAI allows calling the AI analysis endpoint.
	ActionAI = "ai"
)

// User is the persistent record for a Google account that has logged in at
// least once. GoogleID is immutable after creation and globally unique.
type User struct {
	ID          string
	GoogleID    string
	Email       string
	Name        string
	Picture     string
	IsActive    bool
	LastLoginAt time.Time
	Actions     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAllActions reports whether granted covers every required tag. The
// "all" wildcard satisfies any requirement; an empty requirement always
// passes.
func HasAllActions(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(granted))
	for _, a := range granted {
		if a == ActionAll {
			return true
		}
		set[a] = struct{}{}
	}

	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// MissingActions returns the required tags not present in granted, in
// requirement order. Used to build the forbidden-response message.
func MissingActions(granted []string, required []string) []string {
	set := make(map[string]struct{}, len(granted))
	for _, a := range granted {
		set[a] = struct{}{}
	}

	var missing []string
	for _, r := range required {
		if _, ok := set[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
