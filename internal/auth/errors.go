package auth

import "errors"

var (
	// ErrInvalidToken covers malformed, expired, badly signed or
	// wrong-audience ID tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAuthenticationFailed covers verified tokens whose claims are
	// unusable (missing email or subject) and verification transport
	// failures.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAccountDeactivated is returned when the resolved user exists but
	// has been deactivated.
	ErrAccountDeactivated = errors.New("user account is deactivated")
)
