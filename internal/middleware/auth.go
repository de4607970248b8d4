package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/auth/verifier"
	"github.com/lfdantoni/dashboard-ai/internal/logger"
	"github.com/lfdantoni/dashboard-ai/internal/session"
	"github.com/lfdantoni/dashboard-ai/internal/user"
)

// Identity is the per-request view of the authenticated user, built by the
// auth guard from the stored record. Actions is a snapshot taken at
// resolution time, not a live reference.
type Identity struct {
	UserID   string
	Email    string
	Name     string
	Picture  string
	GoogleID string
	Actions  []string
}

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity. Exported for
// handler tests; production code attaches identities only through the
// guard.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// AuthGuard is the single authentication enforcement point for protected
// routes. It verifies the bearer token and looks the user up; it never
// provisions users, that is the login flow's job.
type AuthGuard struct {
	verifier verifier.Verifier
	users    user.Store
}

func NewAuthGuard(v verifier.Verifier, users user.Store) *AuthGuard {
	return &AuthGuard{verifier: v, users: users}
}

func (g *AuthGuard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token: session cookie first, then bearer header
		token := extractToken(r)
		if token == "" {
			unauthorized(w, "No token provided")
			return
		}

		ctx := r.Context()

		// 2. Verify against Google
		claims, err := g.verifier.Verify(ctx, token)
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		if claims.Subject == "" {
			unauthorized(w, "Invalid token: missing Google ID")
			return
		}

		// 3. Lookup-only: the guard never creates users
		u, err := g.users.FindByGoogleID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				unauthorized(w, "User not found")
				return
			}
			// storage failures are recovered into a rejection, never a
			// crash, and never leak detail to the caller
			logger.Error("auth guard store lookup failed", zap.Error(err))
			unauthorized(w, "Invalid token")
			return
		}

		if !u.IsActive {
			unauthorized(w, "User account is deactivated")
			return
		}

		// 4. Attach identity and continue
		identity := &Identity{
			UserID:   u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Picture:  u.Picture,
			GoogleID: u.GoogleID,
			Actions:  append([]string(nil), u.Actions...),
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter, reason string) {
	writeJSONError(w, http.StatusUnauthorized, reason)
}

func forbidden(w http.ResponseWriter, reason string) {
	writeJSONError(w, http.StatusForbidden, reason)
}

func writeJSONError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}
