package middleware

import (
	"net/http"
	"strings"

	"github.com/lfdantoni/dashboard-ai/internal/user"
)

// RequireActions gates a route on the capability tags granted to the
// authenticated identity. Requirements are fixed at route registration.
// The middleware must be installed after RequireAuth; a missing identity
// is treated as a guard-ordering violation and rejected.
func RequireActions(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				forbidden(w, "User not authenticated")
				return
			}

			if !user.HasAllActions(identity.Actions, required) {
				forbidden(w, "Insufficient permissions. Required actions: "+
					strings.Join(required, ", "))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
