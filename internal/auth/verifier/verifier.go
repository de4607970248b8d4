package verifier

import (
	"context"

	"github.com/lfdantoni/dashboard-ai/internal/auth"
)

// Verifier validates a raw bearer token against the identity provider and
// extracts its claims. Every call re-verifies; results are never cached.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.Claims, error)
}
