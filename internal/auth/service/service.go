package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/auth"
	"github.com/lfdantoni/dashboard-ai/internal/auth/verifier"
	"github.com/lfdantoni/dashboard-ai/internal/logger"
	"github.com/lfdantoni/dashboard-ai/internal/user"
)

// session lifetime when the token carries no expiry claim
const defaultSessionTTL = time.Hour

// LoginResult is what a successful login hands back to the transport
// layer: the resolved user, the original Google token to be stored as the
// session credential, and the session expiry in unix seconds.
type LoginResult struct {
	User      *user.User
	IDToken   string
	ExpiresAt int64
}

// Service turns a Google ID token into a local authenticated user. It is
// the only place where users are provisioned; the request guard performs
// lookups exclusively.
type Service struct {
	verifier verifier.Verifier
	users    user.Store
	now      func() time.Time
}

func New(v verifier.Verifier, users user.Store) *Service {
	return &Service{
		verifier: v,
		users:    users,
		now:      time.Now,
	}
}

// Login verifies the token, finds or creates the matching user record and
// returns the session material. The active check runs after find-or-create
// on purpose: login attempts by deactivated accounts still refresh
// last_login_at so they are recorded, not silently dropped.
func (s *Service) Login(ctx context.Context, idToken string) (*LoginResult, error) {
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if claims.Email == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing email or sub", auth.ErrAuthenticationFailed)
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	u, err := s.users.FindOrCreate(ctx, user.NewUser{
		GoogleID: claims.Subject,
		Email:    claims.Email,
		Name:     name,
		Picture:  claims.Picture,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateGoogleID) {
			// the store already retried the race once; treat a second
			// duplicate as a plain failure
			return nil, fmt.Errorf("%w: %v", auth.ErrAuthenticationFailed, err)
		}
		return nil, err
	}

	if !u.IsActive {
		logger.Warn("login attempt by deactivated account",
			zap.String("user_id", u.ID),
		)
		return nil, auth.ErrAccountDeactivated
	}

	expiresAt := claims.ExpiresAt
	if expiresAt == 0 {
		expiresAt = s.now().Add(defaultSessionTTL).Unix()
	}

	logger.Info("user logged in",
		zap.String("user_id", u.ID),
		zap.Int64("expires_at", expiresAt),
	)

	return &LoginResult{
		User:      u,
		IDToken:   idToken,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken exposes the verification step alone, for callers that need
// claim validation without touching the store.
func (s *Service) VerifyToken(ctx context.Context, rawToken string) (*auth.Claims, error) {
	return s.verifier.Verify(ctx, rawToken)
}
