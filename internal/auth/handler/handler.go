package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/auth"
	"github.com/lfdantoni/dashboard-ai/internal/auth/service"
	"github.com/lfdantoni/dashboard-ai/internal/logger"
	"github.com/lfdantoni/dashboard-ai/internal/middleware"
	"github.com/lfdantoni/dashboard-ai/internal/session"
	"github.com/lfdantoni/dashboard-ai/internal/user"
)

// AuthService is the login flow the handler depends on.
type AuthService interface {
	Login(ctx context.Context, idToken string) (*service.LoginResult, error)
}

type Handler struct {
	auth       AuthService
	google     OAuthFlow
	cookieOpts session.Options
	now        func() time.Time
}

func NewHandler(authService AuthService, google OAuthFlow, production bool) *Handler {
	return &Handler{
		auth:       authService,
		google:     google,
		cookieOpts: session.OptionsForEnv(production),
		now:        time.Now,
	}
}

type loginRequest struct {
	IDToken string `json:"idToken"`
}

// Login exchanges a Google ID token for a session: the token is verified,
// the user record is found or created, and the token itself is set as the
// HTTP-only session cookie with the token's remaining lifetime.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.IDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "ID token is required"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		h.rejectLogin(c, err)
		return
	}

	h.issueSession(c, res)

	c.JSON(http.StatusOK, gin.H{
		"user": userPayload(res.User),
	})
}

// Verify reports the identity attached by the auth guard. The guard has
// already re-verified the token and checked the account, so this is a pure
// read of the request context.
func (h *Handler) Verify(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		// guard ordering violated; fail closed
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       identity.UserID,
			"email":    identity.Email,
			"name":     identity.Name,
			"picture":  identity.Picture,
			"googleId": identity.GoogleID,
		},
	})
}

// Logout clears the session cookie. No auth required; logging out twice is
// a no-op.
func (h *Handler) Logout(c *gin.Context) {
	session.ClearToken(c.Writer, h.cookieOpts)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) issueSession(c *gin.Context, res *service.LoginResult) {
	maxAge := int(res.ExpiresAt - h.now().Unix())
	if maxAge < 0 {
		maxAge = 0
	}
	session.SetToken(c.Writer, res.IDToken, maxAge, h.cookieOpts)
}

func (h *Handler) rejectLogin(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
	case errors.Is(err, auth.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: missing email or sub"})
	case errors.Is(err, auth.ErrAccountDeactivated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User account is deactivated"})
	case errors.Is(err, user.ErrStorageUnavailable):
		logger.Error("login failed: storage unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
	default:
		logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
	}
}

func userPayload(u *user.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"picture":  u.Picture,
		"googleId": u.GoogleID,
	}
}
