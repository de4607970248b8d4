package handler

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lfdantoni/dashboard-ai/internal/logger"
)

// Server-side authorization code flow, for clients that cannot run the
// Google Sign-In widget. The callback funnels into the same login flow as
// POST /auth/login: the exchanged id_token is verified and stored as the
// session cookie.
//
// State and the PKCE verifier travel in short-lived HTTP-only cookies, so
// the flow needs no server-side storage.

// OAuthFlow is the provider surface the redirect flow depends on.
type OAuthFlow interface {
	AuthCodeURL(state string, codeChallenge string) string
	ExchangeIDToken(ctx context.Context, code string, codeVerifier string) (string, error)
}

const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"
	flowCookieTTL   = 5 * time.Minute
)

func (h *Handler) OAuthLogin(c *gin.Context) {
	state, err := randomFlowToken()
	if err != nil {
		logger.Error("oauth state generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	codeVerifier, err := randomFlowToken()
	if err != nil {
		logger.Error("oauth pkce generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}

	h.setFlowCookie(c, stateCookieName, state)
	h.setFlowCookie(c, pkceCookieName, codeVerifier)

	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state, pkceChallenge(codeVerifier)))
}

func (h *Handler) OAuthCallback(c *gin.Context) {
	if !stateMatches(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error",
			zap.String("error", errParam),
			zap.String("description", c.Query("error_description")),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	codeVerifier := flowCookie(c, pkceCookieName)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing pkce verifier"})
		return
	}

	// one-shot cookies; drop them whether or not the exchange succeeds
	h.clearFlowCookie(c, stateCookieName)
	h.clearFlowCookie(c, pkceCookieName)

	idToken, err := h.google.ExchangeIDToken(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Warn("oauth code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), idToken)
	if err != nil {
		h.rejectLogin(c, err)
		return
	}

	h.issueSession(c, res)

	c.JSON(http.StatusOK, gin.H{
		"user": userPayload(res.User),
	})
}

func randomFlowToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("flow token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// setFlowCookie issues a state/PKCE cookie. SameSite stays Lax regardless
// of environment: the provider redirect is a top-level navigation and must
// carry these cookies back.
func (h *Handler) setFlowCookie(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flowCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieOpts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearFlowCookie(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieOpts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func flowCookie(c *gin.Context, name string) string {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func stateMatches(c *gin.Context) bool {
	state := c.Query("state")
	return state != "" && state == flowCookie(c, stateCookieName)
}
