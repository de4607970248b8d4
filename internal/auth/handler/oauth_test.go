package handler_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfdantoni/dashboard-ai/internal/auth/handler"
	"github.com/lfdantoni/dashboard-ai/internal/auth/service"
	"github.com/lfdantoni/dashboard-ai/internal/session"
)

type stubOAuthFlow struct {
	idToken     string
	exchangeErr error
	gotCode     string
	gotVerifier string
}

func (s *stubOAuthFlow) AuthCodeURL(state, codeChallenge string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + url.QueryEscape(state) +
		"&code_challenge=" + url.QueryEscape(codeChallenge)
}

func (s *stubOAuthFlow) ExchangeIDToken(ctx context.Context, code, codeVerifier string) (string, error) {
	s.gotCode = code
	s.gotVerifier = codeVerifier
	if s.exchangeErr != nil {
		return "", s.exchangeErr
	}
	return s.idToken, nil
}

func oauthRouter(h *handler.Handler) *gin.Engine {
	router := gin.New()
	router.GET("/auth/google/login", h.OAuthLogin)
	router.GET("/auth/google/callback", h.OAuthCallback)
	return router
}

func TestOAuthLogin_RedirectsWithFlowCookies(t *testing.T) {
	h := handler.NewHandler(&stubAuthService{}, &stubOAuthFlow{}, false)

	rec := httptest.NewRecorder()
	oauthRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)

	state := findCookie(t, rec.Result(), "__oauth_state")
	pkce := findCookie(t, rec.Result(), "__oauth_pkce")
	require.NotNil(t, state)
	require.NotNil(t, pkce)
	assert.NotEmpty(t, state.Value)
	assert.NotEmpty(t, pkce.Value)
	assert.True(t, state.HttpOnly)
	assert.True(t, pkce.HttpOnly)
	assert.Equal(t, 300, state.MaxAge)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))

	// the challenge in the redirect must derive from the verifier cookie
	sum := sha256.Sum256([]byte(pkce.Value))
	wantChallenge := base64.RawURLEncoding.EncodeToString(sum[:])
	assert.Equal(t, wantChallenge, loc.Query().Get("code_challenge"))
}

func TestOAuthCallback_Success(t *testing.T) {
	flow := &stubOAuthFlow{idToken: "exchanged-token"}
	svc := &stubAuthService{result: &service.LoginResult{
		User:      testUser(),
		IDToken:   "exchanged-token",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}}
	h := handler.NewHandler(svc, flow, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=s1&code=c1", nil)
	req.AddCookie(&http.Cookie{Name: "__oauth_state", Value: "s1"})
	req.AddCookie(&http.Cookie{Name: "__oauth_pkce", Value: "v1"})
	rec := httptest.NewRecorder()
	oauthRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", flow.gotCode)
	assert.Equal(t, "v1", flow.gotVerifier)
	assert.Equal(t, []string{"exchanged-token"}, svc.tokens)

	sessionCookie := findCookie(t, rec.Result(), session.CookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "exchanged-token", sessionCookie.Value)

	// state and verifier are single-use
	state := findCookie(t, rec.Result(), "__oauth_state")
	require.NotNil(t, state)
	assert.Less(t, state.MaxAge, 0)
	pkce := findCookie(t, rec.Result(), "__oauth_pkce")
	require.NotNil(t, pkce)
	assert.Less(t, pkce.MaxAge, 0)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	flow := &stubOAuthFlow{idToken: "exchanged-token"}
	svc := &stubAuthService{}
	h := handler.NewHandler(svc, flow, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=attacker&code=c1", nil)
	req.AddCookie(&http.Cookie{Name: "__oauth_state", Value: "s1"})
	req.AddCookie(&http.Cookie{Name: "__oauth_pkce", Value: "v1"})
	rec := httptest.NewRecorder()
	oauthRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid state")
	assert.Empty(t, flow.gotCode, "no code exchange on bad state")
	assert.Empty(t, svc.tokens)
}

func TestOAuthCallback_MissingVerifier(t *testing.T) {
	flow := &stubOAuthFlow{idToken: "exchanged-token"}
	h := handler.NewHandler(&stubAuthService{}, flow, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=s1&code=c1", nil)
	req.AddCookie(&http.Cookie{Name: "__oauth_state", Value: "s1"})
	rec := httptest.NewRecorder()
	oauthRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, flow.gotCode)
}
