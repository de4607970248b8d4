package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/lfdantoni/dashboard-ai/internal/auth"
)

const (
	googleIssuer = "https://accounts.google.com"

	// bound on the remote verification call (JWKS fetch on cold cache)
	verifyTimeout = 5 * time.Second
)

// Google verifies Google ID tokens and, when configured with a client
// secret and redirect URL, also supports the server-side authorization
// code flow.
type Google struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func NewGoogle(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Google, error) {

	if clientID == "" {
		return nil, errors.New("google client id is required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	idTokenVerifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Google{
		oauthConfig: oauthCfg,
		verifier:    idTokenVerifier,
	}, nil
}

// Verify checks signature, expiry and audience of a raw ID token and
// returns its claims. Failures are terminal for the request; callers do
// not retry.
func (g *Google) Verify(ctx context.Context, rawToken string) (*auth.Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	idToken, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	var payload struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Iat     int64  `json:"iat"`
		Exp     int64  `json:"exp"`
	}
	if err := idToken.Claims(&payload); err != nil {
		return nil, fmt.Errorf("%w: claims parse failed: %v", auth.ErrInvalidToken, err)
	}

	return &auth.Claims{
		Subject:   payload.Subject,
		Email:     payload.Email,
		Name:      payload.Name,
		Picture:   payload.Picture,
		IssuedAt:  payload.Iat,
		ExpiresAt: payload.Exp,
	}, nil
}

// SupportsCodeFlow reports whether the redirect login endpoints can be
// served with the current configuration.
func (g *Google) SupportsCodeFlow() bool {
	return g.oauthConfig.ClientSecret != "" && g.oauthConfig.RedirectURL != ""
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
func (g *Google) AuthCodeURL(state string, codeChallenge string) string {
	return g.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeIDToken trades an authorization code for the id_token carried in
// the token response. The token is returned raw; verification happens in
// the login flow like any other ID token.
func (g *Google) ExchangeIDToken(
	ctx context.Context,
	code string,
	codeVerifier string,
) (string, error) {

	token, err := g.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return "", fmt.Errorf("google token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("google did not return id_token")
	}

	return rawIDToken, nil
}
