package oauth

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const defaultGoogleIssuer = "https://accounts.google.com"

// GoogleConfig configures the redirect+PKCE flow. ClientID is the
// platform-specific OAuth client; without it the flow fails fast with a
// configuration failure and never opens a consent screen.
type GoogleConfig struct {
	ClientID    string
	RedirectURL string

	// Issuer overrides the discovery endpoint. Tests point it at a fake;
	// production leaves it empty for accounts.google.com.
	Issuer string
}

// GoogleFlow drives the authorization-code flow with PKCE against Google's
// OIDC endpoints. Public client: there is no client secret; the PKCE
// verifier binds the code exchange instead.
type GoogleFlow struct {
	cfg        GoogleConfig
	authorizer Authorizer
}

// NewGoogle returns a flow that hands consent to authorizer.
func NewGoogle(cfg GoogleConfig, authorizer Authorizer) *GoogleFlow {
	return &GoogleFlow{cfg: cfg, authorizer: authorizer}
}

// Initiate runs the full flow once: discovery, consent, code exchange,
// id_token verification. Every expected failure comes back as a *Failure.
func (g *GoogleFlow) Initiate(ctx context.Context) (*Assertion, error) {
	if g == nil || g.cfg.ClientID == "" {
		return nil, failf(KindConfiguration, "google client id not configured for this platform")
	}
	if g.authorizer == nil {
		return nil, failf(KindConfiguration, "no authorizer installed")
	}

	issuer := g.cfg.Issuer
	if issuer == "" {
		issuer = defaultGoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, failf(KindProvider, "resolve discovery document: %v", err)
	}

	verifier, challenge, err := generatePKCE()
	if err != nil {
		return nil, failf(KindProvider, "%v", err)
	}
	state := uuid.NewString()

	conf := &oauth2.Config{
		ClientID:    g.cfg.ClientID,
		RedirectURL: g.cfg.RedirectURL,
		Endpoint:    provider.Endpoint(),
		Scopes:      []string{oidc.ScopeOpenID, "profile", "email"},
	}

	authURL := conf.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	resp, err := g.authorizer.Authorize(ctx, AuthCodeRequest{
		URL:         authURL,
		State:       state,
		RedirectURL: g.cfg.RedirectURL,
	})
	if errors.Is(err, ErrCancelled) {
		return nil, failf(KindCancelled, "consent screen dismissed")
	}
	if err != nil {
		return nil, failf(KindProvider, "%v", err)
	}
	if resp == nil || resp.Code == "" {
		return nil, failf(KindProvider, "redirect carried no authorization code")
	}
	if resp.State != state {
		return nil, failf(KindProvider, "state mismatch on redirect")
	}

	token, err := conf.Exchange(ctx, resp.Code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, failf(KindProvider, "code exchange failed: %v", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, failf(KindNoToken, "google did not return an id_token")
	}

	idToken, err := provider.Verifier(&oidc.Config{ClientID: g.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, failf(KindProvider, "id_token verification failed: %v", err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, failf(KindProvider, "id_token claims parse failed: %v", err)
	}

	return &Assertion{
		Provider:      ProviderGoogle,
		ProviderToken: rawIDToken,
		SubjectID:     claims.Subject,
		Email:         claims.Email,
		FullName:      claims.Name,
	}, nil
}
