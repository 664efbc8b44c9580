package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIssuer is a minimal OIDC provider: discovery, token endpoint, JWKS.
type fakeIssuer struct {
	srv      *httptest.Server
	key      *rsa.PrivateKey
	clientID string

	tokenForm url.Values
	idToken   func() string
}

func newFakeIssuer(t *testing.T, clientID string) *fakeIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIssuer{key: key, clientID: clientID}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                f.srv.URL,
			"authorization_endpoint":                f.srv.URL + "/auth",
			"token_endpoint":                        f.srv.URL + "/token",
			"jwks_uri":                              f.srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]any{{
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"kid": "test",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.tokenForm = r.PostForm

		body := map[string]any{
			"access_token": "at-unused",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if f.idToken != nil {
			body["id_token"] = f.idToken()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) signIDToken(t *testing.T, subject, email, name string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   f.srv.URL,
		"aud":   f.clientID,
		"sub":   subject,
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})
	token.Header["kid"] = "test"
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

// fakeAuthorizer plays the host's consent bridge: it inspects the auth URL
// and answers with a canned redirect.
type fakeAuthorizer struct {
	lastRequest AuthCodeRequest
	respond     func(req AuthCodeRequest) (*AuthCodeResponse, error)
	calls       int
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, req AuthCodeRequest) (*AuthCodeResponse, error) {
	f.calls++
	f.lastRequest = req
	return f.respond(req)
}

func TestGoogleMissingClientIDFailsFast(t *testing.T) {
	authorizer := &fakeAuthorizer{respond: func(req AuthCodeRequest) (*AuthCodeResponse, error) {
		return &AuthCodeResponse{Code: "code", State: req.State}, nil
	}}

	flow := NewGoogle(GoogleConfig{}, authorizer)
	_, err := flow.Initiate(context.Background())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindConfiguration, failure.Kind)
	assert.Zero(t, authorizer.calls, "no consent screen without a client id")
}

func TestGoogleCancelled(t *testing.T) {
	issuer := newFakeIssuer(t, "client-1")
	authorizer := &fakeAuthorizer{respond: func(AuthCodeRequest) (*AuthCodeResponse, error) {
		return nil, ErrCancelled
	}}

	flow := NewGoogle(GoogleConfig{ClientID: "client-1", RedirectURL: "app://cb", Issuer: issuer.srv.URL}, authorizer)
	_, err := flow.Initiate(context.Background())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindCancelled, failure.Kind)
	assert.Nil(t, issuer.tokenForm, "cancelled consent must not reach the token endpoint")
}

func TestGoogleStateMismatch(t *testing.T) {
	issuer := newFakeIssuer(t, "client-1")
	authorizer := &fakeAuthorizer{respond: func(AuthCodeRequest) (*AuthCodeResponse, error) {
		return &AuthCodeResponse{Code: "code", State: "forged"}, nil
	}}

	flow := NewGoogle(GoogleConfig{ClientID: "client-1", RedirectURL: "app://cb", Issuer: issuer.srv.URL}, authorizer)
	_, err := flow.Initiate(context.Background())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindProvider, failure.Kind)
}

func TestGoogleNoIDTokenReturned(t *testing.T) {
	issuer := newFakeIssuer(t, "client-1")
	issuer.idToken = nil // token endpoint answers without id_token
	authorizer := &fakeAuthorizer{respond: func(req AuthCodeRequest) (*AuthCodeResponse, error) {
		return &AuthCodeResponse{Code: "code", State: req.State}, nil
	}}

	flow := NewGoogle(GoogleConfig{ClientID: "client-1", RedirectURL: "app://cb", Issuer: issuer.srv.URL}, authorizer)
	_, err := flow.Initiate(context.Background())

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindNoToken, failure.Kind)
}

func TestGoogleFullFlow(t *testing.T) {
	issuer := newFakeIssuer(t, "client-1")
	issuer.idToken = func() string {
		return issuer.signIDToken(t, "google-sub-1", "doc@x.com", "Ada Lovelace")
	}
	authorizer := &fakeAuthorizer{respond: func(req AuthCodeRequest) (*AuthCodeResponse, error) {
		return &AuthCodeResponse{Code: "code-1", State: req.State}, nil
	}}

	flow := NewGoogle(GoogleConfig{ClientID: "client-1", RedirectURL: "app://cb", Issuer: issuer.srv.URL}, authorizer)
	assertion, err := flow.Initiate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, assertion.Provider)
	assert.Equal(t, "google-sub-1", assertion.SubjectID)
	assert.Equal(t, "doc@x.com", assertion.Email)
	assert.Equal(t, "Ada Lovelace", assertion.FullName)
	assert.NotEmpty(t, assertion.ProviderToken)

	// The auth request carried PKCE and the exchange proved the verifier.
	authURL, err := url.Parse(authorizer.lastRequest.URL)
	require.NoError(t, err)
	challenge := authURL.Query().Get("code_challenge")
	assert.NotEmpty(t, challenge)
	assert.Equal(t, "S256", authURL.Query().Get("code_challenge_method"))
	assert.NotEmpty(t, issuer.tokenForm.Get("code_verifier"))
	assert.Equal(t, "code-1", issuer.tokenForm.Get("code"))
}
