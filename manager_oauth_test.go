package goAuthClient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/oauth"
	"github.com/MrEthical07/goAuthClient/tokenstore"
	"github.com/golang-jwt/jwt/v5"
)

type fakeAppleService struct {
	available bool
	cred      *oauth.AppleCredential
	err       error
	requests  int
}

func (f *fakeAppleService) Available(ctx context.Context) bool {
	return f.available
}

func (f *fakeAppleService) Request(ctx context.Context, req oauth.CredentialRequest) (*oauth.AppleCredential, error) {
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	return f.cred, nil
}

func testIdentityToken(t *testing.T, subject, email string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss": "https://appleid.apple.com",
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newOAuthManager(t *testing.T, backend *testBackend, svc oauth.CredentialService) (*Manager, *tokenstore.Memory) {
	t.Helper()

	cfg := defaultConfig()
	cfg.API.BaseURL = backend.srv.URL

	store := tokenstore.NewMemory()
	m, err := New().WithConfig(cfg).WithTokenStore(store).WithAppleCredentials(svc).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m, store
}

func TestOAuthDisabledByConfig(t *testing.T) {
	backend := newTestBackend(t)
	svc := &fakeAppleService{available: true}

	cfg := defaultConfig()
	cfg.API.BaseURL = backend.srv.URL
	cfg.OAuth.Enabled = false

	m, err := New().WithConfig(cfg).WithTokenStore(tokenstore.NewMemory()).WithAppleCredentials(svc).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	result := m.LoginWithOAuth(context.Background(), oauth.ProviderApple, OAuthOptions{})
	if result.OK || result.Kind != FailureConfiguration {
		t.Fatalf("expected configuration failure, got %+v", result)
	}
	if svc.requests != 0 {
		t.Fatal("disabled oauth must not present the sheet")
	}
}

func TestOAuthCancelledNeverExchanges(t *testing.T) {
	backend := newTestBackend(t)
	svc := &fakeAppleService{available: true, err: oauth.ErrCancelled}
	m, _ := newOAuthManager(t, backend, svc)

	result := m.LoginWithOAuth(context.Background(), oauth.ProviderApple, OAuthOptions{})
	if result.OK || result.Kind != FailureCancelled {
		t.Fatalf("expected cancelled, got %+v", result)
	}
	if hits := backend.hits("/auth/oauth/apple"); hits != 0 {
		t.Fatalf("cancelled flow must not reach the exchange endpoint, got %d hits", hits)
	}
	if got := m.Session().Status; got == StatusAuthenticated {
		t.Fatal("cancelled flow must not mutate the session")
	}
	if got := m.MetricsSnapshot().Counters[MetricOAuthCancelled]; got != 1 {
		t.Fatalf("expected 1 cancelled metric, got %d", got)
	}
}

func TestOAuthAppleUnavailable(t *testing.T) {
	backend := newTestBackend(t)
	m, _ := newOAuthManager(t, backend, &fakeAppleService{available: false})

	result := m.LoginWithOAuth(context.Background(), oauth.ProviderApple, OAuthOptions{})
	if result.OK || result.Kind != FailureUnavailable {
		t.Fatalf("expected unavailable, got %+v", result)
	}
}

func TestOAuthSuccess(t *testing.T) {
	backend := newTestBackend(t)
	svc := &fakeAppleService{available: true, cred: &oauth.AppleCredential{
		IdentityToken: testIdentityToken(t, "apple-sub-1", "doc@x.com"),
		UserID:        "apple-sub-1",
		Email:         "doc@x.com",
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
	}}
	m, store := newOAuthManager(t, backend, svc)
	ctx := context.Background()

	result := m.LoginWithOAuth(ctx, oauth.ProviderApple, OAuthOptions{})
	if !result.OK {
		t.Fatalf("oauth login failed: %+v", result)
	}

	session := m.Session()
	if session.Status != StatusAuthenticated || session.Token != "tok123" {
		t.Fatalf("expected authenticated session, got %+v", session)
	}
	if stored, err := store.Get(ctx); err != nil || stored != "tok123" {
		t.Fatalf("expected persisted token, got %q err %v", stored, err)
	}
}

func TestOAuthRoleRequiredContinuation(t *testing.T) {
	backend := newTestBackend(t)
	backend.exchangeStatuses = []int{http.StatusUnprocessableEntity}
	backend.exchangeBodies = []any{map[string]string{"code": "ROLE_REQUIRED", "message": "role selection required"}}

	svc := &fakeAppleService{available: true, cred: &oauth.AppleCredential{
		IdentityToken: testIdentityToken(t, "apple-sub-1", "doc@x.com"),
		UserID:        "apple-sub-1",
	}}
	m, _ := newOAuthManager(t, backend, svc)
	ctx := context.Background()

	first := m.LoginWithOAuth(ctx, oauth.ProviderApple, OAuthOptions{})
	if first.OK || !first.RequiresRole {
		t.Fatalf("expected RequiresRole continuation, got %+v", first)
	}
	if got := m.Session().Status; got == StatusAuthenticated {
		t.Fatal("continuation must not mutate the session")
	}

	second := m.LoginWithOAuth(ctx, oauth.ProviderApple, OAuthOptions{Role: "doctor", Specialization: "cardiology"})
	if !second.OK {
		t.Fatalf("retry with role failed: %+v", second)
	}

	if svc.requests != 1 {
		t.Fatalf("the retry must resubmit the retained assertion, not rerun consent; got %d consent requests", svc.requests)
	}
	if hits := backend.hits("/auth/oauth/apple"); hits != 2 {
		t.Fatalf("expected 2 exchange calls, got %d", hits)
	}
	if len(backend.exchangeRoles) != 2 || backend.exchangeRoles[1] != "doctor" {
		t.Fatalf("expected role on the retry, got %v", backend.exchangeRoles)
	}
}

func TestOAuthEmailRequiredContinuation(t *testing.T) {
	backend := newTestBackend(t)
	backend.exchangeStatuses = []int{http.StatusUnprocessableEntity}
	backend.exchangeBodies = []any{map[string]string{"code": "EMAIL_REQUIRED", "message": "email required"}}

	// Returning Apple sign-in: no email anywhere.
	svc := &fakeAppleService{available: true, cred: &oauth.AppleCredential{
		IdentityToken: testIdentityToken(t, "apple-sub-1", ""),
		UserID:        "apple-sub-1",
	}}
	m, _ := newOAuthManager(t, backend, svc)
	ctx := context.Background()

	first := m.LoginWithOAuth(ctx, oauth.ProviderApple, OAuthOptions{})
	if first.OK || !first.RequiresEmail {
		t.Fatalf("expected RequiresEmail continuation, got %+v", first)
	}

	second := m.LoginWithOAuth(ctx, oauth.ProviderApple, OAuthOptions{Email: "doc@x.com"})
	if !second.OK {
		t.Fatalf("retry with email failed: %+v", second)
	}
	if svc.requests != 1 {
		t.Fatalf("expected one consent request, got %d", svc.requests)
	}
}

func TestOAuthUnknownProvider(t *testing.T) {
	backend := newTestBackend(t)
	m, _ := newOAuthManager(t, backend, &fakeAppleService{available: true})

	result := m.LoginWithOAuth(context.Background(), oauth.Provider("facebook"), OAuthOptions{})
	if result.OK || result.Kind != FailureConfiguration {
		t.Fatalf("expected configuration failure, got %+v", result)
	}
}
