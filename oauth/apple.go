package oauth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialService is the bridge to the platform's native Sign in with
// Apple API. Its consent UI is opaque; only the result contract matters.
// Implementations return ErrCancelled when the user dismisses the sheet and
// ErrUnknownFailure for Apple's unexplained attempt failure.
type CredentialService interface {
	// Available reports whether the native credential API exists on this
	// platform and OS version. Resolved once per flow, not re-checked ad hoc.
	Available(ctx context.Context) bool

	// Request presents the native consent sheet asking for the given scopes.
	Request(ctx context.Context, req CredentialRequest) (*AppleCredential, error)
}

// CredentialRequest names the scopes to ask for.
type CredentialRequest struct {
	FullName bool
	Email    bool
}

// AppleCredential is the raw native result. Email and name fields are only
// populated on the very first consent; Apple withholds them afterward.
type AppleCredential struct {
	IdentityToken string
	UserID        string
	Email         string
	GivenName     string
	FamilyName    string
}

// AppleFlow normalizes the native credential request into an Assertion.
type AppleFlow struct {
	svc CredentialService
}

// NewApple returns a flow backed by the given native bridge. A nil service
// means the platform has no bridge at all; Initiate reports Unavailable.
func NewApple(svc CredentialService) *AppleFlow {
	return &AppleFlow{svc: svc}
}

// Initiate runs the native flow once and classifies the outcome. A missing
// email or full name on the credential is not an error.
func (a *AppleFlow) Initiate(ctx context.Context) (*Assertion, error) {
	if a == nil || a.svc == nil || !a.svc.Available(ctx) {
		return nil, failf(KindUnavailable, "native apple sign-in is not available on this platform")
	}

	cred, err := a.svc.Request(ctx, CredentialRequest{FullName: true, Email: true})
	if errors.Is(err, ErrCancelled) {
		return nil, failf(KindCancelled, "sign-in sheet dismissed")
	}
	if errors.Is(err, ErrUnknownFailure) {
		// Apple reports broken client setup (missing capability, bad bundle
		// id) the same way as nothing at all; keep it distinguishable from a
		// genuine auth rejection.
		return nil, failf(KindConfiguration, "%v", err)
	}
	if err != nil {
		return nil, failf(KindProvider, "%v", err)
	}
	if cred == nil || cred.IdentityToken == "" {
		return nil, failf(KindNoToken, "apple did not return an identity token")
	}

	assertion := &Assertion{
		Provider:      ProviderApple,
		ProviderToken: cred.IdentityToken,
		SubjectID:     cred.UserID,
		Email:         cred.Email,
		FullName:      joinName(cred.GivenName, cred.FamilyName),
	}

	// The backend verifies the token signature; we only mine claims to fill
	// gaps the native result left (subject on every sign-in, email when the
	// credential carried none but the token did).
	sub, email := appleTokenClaims(cred.IdentityToken)
	if assertion.SubjectID == "" {
		assertion.SubjectID = sub
	}
	if assertion.Email == "" {
		assertion.Email = email
	}

	return assertion, nil
}

func appleTokenClaims(raw string) (subject, email string) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return "", ""
	}
	if sub, err := claims.GetSubject(); err == nil {
		subject = sub
	}
	if v, ok := claims["email"].(string); ok {
		email = v
	}
	return subject, email
}

func joinName(given, family string) string {
	name := strings.TrimSpace(strings.TrimSpace(given) + " " + strings.TrimSpace(family))
	return name
}
