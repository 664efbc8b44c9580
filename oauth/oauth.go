// Package oauth drives the provider-specific authorization flows and
// normalizes their heterogeneous results into one assertion shape or a
// classified failure. Flows are one-shot: no retry, no backoff. A failure
// goes back to the caller, who decides whether to re-invoke.
package oauth

import (
	"context"
	"errors"
	"fmt"
)

// Provider identifies the identity provider behind an assertion.
type Provider string

const (
	// ProviderGoogle is the redirect+PKCE authorization-code flow.
	ProviderGoogle Provider = "google"
	// ProviderApple is the native credential-request flow.
	ProviderApple Provider = "apple"
)

// Assertion is a provider-issued proof of identity, consumed exactly once by
// the backend exchange and then discarded. Email and FullName may be absent:
// Apple only discloses them on the first consent, and that is not an error.
type Assertion struct {
	Provider      Provider
	ProviderToken string
	SubjectID     string
	Email         string
	FullName      string
}

// FailureKind classifies broker failures into a closed set.
type FailureKind uint8

const (
	// KindProvider is a provider-side failure during the flow.
	KindProvider FailureKind = iota
	// KindCancelled means the user dismissed the consent UI.
	KindCancelled
	// KindConfiguration means the client setup is missing or broken.
	KindConfiguration
	// KindNoToken means the flow completed but no identity token came back.
	KindNoToken
	// KindUnavailable means the native credential API is absent on this
	// platform or OS version.
	KindUnavailable
)

// String reports the kind name for logs.
func (k FailureKind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindCancelled:
		return "cancelled"
	case KindConfiguration:
		return "configuration"
	case KindNoToken:
		return "no_token"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Failure is the broker's classified error type.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("oauth: %s", f.Kind)
	}
	return fmt.Sprintf("oauth: %s: %s", f.Kind, f.Message)
}

func failf(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels that interactive collaborators return to signal a classified
// outcome. Implementations wrap or return them directly.
var (
	// ErrCancelled reports that the user aborted the interactive step.
	ErrCancelled = errors.New("user cancelled")
	// ErrUnknownFailure is Apple's "authorization attempt failed for an
	// unknown reason", which in practice means broken client setup rather
	// than a genuine auth rejection.
	ErrUnknownFailure = errors.New("authorization failed for an unknown reason")
)

// Authorizer presents the provider consent screen and returns the redirect
// result. The UI is opaque to the broker; implementations return
// ErrCancelled (possibly wrapped) when the user dismisses it.
type Authorizer interface {
	Authorize(ctx context.Context, req AuthCodeRequest) (*AuthCodeResponse, error)
}

// AuthCodeRequest is everything the host needs to open the consent screen.
type AuthCodeRequest struct {
	URL         string
	State       string
	RedirectURL string
}

// AuthCodeResponse is the provider redirect captured by the host.
type AuthCodeResponse struct {
	Code  string
	State string
}
