package goAuthClient

import (
	"errors"

	"github.com/MrEthical07/goAuthClient/api"
	"github.com/MrEthical07/goAuthClient/oauth"
)

// FailureKind classifies every expected failure an operation can report.
// The set is closed: callers branch on it instead of inspecting messages.
type FailureKind uint8

const (
	// FailureNone accompanies successful results.
	FailureNone FailureKind = iota
	// FailureValidation is a local pre-network rejection (blank field, short
	// password, mismatched confirmation). The backend was never contacted.
	FailureValidation
	// FailureNetwork is a transport or connectivity fault, including any
	// unexpected fault normalized at the Manager boundary.
	FailureNetwork
	// FailureAuth is a server-side rejection of credentials or token.
	FailureAuth
	// FailureProvider is an OAuth provider-side failure.
	FailureProvider
	// FailureCancelled means the user aborted an interactive consent flow.
	FailureCancelled
	// FailureConfiguration means the OAuth client setup is missing or broken.
	FailureConfiguration
	// FailureUnavailable means the native credential API does not exist on
	// this platform or OS version.
	FailureUnavailable
	// FailureBusy means another operation of the same class is in flight.
	FailureBusy
)

// String reports the kind name for logs and events.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureValidation:
		return "validation"
	case FailureNetwork:
		return "network"
	case FailureAuth:
		return "auth"
	case FailureProvider:
		return "provider"
	case FailureCancelled:
		return "cancelled"
	case FailureConfiguration:
		return "configuration"
	case FailureUnavailable:
		return "unavailable"
	case FailureBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// ErrNotBuilt is returned by Builder.Build when a required collaborator or
// config section is missing.
var ErrNotBuilt = errors.New("manager not built: missing required configuration")

// classifyAPIError folds an api package error into a result. The two
// continuation codes become flags rather than failure kinds so callers can
// treat them as a required next step instead of a dead end.
func classifyAPIError(err error) AuthResult {
	switch {
	case errors.Is(err, api.ErrRoleRequired):
		return AuthResult{RequiresRole: true, Kind: FailureAuth, Message: "role selection required"}
	case errors.Is(err, api.ErrEmailRequired):
		return AuthResult{RequiresEmail: true, Kind: FailureAuth, Message: "email required"}
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrRejected):
		return failResult(FailureAuth, apiMessage(err))
	default:
		// Transport faults and anything unclassifiable.
		return failResult(FailureNetwork, apiMessage(err))
	}
}

func apiMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// classifyOAuthError folds an oauth broker failure into a result.
func classifyOAuthError(err error) AuthResult {
	var failure *oauth.Failure
	if !errors.As(err, &failure) {
		return failResult(FailureNetwork, err.Error())
	}

	switch failure.Kind {
	case oauth.KindCancelled:
		return failResult(FailureCancelled, failure.Message)
	case oauth.KindConfiguration:
		return failResult(FailureConfiguration, failure.Message)
	case oauth.KindUnavailable:
		return failResult(FailureUnavailable, failure.Message)
	case oauth.KindNoToken, oauth.KindProvider:
		return failResult(FailureProvider, failure.Message)
	default:
		return failResult(FailureProvider, failure.Message)
	}
}
