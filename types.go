package goAuthClient

import "strings"

// SessionStatus represents the lifecycle state of the client session.
type SessionStatus uint8

const (
	// StatusUninitialized is the state at process start, before Restore runs.
	StatusUninitialized SessionStatus = iota
	// StatusRestoring is the transient state while a persisted token is being
	// validated against the backend.
	StatusRestoring
	// StatusAuthenticated means a token is persisted and a profile is loaded.
	StatusAuthenticated
	// StatusUnauthenticated means no usable identity exists on this device.
	StatusUnauthenticated
)

// String reports the status name for logs and events.
func (s SessionStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// UserProfile is an immutable snapshot of the authenticated user. It is
// replaced wholesale on every successful login, restore, and profile update,
// never patched in place.
type UserProfile struct {
	ID             string
	FirstName      string
	LastName       string
	FullName       string
	Email          string
	Role           string
	Specialization string
}

// Session is the single authoritative record of whether, and as whom, the
// client is currently authenticated.
//
// Invariant: Token and User are set if and only if Status is
// [StatusAuthenticated]. Exactly one Session value is authoritative per
// process; it is read through [Manager.Session] and mutated only by Manager
// operations.
type Session struct {
	Status SessionStatus
	User   *UserProfile
	Token  string
}

// RegisterInput carries the registration form. ConfirmPassword is checked
// locally and never sent over the wire.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	LicenseNumber   string
	Specialization  string
}

// ProfilePatch carries the editable profile fields. All three are required;
// an update whose values match the current profile field-by-field is a
// no-op that skips the network entirely.
type ProfilePatch struct {
	FirstName string
	LastName  string
	Email     string
}

func (p ProfilePatch) matches(u *UserProfile) bool {
	if u == nil {
		return false
	}
	return strings.TrimSpace(p.FirstName) == u.FirstName &&
		strings.TrimSpace(p.LastName) == u.LastName &&
		strings.TrimSpace(p.Email) == u.Email
}

// OAuthOptions carries the caller-supplied continuation fields for an OAuth
// login. Role and Specialization are required only after the exchange
// reports RoleRequired for a new identity; Email only after Apple withholds
// it on a returning sign-in and the exchange reports EmailRequired.
type OAuthOptions struct {
	Role           string
	Specialization string
	Email          string
}

// AuthResult is the structured outcome of every Manager operation. Expected
// failures are values, not errors: OK is false and Kind carries the
// classification.
type AuthResult struct {
	OK bool

	// NoChanges is set by UpdateProfile when the patch matched the current
	// profile and no network call was made.
	NoChanges bool

	// RequiresRole and RequiresEmail are continuation signals from the OAuth
	// exchange, not terminal failures: re-invoke LoginWithOAuth with the
	// missing field populated in OAuthOptions.
	RequiresRole  bool
	RequiresEmail bool

	Kind    FailureKind
	Message string
}

func okResult() AuthResult {
	return AuthResult{OK: true}
}

func failResult(kind FailureKind, message string) AuthResult {
	return AuthResult{Kind: kind, Message: message}
}
