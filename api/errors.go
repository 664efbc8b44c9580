package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport faults and undecodable responses.
	ErrNetwork = errors.New("network failure")
	// ErrUnauthorized is a server rejection of credentials or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected is any other 4xx the backend returns (duplicate email,
	// field validation, expired reset code).
	ErrRejected = errors.New("request rejected")
	// ErrRoleRequired signals that the OAuth exchange met a new identity and
	// the backend has no role for it; resubmit with role populated.
	ErrRoleRequired = errors.New("role required")
	// ErrEmailRequired signals that the provider withheld the email on a
	// returning sign-in; resubmit with email supplied out-of-band.
	ErrEmailRequired = errors.New("email required")
)

// Error is the decoded backend error envelope. It unwraps to one of the
// sentinel errors above so callers can classify with errors.Is.
type Error struct {
	Status  int
	Code    string
	Message string

	sentinel error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Unwrap exposes the sentinel classification.
func (e *Error) Unwrap() error {
	return e.sentinel
}

// Backend error codes carried in the envelope's "code" field.
const (
	codeRoleRequired  = "ROLE_REQUIRED"
	codeEmailRequired = "EMAIL_REQUIRED"
)

func newError(status int, code, message string) *Error {
	e := &Error{Status: status, Code: code, Message: message}
	switch {
	case code == codeRoleRequired:
		e.sentinel = ErrRoleRequired
	case code == codeEmailRequired:
		e.sentinel = ErrEmailRequired
	case status == 401 || status == 403:
		e.sentinel = ErrUnauthorized
	case status >= 400 && status < 500:
		e.sentinel = ErrRejected
	default:
		e.sentinel = ErrNetwork
	}
	return e
}
