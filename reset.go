package goAuthClient

import (
	"context"
	"strings"
	"sync"
)

// ResetStep is the password-reset state machine position.
type ResetStep uint8

const (
	// StepAwaitingEmail is the initial state: no code has been requested.
	StepAwaitingEmail ResetStep = iota
	// StepAwaitingCode means a code was requested and confirmation is pending.
	StepAwaitingCode
	// StepDone is terminal: the password was reset and the flow is spent.
	StepDone
)

// String reports the step name.
func (s ResetStep) String() string {
	switch s {
	case StepAwaitingEmail:
		return "awaiting_email"
	case StepAwaitingCode:
		return "awaiting_code"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

const resetCodeLength = 6

// ResetFlow drives the two-step password reset: request a code by email,
// then confirm with the code and a new password. A flow instance is
// discarded after success; a failed confirmation stays in AwaitingCode so
// the user retries without re-entering the email. The code and passwords are
// never retained between calls.
type ResetFlow struct {
	m *Manager

	mu    sync.Mutex
	step  ResetStep
	email string
}

// ResetResult is the structured outcome of a reset step.
type ResetResult struct {
	OK      bool
	Kind    FailureKind
	Message string

	// EchoedCode is the reset code when a non-production backend echoes it
	// in-band. Informational only; it is never auto-filled anywhere.
	EchoedCode string
}

// NewResetFlow starts a fresh flow in AwaitingEmail.
func (m *Manager) NewResetFlow() *ResetFlow {
	return &ResetFlow{m: m}
}

// Step reports the current state.
func (f *ResetFlow) Step() ResetStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Email reports the address the pending code was sent to.
func (f *ResetFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// RequestCode asks the backend to send a reset code. A blank email fails
// locally. The backend always reports success to avoid account enumeration,
// so a completed request transitions to AwaitingCode regardless of whether
// the account exists.
func (f *ResetFlow) RequestCode(ctx context.Context, email string) ResetResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return ResetResult{Kind: FailureValidation, Message: "email is required"}
	}

	if f.Step() == StepDone {
		return ResetResult{Kind: FailureValidation, Message: "reset flow already completed"}
	}

	if !f.m.guard.tryAcquire(opClassReset) {
		f.m.metrics.inc(MetricBusyRejected)
		return ResetResult{Kind: FailureBusy, Message: "another reset step is in flight"}
	}
	defer f.m.guard.release(opClassReset)

	resp, err := f.m.api.RequestPasswordReset(ctx, email)
	if err != nil {
		result := classifyAPIError(err)
		return ResetResult{Kind: result.Kind, Message: result.Message}
	}

	f.mu.Lock()
	f.step = StepAwaitingCode
	f.email = email
	f.mu.Unlock()

	f.m.metrics.inc(MetricResetRequested)
	f.m.emit(ctx, SessionEvent{EventType: EventResetRequested, Status: f.m.Session().Status, Success: true})
	return ResetResult{OK: true, EchoedCode: resp.ResetCode}
}

// Confirm submits the code and new password. All local checks run before
// any network call: the code must be exactly six characters, the password
// non-blank, at least eight characters, and equal to its confirmation.
// Success ends the flow; a server rejection (expired or wrong code) leaves
// it in AwaitingCode for another attempt.
func (f *ResetFlow) Confirm(ctx context.Context, code, newPassword, confirmPassword string) ResetResult {
	if f.Step() != StepAwaitingCode {
		return ResetResult{Kind: FailureValidation, Message: "no pending reset code"}
	}

	code = strings.TrimSpace(code)
	if len(code) != resetCodeLength {
		return ResetResult{Kind: FailureValidation, Message: "code must be 6 characters"}
	}
	if blank(newPassword) {
		return ResetResult{Kind: FailureValidation, Message: "new password is required"}
	}
	if len(newPassword) < minPasswordLength {
		return ResetResult{Kind: FailureValidation, Message: "password must be at least 8 characters"}
	}
	if newPassword != confirmPassword {
		return ResetResult{Kind: FailureValidation, Message: "passwords do not match"}
	}

	if !f.m.guard.tryAcquire(opClassReset) {
		f.m.metrics.inc(MetricBusyRejected)
		return ResetResult{Kind: FailureBusy, Message: "another reset step is in flight"}
	}
	defer f.m.guard.release(opClassReset)

	if err := f.m.api.ConfirmPasswordReset(ctx, f.Email(), code, newPassword); err != nil {
		// State stays AwaitingCode: the user retries with a fresh code entry.
		result := classifyAPIError(err)
		return ResetResult{Kind: result.Kind, Message: result.Message}
	}

	f.mu.Lock()
	f.step = StepDone
	f.email = ""
	f.mu.Unlock()

	f.m.metrics.inc(MetricResetConfirmed)
	f.m.emit(ctx, SessionEvent{EventType: EventResetConfirmed, Status: f.m.Session().Status, Success: true})
	return ResetResult{OK: true}
}

// Resend transitions AwaitingCode back to AwaitingEmail, discarding the
// pending email so the next RequestCode starts clean. A no-op elsewhere.
func (f *ResetFlow) Resend() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepAwaitingCode {
		return
	}
	f.step = StepAwaitingEmail
	f.email = ""
}
