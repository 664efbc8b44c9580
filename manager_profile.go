package goAuthClient

import (
	"context"
	"strings"

	"github.com/MrEthical07/goAuthClient/api"
)

// UpdateProfile replaces the editable profile fields. A patch identical to
// the current profile short-circuits with NoChanges and no network call;
// a failed update leaves the current profile untouched. Runs under its own
// single-flight class, concurrent with the session class.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) AuthResult {
	if msg := validateProfile(patch); msg != "" {
		return failResult(FailureValidation, msg)
	}

	session := m.Session()
	if session.Status != StatusAuthenticated {
		return failResult(FailureAuth, "not authenticated")
	}
	if patch.matches(session.User) {
		m.metrics.inc(MetricProfileNoChanges)
		return AuthResult{OK: true, NoChanges: true}
	}

	if !m.guard.tryAcquire(opClassProfile) {
		m.metrics.inc(MetricBusyRejected)
		return failResult(FailureBusy, "another profile update is in flight")
	}
	defer m.guard.release(opClassProfile)

	user, err := m.api.UpdateProfile(ctx, session.Token, api.ProfileRequest{
		FirstName: strings.TrimSpace(patch.FirstName),
		LastName:  strings.TrimSpace(patch.LastName),
		Email:     strings.TrimSpace(patch.Email),
	})
	if err != nil {
		result := classifyAPIError(err)
		m.emit(ctx, SessionEvent{EventType: EventProfileUpdated, Status: session.Status, UserID: session.User.ID, Success: false, Error: result.Message})
		return result
	}

	if !m.commitProfile(user) {
		result := failResult(FailureAuth, "session ended while the update was in flight")
		m.emit(ctx, SessionEvent{EventType: EventProfileUpdated, Status: m.Session().Status, Success: false, Error: result.Message})
		return result
	}
	m.metrics.inc(MetricProfileUpdated)
	m.logger.Info("profile updated", "user_id", user.ID)
	m.emit(ctx, SessionEvent{EventType: EventProfileUpdated, Status: StatusAuthenticated, UserID: user.ID, Success: true})
	return okResult()
}
