package goAuthClient

import (
	"context"

	"github.com/MrEthical07/goAuthClient/api"
)

// Register creates an account and treats the response exactly like a login:
// token persisted, profile set, session authenticated. Shares the session
// single-flight class with Login and Restore.
func (m *Manager) Register(ctx context.Context, in RegisterInput) AuthResult {
	if msg := validateRegistration(in); msg != "" {
		return failResult(FailureValidation, msg)
	}

	if !m.guard.tryAcquire(opClassSession) {
		m.metrics.inc(MetricBusyRejected)
		return failResult(FailureBusy, "another session operation is in flight")
	}
	defer m.guard.release(opClassSession)

	resp, err := m.api.Register(ctx, api.RegisterRequest{
		Name:           in.Name,
		Email:          in.Email,
		Password:       in.Password,
		Role:           in.Role,
		LicenseNumber:  in.LicenseNumber,
		Specialization: in.Specialization,
	})
	if err != nil {
		m.metrics.inc(MetricRegisterFailure)
		result := classifyAPIError(err)
		m.emit(ctx, SessionEvent{EventType: EventRegister, Status: m.Session().Status, Success: false, Error: result.Message})
		return result
	}

	if result, ok := m.persistAndCommit(ctx, resp); !ok {
		m.metrics.inc(MetricRegisterFailure)
		return result
	}

	m.metrics.inc(MetricRegisterSuccess)
	m.logger.Info("registration succeeded", "user_id", resp.User.ID)
	m.emit(ctx, SessionEvent{EventType: EventRegister, Status: StatusAuthenticated, UserID: resp.User.ID, Success: true})
	return okResult()
}
