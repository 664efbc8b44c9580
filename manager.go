package goAuthClient

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/MrEthical07/goAuthClient/api"
	"github.com/MrEthical07/goAuthClient/oauth"
	"github.com/MrEthical07/goAuthClient/tokenstore"
)

// Manager owns the single authoritative Session. One instance exists per
// process, constructed through [Builder.Build] at startup; pass it by
// reference to whoever needs it. All state-mutating operations funnel
// through one commit point, and every commit replaces user and token
// wholesale; there is no partial merge to race against.
type Manager struct {
	config  Config
	api     *api.Client
	store   tokenstore.Store
	google  *oauth.GoogleFlow
	apple   *oauth.AppleFlow
	events  *eventDispatcher
	metrics *Metrics
	logger  *slog.Logger

	guard opGuard

	mu      sync.Mutex
	session Session

	// pending holds the assertion of an exchange that answered with a
	// continuation (RoleRequired/EmailRequired), so the retry resubmits the
	// same assertion instead of rerunning the consent flow.
	pending *oauth.Assertion
}

// Session returns a copy of the current session. The User pointer is
// duplicated so callers cannot mutate the authoritative snapshot.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Close drains the event dispatcher. No other teardown is needed.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.events.close()
}

// MetricsSnapshot copies the operation counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return m.metrics.Snapshot()
}

// EventsDropped reports how many session events were shed by a full buffer.
func (m *Manager) EventsDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.events.droppedCount()
}

// Restore reconciles the session against the persisted token. Call once at
// startup. A missing, stale, or rejected token is never surfaced as an
// error: the session is silently demoted to Unauthenticated and the store
// cleared. The only failure Restore can report is Busy.
func (m *Manager) Restore(ctx context.Context) AuthResult {
	if !m.guard.tryAcquire(opClassSession) {
		m.metrics.inc(MetricBusyRejected)
		return failResult(FailureBusy, "another session operation is in flight")
	}
	defer m.guard.release(opClassSession)

	token, err := m.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			m.logger.Warn("token store read failed, treating as empty", "error", err)
		}
		m.commitUnauthenticated()
		m.metrics.inc(MetricRestoreEmpty)
		m.emit(ctx, SessionEvent{EventType: EventRestore, Status: StatusUnauthenticated, Success: true})
		return okResult()
	}

	m.setRestoring()

	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		// Stale or invalid token: demote silently, clear best-effort.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.Warn("token store clear failed", "error", clearErr)
		}
		m.commitUnauthenticated()
		m.metrics.inc(MetricRestoreDemoted)
		m.logger.Info("restore demoted", "reason", err)
		m.emit(ctx, SessionEvent{EventType: EventTokenDemoted, Status: StatusUnauthenticated, Success: true})
		return okResult()
	}

	m.commitAuthenticated(user, token)
	m.metrics.inc(MetricRestoreSuccess)
	m.logger.Info("session restored", "user_id", user.ID)
	m.emit(ctx, SessionEvent{EventType: EventRestore, Status: StatusAuthenticated, UserID: user.ID, Success: true})
	return okResult()
}

// Login authenticates with email and password. Blank fields fail locally
// without a network call. A rejected login leaves any prior session intact:
// failing to log in never logs you out.
func (m *Manager) Login(ctx context.Context, email, password string) AuthResult {
	if msg := validateLogin(email, password); msg != "" {
		return failResult(FailureValidation, msg)
	}

	if !m.guard.tryAcquire(opClassSession) {
		m.metrics.inc(MetricBusyRejected)
		return failResult(FailureBusy, "another session operation is in flight")
	}
	defer m.guard.release(opClassSession)

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.metrics.inc(MetricLoginFailure)
		result := classifyAPIError(err)
		m.emit(ctx, SessionEvent{EventType: EventLogin, Status: m.Session().Status, Success: false, Error: result.Message})
		return result
	}

	if result, ok := m.persistAndCommit(ctx, resp); !ok {
		m.metrics.inc(MetricLoginFailure)
		return result
	}

	m.metrics.inc(MetricLoginSuccess)
	m.logger.Info("login succeeded", "user_id", resp.User.ID)
	m.emit(ctx, SessionEvent{EventType: EventLogin, Status: StatusAuthenticated, UserID: resp.User.ID, Success: true})
	return okResult()
}

// Logout clears the token store and resets the session. Idempotent: calling
// it while already unauthenticated is a no-op with no error, and a store
// clear failure is logged but never blocks the in-memory reset.
func (m *Manager) Logout(ctx context.Context) AuthResult {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("token store clear failed", "error", err)
	}

	m.commitUnauthenticated()
	m.metrics.inc(MetricLogout)
	m.emit(ctx, SessionEvent{EventType: EventLogout, Status: StatusUnauthenticated, Success: true})
	return okResult()
}

// persistAndCommit writes the token to the store and only then transitions
// the in-memory session, so a crash between the two can never leave an
// authenticated session with an empty store.
func (m *Manager) persistAndCommit(ctx context.Context, resp *api.AuthResponse) (AuthResult, bool) {
	if err := m.store.Set(ctx, resp.Token); err != nil {
		m.logger.Error("token persist failed", "error", err)
		return failResult(FailureNetwork, "persisting session token failed"), false
	}
	m.commitAuthenticated(&resp.User, resp.Token)
	return okResult(), true
}

func (m *Manager) setRestoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{Status: StatusRestoring}
}

func (m *Manager) commitAuthenticated(user *api.User, token string) {
	profile := profileFromAPI(user)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{Status: StatusAuthenticated, User: profile, Token: token}
}

func (m *Manager) commitUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{Status: StatusUnauthenticated}
}

// commitProfile installs the updated profile as a full session replace. It
// refuses when the session is no longer authenticated: a logout may land
// while the update request is in flight, and the late response must not
// resurrect a torn-down session.
func (m *Manager) commitProfile(user *api.User) bool {
	profile := profileFromAPI(user)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Status != StatusAuthenticated {
		return false
	}
	m.session = Session{Status: StatusAuthenticated, User: profile, Token: m.session.Token}
	return true
}

func (m *Manager) emit(ctx context.Context, event SessionEvent) {
	m.events.emit(ctx, event)
}

func profileFromAPI(u *api.User) *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName,
		Email:          u.Email,
		Role:           u.Role,
		Specialization: u.Specialization,
	}
}
