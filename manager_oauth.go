package goAuthClient

import (
	"context"
	"strings"

	"github.com/MrEthical07/goAuthClient/api"
	"github.com/MrEthical07/goAuthClient/oauth"
)

// LoginWithOAuth acquires an identity assertion from the named provider and
// exchanges it with the backend for a session.
//
// Two-phase resolution: when the identity is new and the backend has no role
// for it, the exchange answers RoleRequired; re-invoke with opts.Role set.
// When Apple withholds the email on a returning sign-in, the exchange
// answers EmailRequired; re-invoke with opts.Email collected out-of-band.
// On either continuation the assertion is retained and resubmitted as-is;
// the consent flow is not rerun. The Manager never guesses a role.
func (m *Manager) LoginWithOAuth(ctx context.Context, provider oauth.Provider, opts OAuthOptions) AuthResult {
	if !m.config.OAuth.Enabled {
		return failResult(FailureConfiguration, "oauth sign-in is disabled")
	}

	if !m.guard.tryAcquire(opClassOAuth) {
		m.metrics.inc(MetricBusyRejected)
		return failResult(FailureBusy, "another oauth login is in flight")
	}
	defer m.guard.release(opClassOAuth)

	assertion := m.takePending(provider)
	if assertion == nil {
		var err error
		assertion, err = m.initiate(ctx, provider)
		if err != nil {
			result := classifyOAuthError(err)
			if result.Kind == FailureCancelled {
				m.metrics.inc(MetricOAuthCancelled)
			} else {
				m.metrics.inc(MetricOAuthFailure)
			}
			m.emit(ctx, SessionEvent{EventType: EventOAuthLogin, Status: m.Session().Status, Success: false, Error: result.Message})
			return result
		}
	}

	req := api.ExchangeRequest{
		ProviderToken:  assertion.ProviderToken,
		SubjectID:      assertion.SubjectID,
		Email:          assertion.Email,
		FullName:       assertion.FullName,
		Role:           strings.TrimSpace(opts.Role),
		Specialization: strings.TrimSpace(opts.Specialization),
	}
	if email := strings.TrimSpace(opts.Email); email != "" {
		req.Email = email
	}

	resp, err := m.api.OAuthExchange(ctx, string(provider), req)
	if err != nil {
		result := classifyAPIError(err)
		if result.RequiresRole || result.RequiresEmail {
			// Continuation, not failure: keep the assertion for the retry.
			m.storePending(assertion)
			return result
		}
		m.metrics.inc(MetricOAuthFailure)
		m.emit(ctx, SessionEvent{EventType: EventOAuthLogin, Status: m.Session().Status, Success: false, Error: result.Message})
		return result
	}

	if result, ok := m.persistAndCommit(ctx, resp); !ok {
		m.metrics.inc(MetricOAuthFailure)
		return result
	}

	m.metrics.inc(MetricOAuthSuccess)
	m.logger.Info("oauth login succeeded", "provider", provider, "user_id", resp.User.ID)
	m.emit(ctx, SessionEvent{EventType: EventOAuthLogin, Status: StatusAuthenticated, UserID: resp.User.ID, Success: true})
	return okResult()
}

func (m *Manager) initiate(ctx context.Context, provider oauth.Provider) (*oauth.Assertion, error) {
	switch provider {
	case oauth.ProviderGoogle:
		return m.google.Initiate(ctx)
	case oauth.ProviderApple:
		if !m.config.Apple.Enabled {
			return nil, &oauth.Failure{Kind: oauth.KindConfiguration, Message: "apple sign-in is disabled"}
		}
		return m.apple.Initiate(ctx)
	default:
		return nil, &oauth.Failure{Kind: oauth.KindConfiguration, Message: "unknown provider " + string(provider)}
	}
}

// takePending consumes a retained assertion for the provider, if any.
// An assertion retained for one provider never serves another.
func (m *Manager) takePending(provider oauth.Provider) *oauth.Assertion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil || m.pending.Provider != provider {
		m.pending = nil
		return nil
	}
	a := m.pending
	m.pending = nil
	return a
}

func (m *Manager) storePending(a *oauth.Assertion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = a
}
