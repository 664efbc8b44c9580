package goAuthClient

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/goAuthClient/api"
	"github.com/MrEthical07/goAuthClient/oauth"
	"github.com/MrEthical07/goAuthClient/tokenstore"
)

// Builder assembles a [Manager]. Construction is allocation-only; no I/O
// happens until the first Manager operation.
type Builder struct {
	config     Config
	httpClient *http.Client
	store      tokenstore.Store
	authorizer oauth.Authorizer
	appleSvc   oauth.CredentialService
	sink       EventSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder seeded with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithHTTPClient injects the transport. Timeouts belong to this client; the
// SDK imposes none of its own.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTokenStore injects the persistence cell for the bearer token.
// Required: the store is the only state that survives a restart.
func (b *Builder) WithTokenStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithGoogleAuthorizer injects the host's consent-screen bridge for the
// Google flow. Without it Google login reports a configuration failure.
func (b *Builder) WithGoogleAuthorizer(a oauth.Authorizer) *Builder {
	b.authorizer = a
	return b
}

// WithAppleCredentials injects the native Sign in with Apple bridge.
// Without it Apple login reports Unavailable.
func (b *Builder) WithAppleCredentials(svc oauth.CredentialService) *Builder {
	b.appleSvc = svc
	return b
}

// WithEventSink injects the session-event consumer.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger injects a structured logger. Absent one, the Manager is silent.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns the Manager. A Builder
// builds at most once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, fmt.Errorf("%w: builder already used", ErrNotBuilt)
	}
	if err := validateConfig(b.config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotBuilt, err)
	}
	if b.store == nil {
		return nil, fmt.Errorf("%w: token store is required", ErrNotBuilt)
	}
	b.built = true

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &Manager{
		config: b.config,
		api:    api.NewClient(b.config.API.BaseURL, b.httpClient),
		store:  b.store,
		google: oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:    b.config.Google.ClientID,
			RedirectURL: b.config.Google.RedirectURL,
			Issuer:      b.config.Google.Issuer,
		}, b.authorizer),
		apple:   oauth.NewApple(b.appleSvc),
		events:  newEventDispatcher(b.config.Events, b.sink),
		metrics: &Metrics{},
		logger:  logger,
		session: Session{Status: StatusUninitialized},
	}
	return m, nil
}
