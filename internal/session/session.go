// Package session ties the layers together: it loads service definitions,
// builds configured clients and hands out resource handles. A process
// normally uses one session, either explicitly or through the default.
package session

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/defs"
	"github.com/stratus/ral-core/internal/model"
	"github.com/stratus/ral-core/internal/resource"
)

// EnvEndpointPrefix prefixes per-service endpoint variables:
// RAL_ENDPOINT_QUEUES configures the queues service.
const EnvEndpointPrefix = "RAL_ENDPOINT_"

// Option configures a Session.
type Option func(*Session)

// WithLoader replaces the definition loader.
func WithLoader(l *defs.Loader) Option {
	return func(s *Session) { s.loader = l }
}

// WithLogger sets the logger handed to clients and factories.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithAuth sets the credentials applied to every service client.
func WithAuth(auth api.AuthConfig) Option {
	return func(s *Session) { s.auth = auth }
}

// WithUserAgent overrides the client user agent.
func WithUserAgent(ua string) Option {
	return func(s *Session) { s.userAgent = ua }
}

// WithEndpoint pins one service to a base URL.
func WithEndpoint(service, url string) Option {
	return func(s *Session) { s.endpoints[service] = url }
}

// WithEndpointResolver installs a fallback endpoint lookup, consulted after
// pinned endpoints and before the environment.
func WithEndpointResolver(fn func(service string) string) Option {
	return func(s *Session) { s.resolver = fn }
}

// WithTransport injects an HTTP transport into every client (for
// tests/stubs).
func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) { s.transport = rt }
}

// Session loads definitions once and builds clients and resources from
// them. Sessions are safe for concurrent use.
type Session struct {
	loader    *defs.Loader
	logger    *zap.Logger
	auth      api.AuthConfig
	userAgent string
	endpoints map[string]string
	resolver  func(service string) string
	transport http.RoundTripper

	mu       sync.Mutex
	contexts map[string]*model.ServiceContext
}

// New builds a session. Without options it serves the bundled definitions
// and stays silent.
func New(opts ...Option) *Session {
	s := &Session{
		endpoints: make(map[string]string),
		contexts:  make(map[string]*model.ServiceContext),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = defs.NewLoader()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// AvailableServices lists services the session can build clients for.
func (s *Session) AvailableServices() ([]string, error) {
	return s.loader.ListServices(defs.DefAPI)
}

// AvailableResources lists services the session can build resources for.
func (s *Session) AvailableResources() ([]string, error) {
	return s.loader.ListServices(defs.DefResources)
}

// Endpoint resolves the base URL for a service: pinned endpoints first,
// then the resolver, then RAL_ENDPOINT_<SERVICE>.
func (s *Session) Endpoint(service string) string {
	if url, ok := s.endpoints[service]; ok {
		return url
	}
	if s.resolver != nil {
		if url := s.resolver(service); url != "" {
			return url
		}
	}
	return os.Getenv(EnvEndpointPrefix + strings.ToUpper(service))
}

// Client builds a low-level client for a service. A nil config starts from
// defaults; session-level settings fill whatever the config leaves unset.
func (s *Session) Client(service string, config *api.Config) (*api.Client, error) {
	serviceModel, err := s.loader.LoadAPI(service, "")
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &api.Config{}
	}
	if config.Endpoint == "" {
		config.Endpoint = s.Endpoint(service)
	}
	if config.Auth.Type == "" {
		config.Auth = s.auth
	}
	if config.UserAgent == "" && s.userAgent != "" {
		config.UserAgent = s.userAgent
	}
	if config.Transport == nil {
		config.Transport = s.transport
	}
	if config.Logger == nil {
		config.Logger = s.logger
	}
	return api.NewClient(serviceModel, config), nil
}

// Resource builds the service root handle for a service. A nil config is
// filled the same way Client fills it.
func (s *Session) Resource(service string, config *api.Config) (*resource.Handle, error) {
	sc, err := s.ServiceContext(service)
	if err != nil {
		return nil, err
	}
	client, err := s.Client(service, config)
	if err != nil {
		return nil, err
	}
	factory, err := resource.NewFactory(sc, client, s.logger)
	if err != nil {
		return nil, err
	}
	return factory.ServiceResource()
}

// ServiceContext loads and caches the models behind one service.
func (s *Session) ServiceContext(service string) (*model.ServiceContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.contexts[service]; ok {
		return sc, nil
	}

	if !s.loader.Has(service, "", defs.DefResources) {
		available, _ := s.AvailableResources()
		return nil, fmt.Errorf("service %q has no resource definitions; available: %s",
			service, strings.Join(available, ", "))
	}
	serviceModel, err := s.loader.LoadAPI(service, "")
	if err != nil {
		return nil, err
	}
	resourceDefs, err := s.loader.LoadResources(service, "")
	if err != nil {
		return nil, err
	}

	sc := &model.ServiceContext{
		ServiceName:  service,
		Service:      serviceModel,
		ResourceDefs: resourceDefs,
	}
	if s.loader.Has(service, "", defs.DefWaiters) {
		sc.Waiters = newLazyWaiters(s.loader, service)
	}
	s.contexts[service] = sc
	return sc, nil
}
