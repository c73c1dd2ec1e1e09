// Package ral is the public surface of the resource abstraction layer. It
// re-exports the session, client and resource types so callers never
// import internal packages:
//
//	sess := ral.NewSession()
//	queues, err := sess.Resource("queues", nil)
//	result, err := queues.CallAction(ctx, "CreateQueue", ral.Params{"Name": "jobs"})
//	queue := result.Resource
package ral

import (
	"io/fs"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/defs"
	"github.com/stratus/ral-core/internal/model"
	"github.com/stratus/ral-core/internal/resource"
	"github.com/stratus/ral-core/internal/session"
)

// Version is the library release version.
const Version = "0.1.0"

// Re-export types for external use
type (
	Session = session.Session
	Option  = session.Option

	Config      = api.Config
	Client      = api.Client
	AuthConfig  = api.AuthConfig
	AuthType    = api.AuthType
	APIError    = api.APIError
	WaiterError = api.WaiterError

	Params         = model.Params
	ServiceContext = model.ServiceContext

	Handle                 = resource.Handle
	Meta                   = resource.Meta
	Action                 = resource.Action
	ActionResult           = resource.ActionResult
	Collection             = resource.Collection
	BatchAction            = resource.BatchAction
	Iterator[T any]        = resource.Iterator[T]
	ExtensionFunc          = resource.ExtensionFunc
	NoLoadError            = resource.NoLoadError
	MissingIdentifierError = resource.MissingIdentifierError

	Loader         = defs.Loader
	LoaderOption   = defs.LoaderOption
	Registry       = defs.Registry
	DefinitionType = defs.DefinitionType
)

const (
	AuthNone   = api.AuthNone
	AuthBasic  = api.AuthBasic
	AuthBearer = api.AuthBearer
	AuthAPIKey = api.AuthAPIKey

	DefAPI       = defs.DefAPI
	DefResources = defs.DefResources
	DefWaiters   = defs.DefWaiters

	// EnvDataPath lists extra definition directories, like PATH.
	EnvDataPath = defs.EnvDataPath

	// EnvEndpointPrefix prefixes per-service endpoint variables.
	EnvEndpointPrefix = session.EnvEndpointPrefix
)

// =============================================================================
// SESSIONS
// =============================================================================

// NewSession builds a session. Without options it serves the bundled
// definitions, resolves endpoints from the environment and stays silent.
func NewSession(opts ...Option) *Session {
	return session.New(withStream(opts)...)
}

// DefaultSession returns the process-wide session, creating an
// unconfigured one on first use.
func DefaultSession() *Session {
	return session.Default()
}

// SetupDefaultSession builds a session from opts and installs it as the
// process-wide default, replacing any existing one.
func SetupDefaultSession(opts ...Option) *Session {
	return session.SetupDefault(withStream(opts)...)
}

// Resource builds a service root handle from the default session.
func Resource(service string, config *Config) (*Handle, error) {
	return DefaultSession().Resource(service, config)
}

// NewClient builds a low-level client from the default session.
func NewClient(service string, config *Config) (*Client, error) {
	return DefaultSession().Client(service, config)
}

// WithLoader replaces the definition loader on a new session.
func WithLoader(l *Loader) Option { return session.WithLoader(l) }

// WithLogger sets the logger handed to clients and factories.
func WithLogger(logger *zap.Logger) Option { return session.WithLogger(logger) }

// WithAuth sets the credentials applied to every service client.
func WithAuth(auth AuthConfig) Option { return session.WithAuth(auth) }

// WithUserAgent overrides the client user agent.
func WithUserAgent(ua string) Option { return session.WithUserAgent(ua) }

// WithEndpoint pins one service to a base URL.
func WithEndpoint(service, url string) Option { return session.WithEndpoint(service, url) }

// WithEndpointResolver installs a fallback endpoint lookup.
func WithEndpointResolver(fn func(service string) string) Option {
	return session.WithEndpointResolver(fn)
}

// WithTransport injects an HTTP transport into every client.
func WithTransport(rt http.RoundTripper) Option { return session.WithTransport(rt) }

// =============================================================================
// DEFINITIONS
// =============================================================================

// NewLoader builds a definition loader. Without options it serves the
// bundled definitions plus any directories named by EnvDataPath.
func NewLoader(opts ...LoaderOption) *Loader { return defs.NewLoader(opts...) }

// WithSearchPath layers an external definition directory over the
// bundled definitions. Later paths win.
func WithSearchPath(dir string) LoaderOption { return defs.WithSearchPath(dir) }

// WithRegistry replaces the embedded definition registry.
func WithRegistry(r *Registry) LoaderOption { return defs.WithRegistry(r) }

// WithoutEmbedded drops the bundled definitions from the loader.
func WithoutEmbedded() LoaderOption { return defs.WithoutEmbedded() }

// NewRegistry builds an empty definition registry.
func NewRegistry() *Registry { return defs.NewRegistry() }

// RegisterDefinitions adds an embedded definition filesystem to the
// default registry, making its services visible to every new loader.
func RegisterDefinitions(name string, fsys fs.FS) { defs.Register(name, fsys) }

// RegisterExtension attaches a custom member to a resource type. The
// member becomes callable through Handle.CallExtension.
func RegisterExtension(service, resourceType, member string, fn ExtensionFunc) {
	resource.RegisterExtension(service, resourceType, member, fn)
}

// AsAPIError unwraps err to the service error it carries, if any.
func AsAPIError(err error) (*APIError, bool) { return api.AsAPIError(err) }

// =============================================================================
// LOGGING
// =============================================================================

var (
	logMu        sync.Mutex
	streamLogger *zap.Logger
)

// SetStreamLogger routes library logging to a console logger at the
// given level and returns it. The library stays silent until this is
// called; sessions built earlier keep the logger they were built with.
func SetStreamLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	logMu.Lock()
	streamLogger = logger
	logMu.Unlock()
	return logger
}

// withStream puts the stream logger, when set, below the caller's own
// options so an explicit WithLogger still wins.
func withStream(opts []Option) []Option {
	logMu.Lock()
	sl := streamLogger
	logMu.Unlock()
	if sl == nil {
		return opts
	}
	return append([]Option{WithLogger(sl)}, opts...)
}
