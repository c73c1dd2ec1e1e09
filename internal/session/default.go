package session

import "sync"

// The default session backs the package-level conveniences in pkg/ral. It
// is created on first use and replaced wholesale by SetupDefault.
var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// Default returns the process-wide session, creating an unconfigured one on
// first use.
func Default() *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSession == nil {
		defaultSession = New()
	}
	return defaultSession
}

// SetupDefault builds a new session from opts and installs it as the
// default, replacing any existing one.
func SetupDefault(opts ...Option) *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSession = New(opts...)
	return defaultSession
}
