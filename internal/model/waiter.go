package model

import (
	"encoding/json"
	"fmt"
)

// Acceptor matchers and states, per waiters.json version 2.
const (
	MatcherStatus  = "status"
	MatcherPath    = "path"
	MatcherPathAll = "pathAll"
	MatcherPathAny = "pathAny"
	MatcherError   = "error"

	StateSuccess = "success"
	StateFailure = "failure"
	StateRetry   = "retry"
)

// WaitersFile is the on-disk layout of a waiters.json definition.
type WaitersFile struct {
	Version int                      `json:"version"`
	Waiters map[string]*WaiterConfig `json:"waiters"`
}

// WaiterConfig describes one polling waiter.
type WaiterConfig struct {
	Operation     string      `json:"operation"`
	Documentation string      `json:"documentation,omitempty"`
	DelaySeconds  int         `json:"delay"`
	MaxAttempts   int         `json:"maxAttempts"`
	Acceptors     []*Acceptor `json:"acceptors"`

	name string
}

// Name returns the waiter's name in the definition.
func (c *WaiterConfig) Name() string { return c.name }

// Acceptor maps one observation of the polled operation to a waiter state.
type Acceptor struct {
	State    string `json:"state"`
	Matcher  string `json:"matcher"`
	Argument string `json:"argument,omitempty"`
	Expected any    `json:"expected"`
}

// ExpectedStatus returns the expected HTTP status for status matchers.
func (a *Acceptor) ExpectedStatus() (int, bool) {
	switch v := a.Expected.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// WaiterModel is the parsed, queryable view over a WaitersFile.
type WaiterModel struct {
	file *WaitersFile
}

// ParseWaiters parses and validates a waiters.json document.
func ParseWaiters(data []byte) (*WaiterModel, error) {
	var file WaitersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse waiter definitions: %w", err)
	}
	if file.Version != 2 {
		return nil, fmt.Errorf("unsupported waiter definition version %d", file.Version)
	}
	for name, cfg := range file.Waiters {
		cfg.name = name
		if cfg.Operation == "" {
			return nil, fmt.Errorf("waiter %s has no operation", name)
		}
		if cfg.DelaySeconds <= 0 || cfg.MaxAttempts <= 0 {
			return nil, fmt.Errorf("waiter %s needs positive delay and maxAttempts", name)
		}
		for _, acc := range cfg.Acceptors {
			switch acc.Matcher {
			case MatcherStatus, MatcherPath, MatcherPathAll, MatcherPathAny, MatcherError:
			default:
				return nil, fmt.Errorf("waiter %s has unknown matcher %q", name, acc.Matcher)
			}
			switch acc.State {
			case StateSuccess, StateFailure, StateRetry:
			default:
				return nil, fmt.Errorf("waiter %s has unknown state %q", name, acc.State)
			}
		}
	}
	return &WaiterModel{file: &file}, nil
}

// WaiterNames returns all waiter names, sorted.
func (m *WaiterModel) WaiterNames() ([]string, error) {
	return sortedKeys(m.file.Waiters), nil
}

// Waiter returns the named waiter configuration.
func (m *WaiterModel) Waiter(name string) (*WaiterConfig, error) {
	cfg, ok := m.file.Waiters[name]
	if !ok {
		return nil, fmt.Errorf("unknown waiter %q", name)
	}
	return cfg, nil
}

// WaiterSource yields waiter configurations on demand. The session layer
// provides a lazy implementation so consumers that never touch waiters
// never pay for parsing them.
type WaiterSource interface {
	WaiterNames() ([]string, error)
	Waiter(name string) (*WaiterConfig, error)
}

var _ WaiterSource = (*WaiterModel)(nil)
