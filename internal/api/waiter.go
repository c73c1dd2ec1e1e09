package api

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stratus/ral-core/internal/model"
)

// =============================================================================
// WAITER
// =============================================================================

// Waiter polls an operation until one of its acceptors resolves the wait.
// Polling cadence comes from the waiter definition's delay, enforced with a
// rate limiter so the first poll fires immediately and later polls keep the
// configured spacing.
type Waiter struct {
	name   string
	config *model.WaiterConfig
	caller Caller
	logger *zap.Logger
}

// NewWaiter builds a waiter over a caller. A nil logger disables diagnostics.
func NewWaiter(name string, config *model.WaiterConfig, caller Caller, logger *zap.Logger) *Waiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Waiter{name: name, config: config, caller: caller, logger: logger}
}

// Name returns the waiter's definition name.
func (w *Waiter) Name() string { return w.name }

// Wait polls until an acceptor reaches a terminal state or attempts run out.
func (w *Waiter) Wait(ctx context.Context, params model.Params) error {
	delay := time.Duration(w.config.DelaySeconds) * time.Second
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	var lastErr error
	for attempt := 1; attempt <= w.config.MaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiter %s: %w", w.name, err)
		}

		out, opErr := w.caller.CallOperation(ctx, w.config.Operation, params)
		if opErr != nil {
			if _, ok := AsAPIError(opErr); !ok {
				// Transport-level failure, not a service response.
				return fmt.Errorf("waiter %s: %w", w.name, opErr)
			}
			lastErr = opErr
		}

		state, matched := w.evaluate(out, opErr)
		if !matched {
			if opErr != nil {
				return &WaiterError{Name: w.name, Reason: "unexpected error while waiting", Last: opErr}
			}
			continue
		}

		switch state {
		case model.StateSuccess:
			return nil
		case model.StateFailure:
			return &WaiterError{Name: w.name, Reason: "terminal failure state reached", Last: opErr}
		default:
			w.logger.Debug("waiter retrying",
				zap.String("waiter", w.name),
				zap.Int("attempt", attempt))
		}
	}
	return &WaiterError{
		Name:   w.name,
		Reason: fmt.Sprintf("max attempts exceeded (%d)", w.config.MaxAttempts),
		Last:   lastErr,
	}
}

// evaluate runs the acceptors in definition order and returns the first
// matching state.
func (w *Waiter) evaluate(out model.Params, opErr error) (string, bool) {
	for _, acc := range w.config.Acceptors {
		if w.acceptorMatches(acc, out, opErr) {
			return acc.State, true
		}
	}
	return "", false
}

func (w *Waiter) acceptorMatches(acc *model.Acceptor, out model.Params, opErr error) bool {
	switch acc.Matcher {
	case model.MatcherStatus:
		want, ok := acc.ExpectedStatus()
		if !ok {
			return false
		}
		if apiErr, isAPI := AsAPIError(opErr); isAPI {
			return apiErr.StatusCode == want
		}
		if opErr != nil {
			return false
		}
		status, ok := ResponseStatus(out)
		if !ok {
			status = 200
		}
		return status == want

	case model.MatcherError:
		apiErr, isAPI := AsAPIError(opErr)
		if !isAPI {
			return false
		}
		code, _ := acc.Expected.(string)
		return code != "" && apiErr.Code == code

	case model.MatcherPath:
		if opErr != nil {
			return false
		}
		return valueEqual(model.SearchPath(acc.Argument, out), acc.Expected)

	case model.MatcherPathAll:
		if opErr != nil {
			return false
		}
		values := model.SearchPathList(acc.Argument, out)
		if len(values) == 0 {
			return false
		}
		for _, v := range values {
			if !valueEqual(v, acc.Expected) {
				return false
			}
		}
		return true

	case model.MatcherPathAny:
		if opErr != nil {
			return false
		}
		for _, v := range model.SearchPathList(acc.Argument, out) {
			if valueEqual(v, acc.Expected) {
				return true
			}
		}
		return false
	}
	return false
}

// valueEqual compares a searched value against an acceptor's expectation,
// tolerating JSON's number decoding.
func valueEqual(got, want any) bool {
	if gf, ok := toFloat(got); ok {
		if wf, ok2 := toFloat(want); ok2 {
			return gf == wf
		}
	}
	return reflect.DeepEqual(got, want)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// WaiterError reports a wait that ended without reaching success.
type WaiterError struct {
	Name   string
	Reason string
	Last   error
}

func (e *WaiterError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("waiter %s failed: %s: %v", e.Name, e.Reason, e.Last)
	}
	return fmt.Sprintf("waiter %s failed: %s", e.Name, e.Reason)
}

func (e *WaiterError) Unwrap() error { return e.Last }
