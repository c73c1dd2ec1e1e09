package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/model"
)

const waitersFixture = `{
  "version": 2,
  "waiters": {
    "QueueExists": {
      "operation": "GetQueue",
      "delay": 2,
      "maxAttempts": 10,
      "acceptors": [
        {"state": "success", "matcher": "status", "expected": 200},
        {"state": "retry", "matcher": "error", "expected": "QueueNotFound"},
        {"state": "failure", "matcher": "path", "argument": "Queue.State", "expected": "deleting"}
      ]
    }
  }
}`

func TestParseWaiters(t *testing.T) {
	m, err := model.ParseWaiters([]byte(waitersFixture))
	require.NoError(t, err)

	names, err := m.WaiterNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"QueueExists"}, names)

	cfg, err := m.Waiter("QueueExists")
	require.NoError(t, err)
	assert.Equal(t, "QueueExists", cfg.Name())
	assert.Equal(t, "GetQueue", cfg.Operation)
	assert.Equal(t, 2, cfg.DelaySeconds)
	require.Len(t, cfg.Acceptors, 3)

	status, ok := cfg.Acceptors[0].ExpectedStatus()
	require.True(t, ok)
	assert.Equal(t, 200, status)

	_, err = m.Waiter("Nope")
	assert.Error(t, err)
}

func TestParseWaiters_Validation(t *testing.T) {
	cases := map[string]string{
		`{"version": 1, "waiters": {}}`: "version",
		`{"version": 2, "waiters": {"W": {"delay": 1, "maxAttempts": 1}}}`:                         "no operation",
		`{"version": 2, "waiters": {"W": {"operation": "Op", "delay": 0, "maxAttempts": 1}}}`:      "positive delay",
		`{"version": 2, "waiters": {"W": {"operation": "Op", "delay": 1, "maxAttempts": 1, "acceptors": [{"state": "success", "matcher": "regex"}]}}}`: "unknown matcher",
		`{"version": 2, "waiters": {"W": {"operation": "Op", "delay": 1, "maxAttempts": 1, "acceptors": [{"state": "paused", "matcher": "status"}]}}}`:  "unknown state",
	}
	for raw, wantErr := range cases {
		_, err := model.ParseWaiters([]byte(raw))
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), wantErr)
	}
}
