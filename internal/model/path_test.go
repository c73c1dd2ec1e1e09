package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/model"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestToJSONPath(t *testing.T) {
	cases := map[string]string{
		"Queue":           "$.Queue",
		"Queue.Name":      "$.Queue.Name",
		"Queues[].Name":   "$.Queues[*].Name",
		"Contents[0].Key": "$.Contents[0].Key",
		"Contents[]":      "$.Contents[*]",
	}
	for in, want := range cases {
		assert.Equal(t, want, model.ToJSONPath(in), "path %s", in)
	}
}

func TestSearchPath(t *testing.T) {
	doc := decode(t, `{
	  "Queue": {"Name": "orders", "State": "active"},
	  "Queues": [{"Name": "a"}, {"Name": "b"}]
	}`)

	assert.Equal(t, "orders", model.SearchPath("Queue.Name", doc))
	assert.Equal(t, []any{"a", "b"}, model.SearchPath("Queues[].Name", doc))

	// Absent members are unset, not errors.
	assert.Nil(t, model.SearchPath("Queue.Missing", doc))
	assert.Nil(t, model.SearchPath("Nope.Deeper", doc))

	// Empty path passes data through.
	assert.Equal(t, doc, model.SearchPath("", doc))
}

func TestSearchPathList(t *testing.T) {
	doc := decode(t, `{"Items": [1, 2], "One": "x"}`)

	assert.Equal(t, []any{float64(1), float64(2)}, model.SearchPathList("Items[]", doc))
	assert.Equal(t, []any{"x"}, model.SearchPathList("One", doc))
	assert.Nil(t, model.SearchPathList("Missing", doc))
}

func TestPathReturnsList(t *testing.T) {
	assert.True(t, model.PathReturnsList("Queues[].Name"))
	assert.False(t, model.PathReturnsList("Queue.Name"))
	assert.False(t, model.PathReturnsList("Contents[0].Key"))
}
