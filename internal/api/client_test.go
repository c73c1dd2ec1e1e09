package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/model"
)

const clientAPIFixture = `{
  "version": "1.0",
  "metadata": {
    "serviceId": "queues",
    "apiVersion": "2024-06-01",
    "protocol": "rest-json",
    "endpointPrefix": "queues"
  },
  "operations": {
    "CreateQueue": {
      "http": {"method": "POST", "requestUri": "/v1/queues"},
      "input": {"shape": "CreateQueueInput"},
      "output": {"shape": "CreateQueueOutput"},
      "idempotent": true,
      "idempotencyToken": "ClientToken"
    },
    "GetQueue": {
      "http": {"method": "GET", "requestUri": "/v1/queues/{Name}"},
      "input": {"shape": "GetQueueInput"},
      "output": {"shape": "GetQueueOutput"}
    },
    "ListMessages": {
      "http": {"method": "GET", "requestUri": "/v1/queues/{QueueName}/messages"},
      "input": {"shape": "ListMessagesInput"},
      "output": {"shape": "ListMessagesOutput"}
    },
    "Ping": {
      "http": {"method": "GET", "requestUri": "/v1/ping"}
    }
  },
  "shapes": {
    "CreateQueueInput": {
      "type": "structure",
      "required": ["Name"],
      "members": {
        "Name": {"shape": "String"},
        "ClientToken": {"shape": "String"},
        "DelaySeconds": {"shape": "Integer"}
      }
    },
    "CreateQueueOutput": {
      "type": "structure",
      "members": {"Queue": {"shape": "Queue"}}
    },
    "GetQueueInput": {
      "type": "structure",
      "required": ["Name"],
      "members": {"Name": {"shape": "String", "location": "uri"}}
    },
    "GetQueueOutput": {
      "type": "structure",
      "members": {"Queue": {"shape": "Queue"}}
    },
    "ListMessagesInput": {
      "type": "structure",
      "required": ["QueueName"],
      "members": {
        "QueueName": {"shape": "String", "location": "uri"},
        "MaxResults": {"shape": "Integer", "location": "querystring", "locationName": "limit"},
        "TraceID": {"shape": "String", "location": "header", "locationName": "X-Trace-Id"}
      }
    },
    "ListMessagesOutput": {
      "type": "structure",
      "members": {"Messages": {"shape": "MessageList"}}
    },
    "Queue": {
      "type": "structure",
      "members": {
        "Name": {"shape": "String"},
        "State": {"shape": "String"}
      }
    },
    "MessageList": {"type": "list", "member": {"shape": "Message"}},
    "Message": {
      "type": "structure",
      "members": {"Id": {"shape": "String"}}
    },
    "String": {"type": "string"},
    "Integer": {"type": "integer"}
  }
}`

func clientFixtureModel(t *testing.T) *model.ServiceModel {
	t.Helper()
	m, err := model.ParseAPI([]byte(clientAPIFixture))
	require.NoError(t, err)
	return m
}

func TestClient_CallOperation_BindsRequest(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotTrace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotTrace = r.Header.Get("X-Trace-Id")
		w.Header().Set("X-Request-Id", "req-123")
		w.Write([]byte(`{"Messages": [{"Id": "m-1"}]}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL})
	out, err := client.CallOperation(context.Background(), "ListMessages", model.Params{
		"QueueName":  "jobs",
		"MaxResults": 5,
		"TraceID":    "trace-9",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/v1/queues/jobs/messages", gotPath)
	assert.Equal(t, "limit=5", gotQuery)
	assert.Equal(t, "trace-9", gotTrace)

	messages, ok := out["Messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 1)

	status, ok := api.ResponseStatus(out)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	meta := out[api.ResponseMetadataKey].(model.Params)
	assert.Equal(t, "req-123", meta[api.RequestIDKey])
}

func TestClient_CallOperation_BodyMembers(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"Queue": {"Name": "jobs", "State": "active"}}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL})
	out, err := client.CallOperation(context.Background(), "CreateQueue", model.Params{
		"Name":         "jobs",
		"DelaySeconds": 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "jobs", gotBody["Name"])
	assert.Equal(t, float64(30), gotBody["DelaySeconds"])
	queue, ok := out["Queue"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "active", queue["State"])
}

func TestClient_CallOperation_GeneratesIdempotencyToken(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL})
	_, err := client.CallOperation(context.Background(), "CreateQueue", model.Params{"Name": "jobs"})
	require.NoError(t, err)

	token, ok := gotBody["ClientToken"].(string)
	require.True(t, ok, "expected a generated ClientToken in the body")
	_, err = uuid.Parse(token)
	assert.NoError(t, err, "generated token should be a UUID")

	// An explicit token passes through untouched.
	_, err = client.CallOperation(context.Background(), "CreateQueue", model.Params{
		"Name":        "jobs",
		"ClientToken": "caller-chose-this",
	})
	require.NoError(t, err)
	assert.Equal(t, "caller-chose-this", gotBody["ClientToken"])
}

func TestClient_CallOperation_RejectsUnknownParameters(t *testing.T) {
	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: "http://unreachable.invalid"})
	_, err := client.CallOperation(context.Background(), "GetQueue", model.Params{
		"Name":  "jobs",
		"Bogus": true,
		"Rogue": 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept parameters")
	assert.Contains(t, err.Error(), "Bogus, Rogue")
}

func TestClient_CallOperation_MissingRequiredParameter(t *testing.T) {
	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: "http://unreachable.invalid"})
	_, err := client.CallOperation(context.Background(), "CreateQueue", model.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required parameter "Name"`)
}

func TestClient_CallOperation_NoInputOperation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status": "ok"}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL})
	out, err := client.CallOperation(context.Background(), "Ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["Status"])

	_, err = client.CallOperation(context.Background(), "Ping", model.Params{"Extra": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts no parameters")
}

func TestClient_CallOperation_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"code": "InternalError", "message": "try again"}`))
			return
		}
		w.Write([]byte(`{"Queue": {"Name": "jobs"}}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL, MaxRetries: 3})
	out, err := client.CallOperation(context.Background(), "GetQueue", model.Params{"Name": "jobs"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.NotNil(t, out["Queue"])
}

func TestClient_CallOperation_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Request-Id", "req-404")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code": "QueueNotFound", "message": "no queue named jobs"}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: srv.URL, MaxRetries: 3})
	_, err := client.CallOperation(context.Background(), "GetQueue", model.Params{"Name": "jobs"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "QueueNotFound", apiErr.Code)
	assert.Equal(t, "req-404", apiErr.RequestID)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsRateLimited())
	assert.Contains(t, apiErr.Error(), "QueueNotFound")
}

func TestClient_CallOperation_AuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := api.NewClient(clientFixtureModel(t), &api.Config{
		Endpoint: srv.URL,
		Auth:     api.AuthConfig{Type: api.AuthBearer, Token: "secret-token"},
	})
	_, err := client.CallOperation(context.Background(), "Ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClient_CallOperation_UnknownOperation(t *testing.T) {
	client := api.NewClient(clientFixtureModel(t), &api.Config{Endpoint: "http://unreachable.invalid"})
	_, err := client.CallOperation(context.Background(), "Teleport", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no operation "Teleport"`)
}
