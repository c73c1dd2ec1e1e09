package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/model"
)

const apiFixture = `{
  "version": "2024-06-01",
  "metadata": {
    "serviceId": "queues",
    "apiVersion": "2024-06-01",
    "protocol": "rest-json",
    "endpointPrefix": "queues",
    "documentation": "A managed message queue service."
  },
  "operations": {
    "CreateQueue": {
      "http": {"method": "POST", "requestUri": "/v1/queues"},
      "input": {"shape": "CreateQueueInput"},
      "output": {"shape": "CreateQueueOutput"},
      "documentation": "Creates a queue.",
      "idempotent": true,
      "idempotencyToken": "ClientToken"
    },
    "ListQueues": {
      "http": {"method": "GET", "requestUri": "/v1/queues"},
      "input": {"shape": "ListQueuesInput"},
      "output": {"shape": "ListQueuesOutput"},
      "pagination": {
        "inputToken": "NextToken",
        "outputToken": "NextToken",
        "resultKey": "Queues",
        "limitKey": "MaxResults"
      }
    }
  },
  "shapes": {
    "CreateQueueInput": {
      "type": "structure",
      "required": ["Name"],
      "members": {
        "Name": {"shape": "QueueName", "documentation": "The queue name."},
        "ClientToken": {"shape": "String"},
        "DelaySeconds": {"shape": "Integer"}
      }
    },
    "CreateQueueOutput": {
      "type": "structure",
      "members": {"Queue": {"shape": "Queue"}}
    },
    "ListQueuesInput": {
      "type": "structure",
      "members": {
        "NextToken": {"shape": "String", "location": "querystring"},
        "MaxResults": {"shape": "Integer", "location": "querystring"}
      }
    },
    "ListQueuesOutput": {
      "type": "structure",
      "members": {
        "Queues": {"shape": "QueueList"},
        "NextToken": {"shape": "String"}
      }
    },
    "Queue": {
      "type": "structure",
      "members": {
        "Name": {"shape": "QueueName"},
        "Arn": {"shape": "String"},
        "MessageCount": {"shape": "Long"}
      }
    },
    "QueueList": {"type": "list", "member": {"shape": "Queue"}},
    "QueueName": {"type": "string"},
    "String": {"type": "string"},
    "Integer": {"type": "integer"},
    "Long": {"type": "long"}
  }
}`

func TestParseAPI_ResolvesOperationsAndShapes(t *testing.T) {
	m, err := model.ParseAPI([]byte(apiFixture))
	require.NoError(t, err)

	assert.Equal(t, "queues", m.ServiceID())
	assert.Equal(t, []string{"CreateQueue", "ListQueues"}, m.OperationNames())

	op, err := m.Operation("CreateQueue")
	require.NoError(t, err)
	assert.Equal(t, "CreateQueue", op.Name())
	assert.Equal(t, "POST", op.HTTP.Method)
	assert.True(t, op.Idempotent)
	assert.Equal(t, "ClientToken", op.IdempotencyToken)

	in, err := op.InputShape()
	require.NoError(t, err)
	assert.True(t, in.IsRequired("Name"))

	out, err := op.OutputShape()
	require.NoError(t, err)
	queue, err := out.MemberShape("Queue")
	require.NoError(t, err)
	assert.Equal(t, "Queue", queue.Name())
}

func TestParseAPI_MemberNamesRequiredFirst(t *testing.T) {
	m, err := model.ParseAPI([]byte(apiFixture))
	require.NoError(t, err)

	shape, err := m.Shape("CreateQueueInput")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "ClientToken", "DelaySeconds"}, shape.MemberNames())
}

func TestParseAPI_RejectsDanglingShapeRef(t *testing.T) {
	bad := `{
	  "metadata": {"serviceId": "x", "apiVersion": "1", "protocol": "rest-json", "endpointPrefix": "x"},
	  "operations": {"Get": {"http": {"method": "GET", "requestUri": "/"}, "output": {"shape": "Missing"}}},
	  "shapes": {}
	}`
	_, err := model.ParseAPI([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shape")
}

func TestParseAPI_RequiresServiceID(t *testing.T) {
	_, err := model.ParseAPI([]byte(`{"metadata": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serviceId")
}

func TestShape_GoTypeName(t *testing.T) {
	m, err := model.ParseAPI([]byte(apiFixture))
	require.NoError(t, err)

	cases := map[string]string{
		"QueueName": "string",
		"Long":      "int64",
		"Integer":   "int",
		"QueueList": "[]map[string]any",
		"Queue":     "map[string]any",
	}
	for shapeName, want := range cases {
		shape, err := m.Shape(shapeName)
		require.NoError(t, err)
		assert.Equal(t, want, shape.GoTypeName(), "shape %s", shapeName)
	}
}

func TestOperation_Pagination(t *testing.T) {
	m, err := model.ParseAPI([]byte(apiFixture))
	require.NoError(t, err)

	op, err := m.Operation("ListQueues")
	require.NoError(t, err)
	require.NotNil(t, op.Pagination)
	assert.Equal(t, "NextToken", op.Pagination.InputToken)
	assert.Equal(t, "Queues", op.Pagination.ResultKey)
	assert.Equal(t, "MaxResults", op.Pagination.LimitKey)
}
