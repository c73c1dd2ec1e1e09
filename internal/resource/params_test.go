package resource_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/model"
	"github.com/stratus/ral-core/internal/resource"
)

func TestBuildParamStructure_ScalarAndNested(t *testing.T) {
	params := model.Params{}
	resource.BuildParamStructure(params, "Name", "jobs", nil)
	resource.BuildParamStructure(params, "Config.Timeout", 30, nil)
	resource.BuildParamStructure(params, "Config.Retries", 3, nil)

	assert.Equal(t, model.Params{
		"Name": "jobs",
		"Config": map[string]any{
			"Timeout": 30,
			"Retries": 3,
		},
	}, params)
}

func TestBuildParamStructure_AppendsWithoutIndex(t *testing.T) {
	params := model.Params{}
	resource.BuildParamStructure(params, "Entries[].Id", "m-1", nil)
	resource.BuildParamStructure(params, "Entries[].Id", "m-2", nil)

	assert.Equal(t, model.Params{
		"Entries": []any{
			map[string]any{"Id": "m-1"},
			map[string]any{"Id": "m-2"},
		},
	}, params)
}

func TestBuildParamStructure_PinnedIndexSharesElement(t *testing.T) {
	params := model.Params{}
	for i, msg := range []struct{ id, receipt string }{
		{"m-1", "r-1"},
		{"m-2", "r-2"},
	} {
		index := i
		resource.BuildParamStructure(params, "Entries[].Id", msg.id, &index)
		resource.BuildParamStructure(params, "Entries[].ReceiptHandle", msg.receipt, &index)
	}

	assert.Equal(t, model.Params{
		"Entries": []any{
			map[string]any{"Id": "m-1", "ReceiptHandle": "r-1"},
			map[string]any{"Id": "m-2", "ReceiptHandle": "r-2"},
		},
	}, params)
}

func TestBuildParamStructure_ExplicitIndex(t *testing.T) {
	params := model.Params{}
	resource.BuildParamStructure(params, "Grants[1].Grantee", "ops", nil)

	// Element 0 is backfilled so the pinned slot exists.
	assert.Equal(t, model.Params{
		"Grants": []any{
			map[string]any{},
			map[string]any{"Grantee": "ops"},
		},
	}, params)
}

func TestBuildParamStructure_StarBehavesLikeAppend(t *testing.T) {
	params := model.Params{}
	resource.BuildParamStructure(params, "Rules[*].Name", "first", nil)
	resource.BuildParamStructure(params, "Rules[*].Name", "second", nil)

	assert.Equal(t, model.Params{
		"Rules": []any{
			map[string]any{"Name": "first"},
			map[string]any{"Name": "second"},
		},
	}, params)
}

func TestBuildParamStructure_ListValueAtLeaf(t *testing.T) {
	params := model.Params{}
	resource.BuildParamStructure(params, "Delete.Objects[].Key", "a.txt", nil)
	resource.BuildParamStructure(params, "Delete.Quiet", true, nil)

	assert.Equal(t, model.Params{
		"Delete": map[string]any{
			"Objects": []any{map[string]any{"Key": "a.txt"}},
			"Quiet":   true,
		},
	}, params)
}

func TestCreateRequestParameters_Sources(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", activeQueueData(model.Params{"DeadLetterTarget": "jobs-dlq"}))
	q := queueHandle(t, factory, "jobs")

	mappings := []*model.Parameter{
		{Target: "QueueName", Source: model.SourceIdentifier, Name: "Name"},
		{Target: "Target", Source: model.SourceData, Path: "DeadLetterTarget"},
		{Target: "Mode", Source: model.SourceString, Value: "fast"},
		{Target: "Priority", Source: model.SourceInteger, Value: float64(5)},
		{Target: "DryRun", Source: model.SourceBoolean, Value: true},
		{Target: "Comment", Source: model.SourceInput},
	}
	params, err := resource.CreateRequestParameters(context.Background(), q, mappings, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, model.Params{
		"QueueName": "jobs",
		"Target":    "jobs-dlq",
		"Mode":      "fast",
		"Priority":  float64(5),
		"DryRun":    true,
	}, params)
	// The data source forced one load.
	assert.Equal(t, []string{"GetQueue"}, caller.ops)
}

func TestCreateRequestParameters_UnknownIdentifier(t *testing.T) {
	_, factory := queuesFixture(t)
	q := queueHandle(t, factory, "jobs")

	_, err := resource.CreateRequestParameters(context.Background(), q, []*model.Parameter{
		{Target: "X", Source: model.SourceIdentifier, Name: "Missing"},
	}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no identifier "Missing"`)
}
