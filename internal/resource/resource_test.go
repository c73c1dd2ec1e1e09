package resource_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/defs"
	"github.com/stratus/ral-core/internal/model"
	"github.com/stratus/ral-core/internal/resource"
)

// fakeCaller routes operations to scripted handlers and records every call.
type fakeCaller struct {
	t        *testing.T
	service  *model.ServiceModel
	handlers map[string]func(model.Params) (model.Params, error)
	ops      []string
	params   []model.Params
}

func (c *fakeCaller) CallOperation(ctx context.Context, operation string, params model.Params) (model.Params, error) {
	c.ops = append(c.ops, operation)
	c.params = append(c.params, params)
	handler, ok := c.handlers[operation]
	if !ok {
		c.t.Fatalf("unexpected operation %s", operation)
	}
	return handler(params)
}

func (c *fakeCaller) Model() *model.ServiceModel { return c.service }

var _ api.Caller = (*fakeCaller)(nil)

func (c *fakeCaller) stub(operation string, out model.Params) {
	c.handlers[operation] = func(model.Params) (model.Params, error) {
		return out, nil
	}
}

func (c *fakeCaller) lastParams() model.Params {
	if len(c.params) == 0 {
		return nil
	}
	return c.params[len(c.params)-1]
}

// queuesFixture loads the bundled queues service and wires a factory over a
// scripted caller.
func queuesFixture(t *testing.T) (*fakeCaller, *resource.Factory) {
	t.Helper()
	loader := defs.NewLoader(defs.WithRegistry(defs.NewRegistry()))
	service, err := loader.LoadAPI("queues", "")
	require.NoError(t, err)
	resources, err := loader.LoadResources("queues", "")
	require.NoError(t, err)
	waiters, err := loader.LoadWaiters("queues", "")
	require.NoError(t, err)

	caller := &fakeCaller{
		t:        t,
		service:  service,
		handlers: make(map[string]func(model.Params) (model.Params, error)),
	}
	factory, err := resource.NewFactory(&model.ServiceContext{
		ServiceName:  "queues",
		Service:      service,
		ResourceDefs: resources,
		Waiters:      waiters,
	}, caller, nil)
	require.NoError(t, err)
	return caller, factory
}

func serviceRoot(t *testing.T, factory *resource.Factory) *resource.Handle {
	t.Helper()
	root, err := factory.ServiceResource()
	require.NoError(t, err)
	return root
}

func queueHandle(t *testing.T, factory *resource.Factory, name string) *resource.Handle {
	t.Helper()
	q, err := serviceRoot(t, factory).SubResource("Queue", name)
	require.NoError(t, err)
	return q
}

// =============================================================================
// FACTORY AND HANDLES
// =============================================================================

func TestFactory_ServiceResource(t *testing.T) {
	_, factory := queuesFixture(t)
	root := serviceRoot(t, factory)

	assert.True(t, root.IsServiceResource())
	assert.Equal(t, "queues.ServiceResource()", root.String())

	members, err := root.MemberNames()
	require.NoError(t, err)
	// The root exposes every defined resource type, including Message which
	// its has-block never mentions.
	assert.Equal(t, []string{"CreateQueue", "Message", "Meta", "Queue", "Queues"}, members)
}

func TestServiceResource_SubResource(t *testing.T) {
	_, factory := queuesFixture(t)
	root := serviceRoot(t, factory)

	q, err := root.SubResource("Queue", "jobs")
	require.NoError(t, err)
	assert.Equal(t, "queues.Queue(Name='jobs')", q.String())
	name, ok := q.Identifier("Name")
	require.True(t, ok)
	assert.Equal(t, "jobs", name)
	assert.False(t, q.Loaded())

	// Message needs both of its identifiers, in definition order.
	msg, err := root.SubResource("Message", "jobs", "m-1")
	require.NoError(t, err)
	assert.Equal(t, "queues.Message(QueueName='jobs', Id='m-1')", msg.String())

	_, err = root.SubResource("Queue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `needs a value for identifier "Name"`)

	_, err = root.SubResource("Queue", "jobs", "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes 1 identifier value(s), got 2")

	_, err = root.SubResource("Topic", "news")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no sub-resource "Topic"`)
}

func TestSubResource_DerivesParentIdentifiers(t *testing.T) {
	_, factory := queuesFixture(t)
	q := queueHandle(t, factory, "jobs")

	msg, err := q.SubResource("Message", "m-7")
	require.NoError(t, err)
	queueName, _ := msg.Identifier("QueueName")
	id, _ := msg.Identifier("Id")
	assert.Equal(t, "jobs", queueName)
	assert.Equal(t, "m-7", id)
}

func TestFactory_Resource_Validation(t *testing.T) {
	_, factory := queuesFixture(t)

	_, err := factory.Resource("Message", map[string]any{"QueueName": "jobs"})
	var missing *resource.MissingIdentifierError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Message", missing.Resource)
	assert.Equal(t, "Id", missing.Identifier)

	_, err = factory.Resource("Queue", map[string]any{"Name": "jobs", "Color": "red"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no identifier "Color"`)

	_, err = factory.Resource("Topic", map[string]any{"Name": "news"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no resource "Topic"`)
}

// =============================================================================
// LOAD AND ATTRIBUTES
// =============================================================================

func activeQueueData(extra model.Params) model.Params {
	data := model.Params{
		"Name":         "jobs",
		"State":        "active",
		"MessageCount": float64(12),
	}
	for k, v := range extra {
		data[k] = v
	}
	return model.Params{"Queue": data}
}

func TestHandle_AttributeLoadsOnDemand(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", activeQueueData(nil))
	q := queueHandle(t, factory, "jobs")

	state, err := q.Attribute(context.Background(), "State")
	require.NoError(t, err)
	assert.Equal(t, "active", state)
	assert.Equal(t, []string{"GetQueue"}, caller.ops)
	assert.Equal(t, model.Params{"Name": "jobs"}, caller.lastParams())
	assert.True(t, q.Loaded())

	// Loaded data is reused.
	count, err := q.Attribute(context.Background(), "MessageCount")
	require.NoError(t, err)
	assert.Equal(t, float64(12), count)
	assert.Len(t, caller.ops, 1)

	// Reload always calls again.
	require.NoError(t, q.Reload(context.Background()))
	assert.Len(t, caller.ops, 2)

	// Identifier members are not attributes.
	_, err = q.Attribute(context.Background(), "Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no attribute "Name"`)
}

func TestHandle_LoadFindsNoData(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", model.Params{})
	q := queueHandle(t, factory, "jobs")

	err := q.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no data at path "Queue"`)
}

func TestHandle_NoLoadAction(t *testing.T) {
	_, factory := queuesFixture(t)
	msg, err := factory.Resource("Message", map[string]any{"QueueName": "jobs", "Id": "m-1"})
	require.NoError(t, err)

	_, err = msg.Attribute(context.Background(), "Body")
	var noLoad *resource.NoLoadError
	require.ErrorAs(t, err, &noLoad)
	assert.Equal(t, "Message", noLoad.Resource)
}

// =============================================================================
// ACTIONS
// =============================================================================

func TestAction_ReturnsSingleResource(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("CreateQueue", model.Params{
		"Queue": map[string]any{"Name": "orders", "State": "creating"},
	})
	root := serviceRoot(t, factory)

	result, err := root.CallAction(context.Background(), "CreateQueue", model.Params{"Name": "orders"})
	require.NoError(t, err)
	require.NotNil(t, result.Resource)
	assert.Equal(t, "Queue", result.Resource.TypeName())
	name, _ := result.Resource.Identifier("Name")
	assert.Equal(t, "orders", name)
	// The response path primes the new handle's data.
	assert.Equal(t, "creating", result.Resource.Data()["State"])
	assert.Equal(t, model.Params{"Name": "orders"}, caller.lastParams())
}

func TestAction_MergesCallerParams(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("SendMessage", model.Params{"MessageId": "m-42"})
	q := queueHandle(t, factory, "jobs")

	result, err := q.CallAction(context.Background(), "SendMessage", model.Params{"Body": "hello"})
	require.NoError(t, err)
	assert.Equal(t, model.Params{"Name": "jobs", "Body": "hello"}, caller.lastParams())

	require.NotNil(t, result.Resource)
	assert.Equal(t, "Message", result.Resource.TypeName())
	queueName, _ := result.Resource.Identifier("QueueName")
	id, _ := result.Resource.Identifier("Id")
	assert.Equal(t, "jobs", queueName)
	assert.Equal(t, "m-42", id)
}

func TestAction_RawResult(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("DeleteQueue", model.Params{"Deleted": true})
	q := queueHandle(t, factory, "jobs")

	result, err := q.CallAction(context.Background(), "Delete", nil)
	require.NoError(t, err)
	assert.Nil(t, result.Resource)
	assert.Nil(t, result.Resources)
	assert.Equal(t, model.Params{"Deleted": true}, result.Data)
	assert.Equal(t, model.Params{"Name": "jobs"}, caller.lastParams())
}

func TestAction_EmptyResponseWhenIdentifierMissing(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("SendMessage", model.Params{})
	q := queueHandle(t, factory, "jobs")

	result, err := q.CallAction(context.Background(), "SendMessage", model.Params{"Body": "hello"})
	require.NoError(t, err)
	assert.Nil(t, result.Resource)
	assert.False(t, result.List)
	// The typed empty payload mirrors the operation's output shape.
	assert.Equal(t, model.Params{}, result.Value)
}

func TestHandle_UnknownAction(t *testing.T) {
	_, factory := queuesFixture(t)
	q := queueHandle(t, factory, "jobs")

	_, err := q.CallAction(context.Background(), "Freeze", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no action "Freeze"`)
}

// =============================================================================
// REFERENCES
// =============================================================================

func TestReference_ResolvesFromData(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", activeQueueData(model.Params{"DeadLetterTarget": "jobs-dlq"}))
	q := queueHandle(t, factory, "jobs")

	dlq, err := q.Reference(context.Background(), "DeadLetterQueue")
	require.NoError(t, err)
	require.NotNil(t, dlq)
	assert.Equal(t, "queues.Queue(Name='jobs-dlq')", dlq.String())
	assert.Equal(t, []string{"GetQueue"}, caller.ops, "reference should trigger one implicit load")
}

func TestReference_UnsetYieldsNil(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", activeQueueData(nil))
	q := queueHandle(t, factory, "jobs")

	dlq, err := q.Reference(context.Background(), "DeadLetterQueue")
	require.NoError(t, err)
	assert.Nil(t, dlq)
}

// =============================================================================
// COLLECTIONS
// =============================================================================

func stubMessagePages(caller *fakeCaller) {
	caller.handlers["ListMessages"] = func(params model.Params) (model.Params, error) {
		if params["NextToken"] == "t1" {
			return model.Params{
				"Messages": []any{
					map[string]any{"Id": "m-3", "ReceiptHandle": "r-3", "Body": "three"},
				},
			}, nil
		}
		return model.Params{
			"Messages": []any{
				map[string]any{"Id": "m-1", "ReceiptHandle": "r-1", "Body": "one"},
				map[string]any{"Id": "m-2", "ReceiptHandle": "r-2", "Body": "two"},
			},
			"NextToken": "t1",
		}, nil
	}
}

func TestCollection_PagesFollowTokens(t *testing.T) {
	caller, factory := queuesFixture(t)
	stubMessagePages(caller)
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)

	var sizes []int
	pages := col.All().Pages(context.Background())
	defer pages.Close()
	for pages.Next() {
		sizes = append(sizes, len(pages.Value()))
	}
	require.NoError(t, pages.Err())
	assert.Equal(t, []int{2, 1}, sizes)
	assert.Equal(t, []string{"ListMessages", "ListMessages"}, caller.ops)
	assert.Equal(t, "t1", caller.lastParams()["NextToken"])
}

func TestCollection_ResourcesFlattenPages(t *testing.T) {
	caller, factory := queuesFixture(t)
	stubMessagePages(caller)
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)

	var ids []string
	it := col.Resources(context.Background())
	defer it.Close()
	for it.Next() {
		msg := it.Value()
		id, _ := msg.Identifier("Id")
		ids = append(ids, fmt.Sprint(id))
		// Page items carry their data without loading.
		assert.True(t, msg.Loaded())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, ids)
}

func TestCollection_LimitStopsEarly(t *testing.T) {
	caller, factory := queuesFixture(t)
	stubMessagePages(caller)
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)

	var ids []string
	it := col.Limit(2).Resources(context.Background())
	for it.Next() {
		id, _ := it.Value().Identifier("Id")
		ids = append(ids, fmt.Sprint(id))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"m-1", "m-2"}, ids)
	assert.Len(t, caller.ops, 1, "limit reached inside the first page, no second call")
}

func TestCollection_PageSizeAndFilter(t *testing.T) {
	caller, factory := queuesFixture(t)
	stubMessagePages(caller)
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)

	pages := col.Filter(model.Params{"Visibility": "all"}).PageSize(50).Pages(context.Background())
	require.True(t, pages.Next())
	require.NoError(t, pages.Err())

	params := caller.params[0]
	assert.Equal(t, "jobs", params["Name"])
	assert.Equal(t, 50, params["MaxResults"])
	assert.Equal(t, "all", params["Visibility"])

	// The original collection is untouched by the chain.
	plain := col.Pages(context.Background())
	require.True(t, plain.Next())
	_, hasLimitKey := caller.lastParams()["MaxResults"]
	assert.False(t, hasLimitKey)
}

func TestCollection_UnknownNames(t *testing.T) {
	_, factory := queuesFixture(t)
	q := queueHandle(t, factory, "jobs")

	_, err := q.Collection("Drafts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no collection "Drafts"`)

	col, err := q.Collection("Messages")
	require.NoError(t, err)
	_, err = col.BatchAction("Archive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no batch action "Archive"`)
}

// =============================================================================
// BATCH ACTIONS
// =============================================================================

func TestBatchAction_DeletesPageWise(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.handlers["ListMessages"] = func(params model.Params) (model.Params, error) {
		return model.Params{
			"Messages": []any{
				map[string]any{"Id": "m-1", "ReceiptHandle": "r-1"},
				map[string]any{"Id": "m-2", "ReceiptHandle": "r-2"},
			},
		}, nil
	}
	caller.stub("DeleteMessages", model.Params{"Successful": []any{}})
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)
	batch, err := col.BatchAction("Delete")
	require.NoError(t, err)

	responses, err := batch.Call(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	assert.Equal(t, []string{"ListMessages", "DeleteMessages"}, caller.ops)
	params := caller.lastParams()
	assert.Equal(t, "jobs", params["Name"])
	assert.Equal(t, []any{
		map[string]any{"Id": "m-1", "ReceiptHandle": "r-1"},
		map[string]any{"Id": "m-2", "ReceiptHandle": "r-2"},
	}, params["Entries"])
}

func TestBatchAction_EmptyCollectionMakesNoCall(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("ListMessages", model.Params{"Messages": []any{}})
	q := queueHandle(t, factory, "jobs")

	col, err := q.Collection("Messages")
	require.NoError(t, err)
	batch, err := col.BatchAction("Delete")
	require.NoError(t, err)

	responses, err := batch.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, responses)
	assert.Equal(t, []string{"ListMessages"}, caller.ops)
}

// =============================================================================
// WAITERS
// =============================================================================

func TestWaitUntil_ResolvesWaiterAndParams(t *testing.T) {
	caller, factory := queuesFixture(t)
	caller.stub("GetQueue", activeQueueData(nil))
	q := queueHandle(t, factory, "jobs")

	require.NoError(t, q.WaitUntil(context.Background(), "Exists", nil))
	assert.Equal(t, []string{"GetQueue"}, caller.ops)
	assert.Equal(t, model.Params{"Name": "jobs"}, caller.lastParams())

	// The prefixed member name works too.
	require.NoError(t, q.WaitUntil(context.Background(), "WaitUntilExists", nil))

	err := q.WaitUntil(context.Background(), "Vanished", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no waiter "Vanished"`)
}

// =============================================================================
// EXTENSIONS
// =============================================================================

func extensionFixture(t *testing.T, serviceName string) (*fakeCaller, *resource.Factory) {
	t.Helper()
	loader := defs.NewLoader(defs.WithRegistry(defs.NewRegistry()))
	service, err := loader.LoadAPI("queues", "")
	require.NoError(t, err)
	resources, err := loader.LoadResources("queues", "")
	require.NoError(t, err)

	caller := &fakeCaller{
		t:        t,
		service:  service,
		handlers: make(map[string]func(model.Params) (model.Params, error)),
	}
	factory, err := resource.NewFactory(&model.ServiceContext{
		ServiceName:  serviceName,
		Service:      service,
		ResourceDefs: resources,
	}, caller, nil)
	require.NoError(t, err)
	return caller, factory
}

func TestExtensions_InjectAndCall(t *testing.T) {
	_, factory := extensionFixture(t, "queues-ext-call")
	resource.RegisterExtension("queues-ext-call", "Queue", "Describe", func(ctx context.Context, h *resource.Handle, params model.Params) (any, error) {
		name, _ := h.Identifier("Name")
		return fmt.Sprintf("queue %v", name), nil
	})

	q, err := factory.Resource("Queue", map[string]any{"Name": "jobs"})
	require.NoError(t, err)

	out, err := q.CallExtension(context.Background(), "Describe", nil)
	require.NoError(t, err)
	assert.Equal(t, "queue jobs", out)

	_, err = q.CallExtension(context.Background(), "Paint", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no injected member "Paint"`)
}

func TestExtensions_DuplicateRegistrationPanics(t *testing.T) {
	register := func() {
		resource.RegisterExtension("queues-ext-dup", "Queue", "Describe", func(ctx context.Context, h *resource.Handle, params model.Params) (any, error) {
			return nil, nil
		})
	}
	register()
	assert.PanicsWithValue(t, "extension already registered: queues-ext-dup.Queue.Describe", register)
}

func TestExtensions_ModelCollisionPanics(t *testing.T) {
	_, factory := extensionFixture(t, "queues-ext-collide")
	resource.RegisterExtension("queues-ext-collide", "Queue", "Purge", func(ctx context.Context, h *resource.Handle, params model.Params) (any, error) {
		return nil, nil
	})

	assert.PanicsWithValue(t,
		`cannot inject member "Purge" into queues-ext-collide.Queue: name already exists`,
		func() {
			_, _ = factory.Resource("Queue", map[string]any{"Name": "jobs"})
		})
}
