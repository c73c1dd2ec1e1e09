package resource

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/model"
)

// =============================================================================
// ACTIONS
// =============================================================================

// ActionResult carries whatever a modeled action produced.
type ActionResult struct {
	// Data is the full decoded response, metadata included.
	Data model.Params

	// Value is the payload at the action's path when one is modeled, or
	// the typed empty payload when a resource-returning action could not
	// identify its resource.
	Value any

	// Resource holds the single handle of a singular resource result.
	Resource *Handle

	// Resources holds the handles of a plural result; List marks the
	// result as plural even when empty.
	Resources []*Handle
	List      bool
}

// Action executes one modeled action against a handle.
type Action struct {
	parent *Handle
	model  *model.Action
}

// Name returns the action's member name.
func (a *Action) Name() string { return a.model.Name }

// Call builds the modeled parameters, merges the caller's on top, invokes
// the operation and materializes the result.
func (a *Action) Call(ctx context.Context, extra model.Params) (*ActionResult, error) {
	params, err := CreateRequestParameters(ctx, a.parent, a.model.Request.Params, nil, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		params[k] = v
	}

	a.parent.factory.logger.Debug("calling action",
		zap.Stringer("resource", a.parent),
		zap.String("action", a.model.Name),
		zap.String("operation", a.model.Request.Operation))

	response, err := a.parent.meta.Client.CallOperation(ctx, a.model.Request.Operation, params)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Data: response}
	if a.model.Resource != nil {
		handler := &ResourceHandler{
			SearchPath:    a.model.Resource.Path(),
			Factory:       a.parent.factory,
			Resource:      a.model.Resource,
			OperationName: a.model.Request.Operation,
		}
		hr, err := handler.Handle(ctx, a.parent, params, response)
		if err != nil {
			return nil, err
		}
		result.Resource = hr.Resource
		result.Resources = hr.Resources
		result.List = hr.List
		result.Value = hr.Empty
		return result, nil
	}

	if a.model.Path != "" {
		raw := &RawHandler{SearchPath: a.model.Path}
		result.Value = raw.Handle(response)
	}
	return result, nil
}

// Action returns the named modeled action on this handle.
func (h *Handle) Action(name string) (*Action, error) {
	for _, am := range h.model.Actions() {
		if am.Name == name {
			return &Action{parent: h, model: am}, nil
		}
	}
	return nil, fmt.Errorf("resource %s has no action %q", h.model.Name, name)
}

// CallAction is shorthand for Action(name).Call(ctx, params).
func (h *Handle) CallAction(ctx context.Context, name string, params model.Params) (*ActionResult, error) {
	action, err := h.Action(name)
	if err != nil {
		return nil, err
	}
	return action.Call(ctx, params)
}

// =============================================================================
// WAITERS
// =============================================================================

// WaitUntil blocks until the named resource waiter resolves. The name may
// be given with or without the WaitUntil prefix; extra parameters override
// the modeled ones.
func (h *Handle) WaitUntil(ctx context.Context, name string, extra model.Params) error {
	relative := strings.TrimPrefix(name, model.WaiterPrefix)
	var wm *model.Waiter
	for _, w := range h.model.Waiters() {
		if w.RelativeName == relative || w.Name == name {
			wm = w
			break
		}
	}
	if wm == nil {
		return fmt.Errorf("resource %s has no waiter %q", h.model.Name, name)
	}
	if h.meta.Context.Waiters == nil {
		return fmt.Errorf("service %s defines no waiters", h.meta.Context.ServiceName)
	}
	config, err := h.meta.Context.Waiters.Waiter(wm.WaiterName)
	if err != nil {
		return err
	}

	params, err := CreateRequestParameters(ctx, h, wm.Params, nil, nil)
	if err != nil {
		return err
	}
	for k, v := range extra {
		params[k] = v
	}

	waiter := api.NewWaiter(wm.WaiterName, config, h.meta.Client, h.factory.logger)
	return waiter.Wait(ctx, params)
}
