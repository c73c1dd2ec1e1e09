package resource

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

// =============================================================================
// IDENTIFIER EXTRACTION
// =============================================================================

// IdentifierValue pairs a target identifier name with its extracted value.
type IdentifierValue struct {
	Name  string
	Value any
}

// BuildIdentifiers extracts a related resource's identifier values from the
// parent handle, the request parameters and the raw response, depending on
// each mapping's source. Input-sourced identifiers are the caller's to
// provide and are skipped.
func BuildIdentifiers(ctx context.Context, mappings []*model.Parameter, parent *Handle, params, rawResponse model.Params) ([]IdentifierValue, error) {
	out := make([]IdentifierValue, 0, len(mappings))
	for _, m := range mappings {
		var value any
		switch m.Source {
		case model.SourceResponse:
			value = model.SearchPath(m.Path, rawResponse)
		case model.SourceRequestParameter:
			value = model.SearchPath(m.Path, params)
		case model.SourceIdentifier:
			v, ok := parent.Identifier(m.Name)
			if !ok {
				return nil, fmt.Errorf("resource %s has no identifier %q", parent.model.Name, m.Name)
			}
			value = v
		case model.SourceData:
			v, err := parent.dataMember(ctx, m.Path)
			if err != nil {
				return nil, err
			}
			value = v
		case model.SourceInput:
			continue
		default:
			return nil, fmt.Errorf("unsupported identifier source %q", m.Source)
		}
		out = append(out, IdentifierValue{Name: m.Target, Value: value})
	}
	return out, nil
}

// bracketRe strips list markers when walking shapes along a search path.
var bracketRe = regexp.MustCompile(`\[[0-9*]*\]$`)

// BuildEmptyResponse renders the typed zero of an operation's output at a
// search path: an empty list for list shapes, an empty map for structures
// and maps, nil otherwise.
func BuildEmptyResponse(searchPath, operationName string, service *model.ServiceModel) (any, error) {
	op, err := service.Operation(operationName)
	if err != nil {
		return nil, err
	}
	shape, err := op.OutputShape()
	if err != nil {
		return nil, err
	}
	if shape == nil {
		return nil, nil
	}
	if searchPath != "" {
		for _, item := range strings.Split(searchPath, ".") {
			item = bracketRe.ReplaceAllString(item, "")
			if item == "" {
				continue
			}
			if shape.Type == "list" {
				if shape, err = shape.ElementShape(); err != nil {
					return nil, err
				}
			}
			if shape, err = shape.MemberShape(item); err != nil {
				return nil, err
			}
		}
	}
	switch shape.Type {
	case "list":
		return []any{}, nil
	case "structure", "map":
		return model.Params{}, nil
	default:
		return nil, nil
	}
}

// =============================================================================
// RESPONSE HANDLERS
// =============================================================================

// RawHandler applies an action's search path to the decoded response and
// returns whatever sits there.
type RawHandler struct {
	SearchPath string
}

// Handle extracts the payload. An empty path returns the response unchanged.
func (h *RawHandler) Handle(response model.Params) any {
	if h.SearchPath == "" || h.SearchPath == "$" {
		return response
	}
	return model.SearchPath(h.SearchPath, response)
}

// HandlerResult is the outcome of materializing a response into handles.
type HandlerResult struct {
	// Resource is the single handle a singular result produced.
	Resource *Handle

	// Resources holds the handles of a plural result; List marks the
	// result as plural even when no items came back.
	Resources []*Handle
	List      bool

	// Empty carries the typed zero of the response payload when the
	// identifiers were incomplete and no resource could be built.
	Empty any
}

// ResourceHandler materializes the resource a definition says a response
// yields. Any list-valued identifier makes the result plural, one handle
// per element. All identifiers present and singular gives one handle. An
// unset identifier yields no handle and a typed empty payload instead.
type ResourceHandler struct {
	// SearchPath locates the resource's data inside the response.
	SearchPath string

	Factory  *Factory
	Resource *model.ResponseResource

	// OperationName is set when a service call produced the response, so
	// empty payloads can be typed from the operation's output shape.
	OperationName string
}

// Handle builds handles from a response.
func (h *ResourceHandler) Handle(ctx context.Context, parent *Handle, params, response model.Params) (*HandlerResult, error) {
	var searched any
	if h.SearchPath != "" {
		searched = model.SearchPath(h.SearchPath, response)
	}

	ids, err := BuildIdentifiers(ctx, h.Resource.Identifiers(), parent, params, response)
	if err != nil {
		return nil, err
	}

	pluralLen := -1
	for _, iv := range ids {
		if list, ok := iv.Value.([]any); ok {
			pluralLen = len(list)
			break
		}
	}

	if pluralLen >= 0 {
		searchedList, _ := searched.([]any)
		handles := make([]*Handle, 0, pluralLen)
		for i := 0; i < pluralLen; i++ {
			idValues := make(map[string]any, len(ids))
			for _, iv := range ids {
				if list, ok := iv.Value.([]any); ok {
					if i < len(list) {
						idValues[iv.Name] = list[i]
					}
				} else {
					idValues[iv.Name] = iv.Value
				}
			}
			var itemData model.Params
			if i < len(searchedList) {
				itemData, _ = searchedList[i].(map[string]any)
			}
			handle, err := h.Factory.newHandle(h.Resource.Type(), idValues, itemData)
			if err != nil {
				return nil, err
			}
			handles = append(handles, handle)
		}
		return &HandlerResult{Resources: handles, List: true}, nil
	}

	allSet := len(ids) > 0
	for _, iv := range ids {
		if iv.Value == nil {
			allSet = false
			break
		}
	}
	if allSet {
		idValues := make(map[string]any, len(ids))
		for _, iv := range ids {
			idValues[iv.Name] = iv.Value
		}
		data, _ := searched.(map[string]any)
		handle, err := h.Factory.newHandle(h.Resource.Type(), idValues, data)
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Resource: handle}, nil
	}

	result := &HandlerResult{}
	if h.OperationName != "" {
		empty, err := BuildEmptyResponse(h.SearchPath, h.OperationName, parent.meta.Context.Service)
		if err != nil {
			return nil, err
		}
		result.Empty = empty
		_, result.List = empty.([]any)
	}
	return result, nil
}
