// Package resource materializes definition-driven resource handles over a
// low-level caller: identifier-bearing objects with lazily loaded data,
// modeled actions, related resources, enumerable collections and waiters.
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
// META
// =============================================================================

// Meta holds the shared state behind a resource handle. Its name is reserved
// on every resource so definition members can never shadow it.
type Meta struct {
	// Client executes the service's operations.
	Client api.Caller

	// Context bundles the service's models and waiter source.
	Context *model.ServiceContext

	// Data carries the resource's attributes once loaded or received. Nil
	// means not loaded.
	Data model.Params
}

// =============================================================================
// HANDLE
// =============================================================================

// Handle is one resource instance: a set of identifier values bound to a
// resource model and a client. Handles for the service root carry no
// identifiers.
type Handle struct {
	meta        *Meta
	model       *model.ResourceModel
	factory     *Factory
	identifiers map[string]any
	root        bool
}

// Meta exposes the handle's shared state.
func (h *Handle) Meta() *Meta { return h.meta }

// TypeName returns the resource type, or the service name for the root.
func (h *Handle) TypeName() string { return h.model.Name }

// Model returns the handle's resource model.
func (h *Handle) Model() *model.ResourceModel { return h.model }

// IsServiceResource reports whether this is the service root handle.
func (h *Handle) IsServiceResource() bool { return h.root }

// Identifier returns one identifier value by its definition name.
func (h *Handle) Identifier(name string) (any, bool) {
	v, ok := h.identifiers[name]
	return v, ok
}

// Identifiers returns a copy of the handle's identifier values.
func (h *Handle) Identifiers() map[string]any {
	out := make(map[string]any, len(h.identifiers))
	for k, v := range h.identifiers {
		out[k] = v
	}
	return out
}

// Data returns the loaded attribute data, or nil when not loaded.
func (h *Handle) Data() model.Params { return h.meta.Data }

// Loaded reports whether attribute data is present.
func (h *Handle) Loaded() bool { return h.meta.Data != nil }

// String renders the handle the way error messages and logs present
// resources: storage.Bucket(Name='media').
func (h *Handle) String() string {
	service := h.meta.Context.ServiceName
	if h.root {
		return fmt.Sprintf("%s.ServiceResource()", service)
	}
	parts := make([]string, 0, len(h.identifiers))
	for _, id := range h.model.RawIdentifiers() {
		parts = append(parts, fmt.Sprintf("%s=%s", id.Name, identifierString(h.identifiers[id.Name])))
	}
	return fmt.Sprintf("%s.%s(%s)", service, h.model.Name, strings.Join(parts, ", "))
}

func identifierString(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprint(v)
}

// =============================================================================
// DATA AND LOAD
// =============================================================================

// Load fetches the resource's attribute data through its load action and
// replaces Meta.Data with the result.
func (h *Handle) Load(ctx context.Context) error {
	load := h.model.Load()
	if load == nil {
		return &NoLoadError{Resource: h.model.Name}
	}
	params, err := CreateRequestParameters(ctx, h, load.Request.Params, nil, nil)
	if err != nil {
		return err
	}
	response, err := h.meta.Client.CallOperation(ctx, load.Request.Operation, params)
	if err != nil {
		return err
	}
	value := model.SearchPath(load.Path, response)
	data, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("load of %s found no data at path %q", h, load.Path)
	}
	h.meta.Data = data
	h.factory.logger.Debug("loaded resource", zap.Stringer("resource", h))
	return nil
}

// Reload is Load under the name the generated docs use next to it.
func (h *Handle) Reload(ctx context.Context) error { return h.Load(ctx) }

// ensureData returns the handle's data, loading it first when the resource
// supports that.
func (h *Handle) ensureData(ctx context.Context) (model.Params, error) {
	if h.meta.Data != nil {
		return h.meta.Data, nil
	}
	if !h.model.HasLoad() {
		return nil, &NoLoadError{Resource: h.model.Name}
	}
	if err := h.Load(ctx); err != nil {
		return nil, err
	}
	return h.meta.Data, nil
}

// dataMember reads a path out of the resource's data, loading on demand.
func (h *Handle) dataMember(ctx context.Context, path string) (any, error) {
	if _, err := h.ensureData(ctx); err != nil {
		return nil, err
	}
	return model.SearchPath(path, h.meta.Data), nil
}

// Attribute reads one shape-derived attribute, loading data on demand.
func (h *Handle) Attribute(ctx context.Context, name string) (any, error) {
	shape, err := h.shape()
	if err != nil {
		return nil, err
	}
	if shape == nil {
		return nil, fmt.Errorf("resource %s has no attributes", h.model.Name)
	}
	for _, attr := range h.model.Attributes(shape) {
		if attr.Name != name {
			continue
		}
		data, err := h.ensureData(ctx)
		if err != nil {
			return nil, err
		}
		return data[attr.MemberName], nil
	}
	return nil, fmt.Errorf("resource %s has no attribute %q", h.model.Name, name)
}

func (h *Handle) shape() (*model.Shape, error) {
	if h.model.ShapeName == "" {
		return nil, nil
	}
	return h.meta.Context.Service.Shape(h.model.ShapeName)
}

// =============================================================================
// RELATED RESOURCES
// =============================================================================

// SubResource builds a child handle for a has-relation. Identifiers the
// relation derives from this handle are filled automatically; the rest are
// taken from args in the order the relation declares them.
func (h *Handle) SubResource(name string, args ...any) (*Handle, error) {
	var rel *model.Action
	for _, sr := range h.model.SubResources() {
		if sr.Name == name {
			rel = sr
			break
		}
	}
	if rel == nil {
		return nil, fmt.Errorf("resource %s has no sub-resource %q", h.model.Name, name)
	}

	ids := make(map[string]any)
	argIdx := 0
	for _, p := range rel.Resource.Identifiers() {
		switch p.Source {
		case model.SourceIdentifier:
			v, ok := h.Identifier(p.Name)
			if !ok {
				return nil, fmt.Errorf("resource %s has no identifier %q for sub-resource %s", h.model.Name, p.Name, name)
			}
			ids[p.Target] = v
		case model.SourceInput:
			if argIdx >= len(args) {
				return nil, fmt.Errorf("sub-resource %s of %s needs a value for identifier %q", name, h.model.Name, p.Target)
			}
			ids[p.Target] = args[argIdx]
			argIdx++
		default:
			return nil, fmt.Errorf("sub-resource %s of %s has unsupported identifier source %q", name, h.model.Name, p.Source)
		}
	}
	if argIdx != len(args) {
		return nil, fmt.Errorf("sub-resource %s of %s takes %d identifier value(s), got %d", name, h.model.Name, argIdx, len(args))
	}
	return h.factory.Resource(rel.Resource.Type(), ids)
}

// Reference resolves a data-backed relation to another resource. It returns
// a nil handle without error when the referenced identifiers are unset,
// loading this handle's data first if needed.
func (h *Handle) Reference(ctx context.Context, name string) (*Handle, error) {
	var rel *model.Action
	for _, ref := range h.model.References() {
		if ref.Name == name {
			rel = ref
			break
		}
	}
	if rel == nil {
		return nil, fmt.Errorf("resource %s has no reference %q", h.model.Name, name)
	}
	handler := &ResourceHandler{
		SearchPath: rel.Resource.Path(),
		Factory:    h.factory,
		Resource:   rel.Resource,
	}
	result, err := handler.Handle(ctx, h, nil, nil)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// Collection returns the named hasMany relation as an enumerable view.
func (h *Handle) Collection(name string) (*Collection, error) {
	for _, cm := range h.model.Collections() {
		if cm.Name == name {
			return newCollection(h, cm), nil
		}
	}
	return nil, fmt.Errorf("resource %s has no collection %q", h.model.Name, name)
}

// MemberNames lists every member this handle surfaces, sorted.
func (h *Handle) MemberNames() ([]string, error) {
	shape, err := h.shape()
	if err != nil {
		return nil, err
	}
	return h.model.MemberNames(shape), nil
}
