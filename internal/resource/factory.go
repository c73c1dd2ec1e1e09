package resource

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stratus/ral-core/internal/api"
	"github.com/stratus/ral-core/internal/model"
)

// Factory builds resource handles for one service from its context and a
// caller.
type Factory struct {
	context *model.ServiceContext
	client  api.Caller
	logger  *zap.Logger
}

// NewFactory validates the service context and returns a factory. A nil
// logger disables diagnostics.
func NewFactory(sc *model.ServiceContext, client api.Caller, logger *zap.Logger) (*Factory, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("factory for service %s needs a client", sc.ServiceName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{context: sc, client: client, logger: logger}, nil
}

// ServiceResource builds the service root handle. The root exposes every
// defined resource type as a sub-resource plus whatever actions and
// collections the service block models.
func (f *Factory) ServiceResource() (*Handle, error) {
	m, err := f.context.ServiceResourceModel()
	if err != nil {
		return nil, err
	}
	f.checkInjected(m, nil, "")
	return &Handle{
		meta:    &Meta{Client: f.client, Context: f.context},
		model:   m,
		factory: f,
		root:    true,
	}, nil
}

// Resource builds a handle for a named type from identifier values keyed by
// identifier name. Every identifier must be present and non-nil.
func (f *Factory) Resource(typeName string, identifiers map[string]any) (*Handle, error) {
	return f.newHandle(typeName, identifiers, nil)
}

func (f *Factory) newHandle(typeName string, identifiers map[string]any, data model.Params) (*Handle, error) {
	m, err := f.context.ResourceModelFor(typeName)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]any, len(identifiers))
	for _, id := range m.RawIdentifiers() {
		v, ok := identifiers[id.Name]
		if !ok || v == nil {
			return nil, &MissingIdentifierError{Resource: typeName, Identifier: id.Name}
		}
		ids[id.Name] = v
	}
	for name := range identifiers {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("resource %s has no identifier %q", typeName, name)
		}
	}

	var shape *model.Shape
	if m.ShapeName != "" {
		if shape, err = f.context.Service.Shape(m.ShapeName); err != nil {
			return nil, err
		}
	}
	f.checkInjected(m, shape, typeName)

	return &Handle{
		meta:        &Meta{Client: f.client, Context: f.context, Data: data},
		model:       m,
		factory:     f,
		identifiers: ids,
	}, nil
}

// checkInjected panics when an injected member shadows a modeled member.
// Injection conflicts are programming errors, caught the first time the
// resource type is built.
func (f *Factory) checkInjected(m *model.ResourceModel, shape *model.Shape, resourceType string) {
	injected := extensionMembers(f.context.ServiceName, resourceType)
	if len(injected) == 0 {
		return
	}
	taken := make(map[string]bool)
	for _, name := range m.MemberNames(shape) {
		taken[name] = true
	}
	for _, name := range injected {
		if taken[name] {
			label := resourceType
			if label == "" {
				label = "ServiceResource"
			}
			panic(fmt.Sprintf("cannot inject member %q into %s.%s: name already exists", name, f.context.ServiceName, label))
		}
	}
}
