package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// =============================================================================
// RAW FILE FORMAT (api.json)
// =============================================================================

// APIFile is the on-disk layout of an api.json definition.
type APIFile struct {
	Version    string                `json:"version"`
	Metadata   Metadata              `json:"metadata"`
	Operations map[string]*Operation `json:"operations"`
	Shapes     map[string]*Shape     `json:"shapes"`
}

// Metadata identifies a service and its wire conventions.
type Metadata struct {
	ServiceID      string `json:"serviceId"`
	ServiceName    string `json:"serviceName,omitempty"`
	APIVersion     string `json:"apiVersion"`
	Protocol       string `json:"protocol"`
	EndpointPrefix string `json:"endpointPrefix"`
	Documentation  string `json:"documentation,omitempty"`
}

// HTTPBinding maps an operation onto an HTTP method and URI template.
// URI templates use {Member} placeholders filled from uri-located members.
type HTTPBinding struct {
	Method     string `json:"method"`
	RequestURI string `json:"requestUri"`
}

// Pagination describes how a list operation pages its results.
type Pagination struct {
	// InputToken is the request member carrying the continuation token.
	InputToken string `json:"inputToken"`

	// OutputToken is the response path yielding the next token.
	OutputToken string `json:"outputToken"`

	// ResultKey is the response path of the page's result list.
	ResultKey string `json:"resultKey"`

	// LimitKey is the request member bounding the page size, if any.
	LimitKey string `json:"limitKey,omitempty"`
}

// ShapeRef points at a named shape.
type ShapeRef struct {
	Shape string `json:"shape"`
}

// Operation describes a single API operation.
type Operation struct {
	HTTP          HTTPBinding `json:"http"`
	Input         *ShapeRef   `json:"input,omitempty"`
	Output        *ShapeRef   `json:"output,omitempty"`
	Documentation string      `json:"documentation,omitempty"`

	// Idempotent marks operations that tolerate blind retries. When
	// IdempotencyToken names an input member, the client fills it with a
	// generated token if the caller leaves it unset.
	Idempotent       bool   `json:"idempotent,omitempty"`
	IdempotencyToken string `json:"idempotencyToken,omitempty"`

	Pagination *Pagination `json:"pagination,omitempty"`

	name  string
	model *ServiceModel
}

// Member is a named reference to a shape inside a structure, list or map.
type Member struct {
	Shape         string `json:"shape"`
	Documentation string `json:"documentation,omitempty"`

	// Location routes the member onto the wire: "uri" fills a URI template
	// placeholder, "querystring" becomes a query parameter, "header" a
	// request header. Empty means JSON body.
	Location     string `json:"location,omitempty"`
	LocationName string `json:"locationName,omitempty"`
}

// Shape is a named type in the service's data model.
type Shape struct {
	Type          string             `json:"type"`
	Documentation string             `json:"documentation,omitempty"`
	Required      []string           `json:"required,omitempty"`
	Members       map[string]*Member `json:"members,omitempty"`
	Member        *Member            `json:"member,omitempty"`
	Key           *Member            `json:"key,omitempty"`
	Value         *Member            `json:"value,omitempty"`
	Enum          []string           `json:"enum,omitempty"`

	name  string
	model *ServiceModel
}

// =============================================================================
// SERVICE MODEL
// =============================================================================

// ServiceModel is the resolved, queryable view over an APIFile.
type ServiceModel struct {
	file *APIFile
}

// ParseAPI parses and validates an api.json document.
func ParseAPI(data []byte) (*ServiceModel, error) {
	var file APIFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse api definition: %w", err)
	}
	if file.Metadata.ServiceID == "" {
		return nil, fmt.Errorf("api definition missing metadata.serviceId")
	}

	m := &ServiceModel{file: &file}
	for name, op := range file.Operations {
		op.name = name
		op.model = m
	}
	for name, shape := range file.Shapes {
		shape.name = name
		shape.model = m
	}
	if err := m.validateRefs(); err != nil {
		return nil, err
	}
	return m, nil
}

// validateRefs fails fast on dangling shape references.
func (m *ServiceModel) validateRefs() error {
	check := func(where string, ref *ShapeRef) error {
		if ref == nil {
			return nil
		}
		if _, ok := m.file.Shapes[ref.Shape]; !ok {
			return fmt.Errorf("%s references unknown shape %q", where, ref.Shape)
		}
		return nil
	}
	for name, op := range m.file.Operations {
		if err := check("operation "+name+" input", op.Input); err != nil {
			return err
		}
		if err := check("operation "+name+" output", op.Output); err != nil {
			return err
		}
	}
	for name, shape := range m.file.Shapes {
		for member, ref := range shape.Members {
			if _, ok := m.file.Shapes[ref.Shape]; !ok {
				return fmt.Errorf("shape %s member %s references unknown shape %q", name, member, ref.Shape)
			}
		}
		for _, ref := range []*Member{shape.Member, shape.Key, shape.Value} {
			if ref == nil {
				continue
			}
			if _, ok := m.file.Shapes[ref.Shape]; !ok {
				return fmt.Errorf("shape %s references unknown shape %q", name, ref.Shape)
			}
		}
	}
	return nil
}

// Metadata returns the service metadata block.
func (m *ServiceModel) Metadata() Metadata {
	return m.file.Metadata
}

// ServiceID is shorthand for Metadata().ServiceID.
func (m *ServiceModel) ServiceID() string {
	return m.file.Metadata.ServiceID
}

// Operation returns the named operation.
func (m *ServiceModel) Operation(name string) (*Operation, error) {
	op, ok := m.file.Operations[name]
	if !ok {
		return nil, fmt.Errorf("service %s has no operation %q", m.ServiceID(), name)
	}
	return op, nil
}

// OperationNames returns all operation names, sorted.
func (m *ServiceModel) OperationNames() []string {
	names := make([]string, 0, len(m.file.Operations))
	for name := range m.file.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shape returns the named shape.
func (m *ServiceModel) Shape(name string) (*Shape, error) {
	shape, ok := m.file.Shapes[name]
	if !ok {
		return nil, fmt.Errorf("service %s has no shape %q", m.ServiceID(), name)
	}
	return shape, nil
}

// =============================================================================
// OPERATION ACCESSORS
// =============================================================================

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// InputShape resolves the input shape, or nil when the operation takes none.
func (o *Operation) InputShape() (*Shape, error) {
	if o.Input == nil {
		return nil, nil
	}
	return o.model.Shape(o.Input.Shape)
}

// OutputShape resolves the output shape, or nil when the operation returns none.
func (o *Operation) OutputShape() (*Shape, error) {
	if o.Output == nil {
		return nil, nil
	}
	return o.model.Shape(o.Output.Shape)
}

// =============================================================================
// SHAPE ACCESSORS
// =============================================================================

// Name returns the shape's name in the definition.
func (s *Shape) Name() string { return s.name }

// MemberNames returns structure member names in deterministic order:
// required members first, each group sorted.
func (s *Shape) MemberNames() []string {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	req := make([]string, 0, len(s.Required))
	opt := make([]string, 0, len(s.Members))
	for name := range s.Members {
		if required[name] {
			req = append(req, name)
		} else {
			opt = append(opt, name)
		}
	}
	sort.Strings(req)
	sort.Strings(opt)
	return append(req, opt...)
}

// MemberShape resolves the shape of a structure member.
func (s *Shape) MemberShape(name string) (*Shape, error) {
	member, ok := s.Members[name]
	if !ok {
		return nil, fmt.Errorf("shape %s has no member %q", s.name, name)
	}
	return s.model.Shape(member.Shape)
}

// ElementShape resolves a list shape's element shape.
func (s *Shape) ElementShape() (*Shape, error) {
	if s.Member == nil {
		return nil, fmt.Errorf("shape %s has no element member", s.name)
	}
	return s.model.Shape(s.Member.Shape)
}

// ValueShape resolves a map shape's value shape.
func (s *Shape) ValueShape() (*Shape, error) {
	if s.Value == nil {
		return nil, fmt.Errorf("shape %s has no value member", s.name)
	}
	return s.model.Shape(s.Value.Shape)
}

// IsRequired reports whether a structure member is required.
func (s *Shape) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// GoTypeName renders the shape's type the way generated docs present it.
func (s *Shape) GoTypeName() string {
	switch s.Type {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "long":
		return "int64"
	case "float", "double":
		return "float64"
	case "boolean":
		return "bool"
	case "timestamp":
		return "time.Time"
	case "blob":
		return "[]byte"
	case "list":
		elem, err := s.ElementShape()
		if err != nil {
			return "[]any"
		}
		return "[]" + elem.GoTypeName()
	case "map":
		return "map[string]any"
	case "structure":
		return "map[string]any"
	default:
		return "any"
	}
}
