package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Parameter sources: where a request parameter or response identifier value
// comes from when the resource layer builds or consumes an operation call.
const (
	SourceIdentifier       = "identifier"
	SourceData             = "data"
	SourceInput            = "input"
	SourceString           = "string"
	SourceInteger          = "integer"
	SourceBoolean          = "boolean"
	SourceResponse         = "response"
	SourceRequestParameter = "requestParameter"
)

// WaiterPrefix prefixes resource waiter names: waiter "Exists" on a Bucket
// surfaces as WaitUntilExists.
const WaiterPrefix = "WaitUntil"

// =============================================================================
// RAW FILE FORMAT (resources.json)
// =============================================================================

// ResourcesFile is the on-disk layout of a resources.json definition.
type ResourcesFile struct {
	Service   *ResourceDefinition            `json:"service,omitempty"`
	Resources map[string]*ResourceDefinition `json:"resources,omitempty"`
}

// ResourceDefinition declares one resource type, or the service root.
type ResourceDefinition struct {
	Identifiers  []IdentifierDef       `json:"identifiers,omitempty"`
	Shape        string                `json:"shape,omitempty"`
	Load         *ActionDef            `json:"load,omitempty"`
	Actions      map[string]*ActionDef `json:"actions,omitempty"`
	BatchActions map[string]*ActionDef `json:"batchActions,omitempty"`
	Has          map[string]*HasDef    `json:"has,omitempty"`
	HasMany      map[string]*ActionDef `json:"hasMany,omitempty"`
	Waiters      map[string]*WaiterDef `json:"waiters,omitempty"`
}

// IdentifierDef names one identifier of a resource. MemberName links the
// identifier to a member of the resource shape when the two coincide.
type IdentifierDef struct {
	Name       string `json:"name"`
	MemberName string `json:"memberName,omitempty"`
}

// ActionDef declares an action, load, batch action or hasMany relation.
type ActionDef struct {
	Request  *RequestDef          `json:"request,omitempty"`
	Resource *ResponseResourceDef `json:"resource,omitempty"`
	Path     string               `json:"path,omitempty"`
}

// RequestDef binds an action to an operation and its modeled parameters.
type RequestDef struct {
	Operation string      `json:"operation"`
	Params    []*ParamDef `json:"params,omitempty"`
}

// ParamDef maps a value from a source into a request target, or from a
// response into an identifier target.
type ParamDef struct {
	Target string `json:"target"`
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// ResponseResourceDef declares the resource type an action or relation
// yields, and how its identifiers are obtained.
type ResponseResourceDef struct {
	Type        string      `json:"type"`
	Identifiers []*ParamDef `json:"identifiers,omitempty"`
	Path        string      `json:"path,omitempty"`
}

// HasDef declares a reference or sub-resource relation.
type HasDef struct {
	Resource *ResponseResourceDef `json:"resource"`
}

// WaiterDef links a resource waiter to a service waiter configuration.
type WaiterDef struct {
	WaiterName string      `json:"waiterName"`
	Params     []*ParamDef `json:"params,omitempty"`
	Path       string      `json:"path,omitempty"`
}

// ParseResources parses and validates a resources.json document.
func ParseResources(data []byte) (*ResourcesFile, error) {
	var file ResourcesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse resource definitions: %w", err)
	}
	if file.Service != nil {
		if err := validateResourceDef("service", file.Service, file.Resources); err != nil {
			return nil, err
		}
	}
	for name, def := range file.Resources {
		if err := validateResourceDef(name, def, file.Resources); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

// validateResourceDef fails fast on relations pointing at undefined types.
func validateResourceDef(name string, def *ResourceDefinition, all map[string]*ResourceDefinition) error {
	check := func(where string, target *ResponseResourceDef) error {
		if target == nil {
			return nil
		}
		if _, ok := all[target.Type]; !ok {
			return fmt.Errorf("resource %s: %s references unknown resource type %q", name, where, target.Type)
		}
		return nil
	}
	if def.Load != nil && def.Load.Request == nil {
		return fmt.Errorf("resource %s: load action has no request", name)
	}
	for actionName, action := range def.Actions {
		if action.Request == nil {
			return fmt.Errorf("resource %s: action %s has no request", name, actionName)
		}
		if err := check("action "+actionName, action.Resource); err != nil {
			return err
		}
	}
	for actionName, action := range def.BatchActions {
		if action.Request == nil {
			return fmt.Errorf("resource %s: batch action %s has no request", name, actionName)
		}
		if err := check("batch action "+actionName, action.Resource); err != nil {
			return err
		}
	}
	for hasName, has := range def.Has {
		if has.Resource == nil {
			return fmt.Errorf("resource %s: relation %s has no resource", name, hasName)
		}
		if err := check("relation "+hasName, has.Resource); err != nil {
			return err
		}
	}
	for colName, col := range def.HasMany {
		if col.Request == nil {
			return fmt.Errorf("resource %s: collection %s has no request", name, colName)
		}
		if err := check("collection "+colName, col.Resource); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// RESOURCE MODEL
// =============================================================================

type renameKey struct {
	category string
	name     string
}

// ResourceModel is the queryable view over one resource definition, with
// the rename map applied so every member name is unique.
type ResourceModel struct {
	// Name of the resource type, or the service name for the root.
	Name string

	// ShapeName names the shape carrying the resource's attributes. Empty
	// for resources without data.
	ShapeName string

	def     *ResourceDefinition
	defs    map[string]*ResourceDefinition
	renamed map[renameKey]string
}

// NewResourceModel wraps a definition. Call LoadRenameMap before reading
// members so collisions are resolved.
func NewResourceModel(name string, def *ResourceDefinition, defs map[string]*ResourceDefinition) *ResourceModel {
	if def == nil {
		def = &ResourceDefinition{}
	}
	return &ResourceModel{
		Name:      name,
		ShapeName: def.Shape,
		def:       def,
		defs:      defs,
		renamed:   make(map[renameKey]string),
	}
}

// LoadRenameMap resolves member name collisions. Members are claimed in
// precedence order: identifiers, actions, sub-resources, references,
// collections, waiters, then shape attributes. A lower-precedence member
// whose name is taken gets a trailing underscore; a second collision on the
// renamed name is a definition error. "Meta" is reserved, as are "Load" and
// "Reload" on resources that define a load action.
func (m *ResourceModel) LoadRenameMap(shape *Shape) error {
	names := map[string]bool{"Meta": true}
	m.renamed = make(map[renameKey]string)

	if m.def.Load != nil {
		names["Load"] = true
		names["Reload"] = true
	}

	for _, id := range m.def.Identifiers {
		if err := m.claimName(names, id.Name, "identifier"); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.def.Actions) {
		if err := m.claimName(names, name, "action"); err != nil {
			return err
		}
	}
	hasDefs := m.hasDefinition()
	for _, name := range sortedKeys(hasDefs) {
		category := "subresource"
		if hasDataIdentifier(hasDefs[name]) {
			category = "reference"
		}
		if err := m.claimName(names, name, category); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.def.HasMany) {
		if err := m.claimName(names, name, "collection"); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.def.Waiters) {
		if err := m.claimName(names, WaiterPrefix+name, "waiter"); err != nil {
			return err
		}
	}
	if shape != nil {
		for _, name := range shape.MemberNames() {
			if err := m.claimName(names, name, "attribute"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ResourceModel) claimName(names map[string]bool, name, category string) error {
	if names[name] {
		renamed := name + "_"
		if names[renamed] {
			return fmt.Errorf("resource %s: cannot rename %s %q, %q is also taken", m.Name, category, name, renamed)
		}
		m.renamed[renameKey{category, name}] = renamed
		names[renamed] = true
		return nil
	}
	names[name] = true
	return nil
}

func (m *ResourceModel) nameFor(category, name string) string {
	if renamed, ok := m.renamed[renameKey{category, name}]; ok {
		return renamed
	}
	return name
}

// HasLoad reports whether the resource can load its data.
func (m *ResourceModel) HasLoad() bool { return m.def.Load != nil }

// RawIdentifiers returns identifiers as defined, before renaming. Runtime
// parameter mappings address identifiers by these names.
func (m *ResourceModel) RawIdentifiers() []IdentifierDef {
	out := make([]IdentifierDef, len(m.def.Identifiers))
	copy(out, m.def.Identifiers)
	return out
}

// MemberNames returns every member name the resource surfaces after
// renaming, sorted. Pass the resource's shape to include attributes.
func (m *ResourceModel) MemberNames(shape *Shape) []string {
	names := []string{"Meta"}
	if m.def.Load != nil {
		names = append(names, "Load", "Reload")
	}
	for _, id := range m.Identifiers() {
		names = append(names, id.Name)
	}
	for _, a := range m.Actions() {
		names = append(names, a.Name)
	}
	for _, s := range m.SubResources() {
		names = append(names, s.Name)
	}
	for _, r := range m.References() {
		names = append(names, r.Name)
	}
	for _, c := range m.Collections() {
		names = append(names, c.Name)
	}
	for _, w := range m.Waiters() {
		names = append(names, w.Name)
	}
	for _, a := range m.Attributes(shape) {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// Identifiers returns the resource's identifiers in definition order.
func (m *ResourceModel) Identifiers() []Identifier {
	out := make([]Identifier, 0, len(m.def.Identifiers))
	for _, id := range m.def.Identifiers {
		out = append(out, Identifier{
			Name:       m.nameFor("identifier", id.Name),
			MemberName: id.MemberName,
		})
	}
	return out
}

// Load returns the load action, or nil.
func (m *ResourceModel) Load() *Action {
	if m.def.Load == nil {
		return nil
	}
	return newAction("Load", m.def.Load, m.defs)
}

// Actions returns the resource's actions, sorted by name.
func (m *ResourceModel) Actions() []*Action {
	return m.actionsFrom(m.def.Actions, "action")
}

// BatchActions returns actions that operate on whole collection pages.
func (m *ResourceModel) BatchActions() []*Action {
	return m.actionsFrom(m.def.BatchActions, "action")
}

func (m *ResourceModel) actionsFrom(defs map[string]*ActionDef, category string) []*Action {
	names := sortedKeys(defs)
	out := make([]*Action, 0, len(names))
	for _, name := range names {
		out = append(out, newAction(m.nameFor(category, name), defs[name], m.defs))
	}
	return out
}

// SubResources returns has-relations constructable without loaded data.
func (m *ResourceModel) SubResources() []*Action {
	return m.relatedResources(false)
}

// References returns has-relations that need a data-sourced identifier.
func (m *ResourceModel) References() []*Action {
	return m.relatedResources(true)
}

func (m *ResourceModel) relatedResources(dataRequired bool) []*Action {
	hasDefs := m.hasDefinition()
	out := []*Action{}
	for _, name := range sortedKeys(hasDefs) {
		def := hasDefs[name]
		if hasDataIdentifier(def) != dataRequired {
			continue
		}
		category := "subresource"
		if dataRequired {
			category = "reference"
		}
		out = append(out, newAction(m.nameFor(category, name), &ActionDef{Resource: def.Resource}, m.defs))
	}
	return out
}

// hasDefinition returns the has-relations for this resource. The service
// root exposes every defined resource type as a sub-resource, synthesizing
// input-sourced identifiers for types its own has-block does not cover.
func (m *ResourceModel) hasDefinition() map[string]*HasDef {
	if _, defined := m.defs[m.Name]; defined {
		return m.def.Has
	}
	out := make(map[string]*HasDef)
	for _, typeName := range sortedKeys(m.defs) {
		found := false
		for hasName, has := range m.def.Has {
			if has.Resource != nil && has.Resource.Type == typeName {
				out[hasName] = has
				found = true
			}
		}
		if found {
			continue
		}
		synthetic := &ResponseResourceDef{Type: typeName}
		for _, id := range m.defs[typeName].Identifiers {
			synthetic.Identifiers = append(synthetic.Identifiers, &ParamDef{
				Target: id.Name,
				Source: SourceInput,
			})
		}
		out[typeName] = &HasDef{Resource: synthetic}
	}
	return out
}

// Collections returns the resource's hasMany relations, sorted by name.
func (m *ResourceModel) Collections() []*Collection {
	names := sortedKeys(m.def.HasMany)
	out := make([]*Collection, 0, len(names))
	for _, name := range names {
		def := m.def.HasMany[name]
		col := &Collection{
			Name:    m.nameFor("collection", name),
			defs:    m.defs,
			Request: newRequest(def.Request),
			Path:    def.Path,
		}
		if def.Resource != nil {
			col.Resource = &ResponseResource{def: def.Resource, defs: m.defs}
			if col.Path == "" {
				col.Path = def.Resource.Path
			}
		}
		out = append(out, col)
	}
	return out
}

// Waiters returns the resource's waiters, prefixed and sorted.
func (m *ResourceModel) Waiters() []*Waiter {
	names := sortedKeys(m.def.Waiters)
	out := make([]*Waiter, 0, len(names))
	for _, name := range names {
		def := m.def.Waiters[name]
		out = append(out, &Waiter{
			Name:         m.nameFor("waiter", WaiterPrefix+name),
			RelativeName: name,
			WaiterName:   def.WaiterName,
			Params:       wrapParams(def.Params),
			Path:         def.Path,
		})
	}
	return out
}

// Attribute is a shape member surfaced on a resource.
type Attribute struct {
	// Name of the attribute after renaming.
	Name string

	// MemberName is the original shape member.
	MemberName string

	Member *Member
}

// Attributes derives the resource's attributes from its shape: every
// member that is not claimed as an identifier member, sorted by name.
func (m *ResourceModel) Attributes(shape *Shape) []*Attribute {
	if shape == nil {
		return nil
	}
	identifierMembers := make(map[string]bool)
	for _, id := range m.def.Identifiers {
		if id.MemberName != "" {
			identifierMembers[id.MemberName] = true
		}
	}
	out := []*Attribute{}
	for _, name := range shape.MemberNames() {
		if identifierMembers[name] {
			continue
		}
		out = append(out, &Attribute{
			Name:       m.nameFor("attribute", name),
			MemberName: name,
			Member:     shape.Members[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// =============================================================================
// WRAPPED MEMBER TYPES
// =============================================================================

// Identifier names one identifier of a resource after renaming.
type Identifier struct {
	Name       string
	MemberName string
}

// Action is a modeled operation on a resource: a plain action, a load, a
// batch action, or a has-relation (which carries no request).
type Action struct {
	Name     string
	Request  *Request
	Resource *ResponseResource
	Path     string
}

func newAction(name string, def *ActionDef, defs map[string]*ResourceDefinition) *Action {
	a := &Action{Name: name, Path: def.Path}
	if def.Request != nil {
		a.Request = newRequest(def.Request)
	}
	if def.Resource != nil {
		a.Resource = &ResponseResource{def: def.Resource, defs: defs}
	}
	return a
}

// Request binds an action to an operation and its modeled parameters.
type Request struct {
	Operation string
	Params    []*Parameter
}

func newRequest(def *RequestDef) *Request {
	if def == nil {
		return nil
	}
	return &Request{Operation: def.Operation, Params: wrapParams(def.Params)}
}

// Parameter is a single source-to-target value mapping.
type Parameter struct {
	Target string
	Source string
	Name   string
	Path   string
	Value  any
}

func wrapParams(defs []*ParamDef) []*Parameter {
	out := make([]*Parameter, 0, len(defs))
	for _, def := range defs {
		out = append(out, &Parameter{
			Target: def.Target,
			Source: def.Source,
			Name:   def.Name,
			Path:   def.Path,
			Value:  def.Value,
		})
	}
	return out
}

// ResponseResource names the resource type an action yields.
type ResponseResource struct {
	def  *ResponseResourceDef
	defs map[string]*ResourceDefinition
}

// Type returns the target resource type name.
func (r *ResponseResource) Type() string { return r.def.Type }

// Identifiers returns the mappings that produce the target's identifiers.
func (r *ResponseResource) Identifiers() []*Parameter {
	return wrapParams(r.def.Identifiers)
}

// Path is the response path carrying the target's data, if any.
func (r *ResponseResource) Path() string { return r.def.Path }

// Model resolves the target resource type's model.
func (r *ResponseResource) Model() (*ResourceModel, error) {
	def, ok := r.defs[r.def.Type]
	if !ok {
		return nil, fmt.Errorf("unknown resource type %q", r.def.Type)
	}
	return NewResourceModel(r.def.Type, def, r.defs), nil
}

// Collection is a hasMany relation: an enumerable, pageable set of
// resources reached through a list operation.
type Collection struct {
	Name     string
	Request  *Request
	Resource *ResponseResource
	Path     string

	defs map[string]*ResourceDefinition
}

// BatchActions returns the batch actions of the collection's resource type.
func (c *Collection) BatchActions() ([]*Action, error) {
	if c.Resource == nil {
		return nil, nil
	}
	target, err := c.Resource.Model()
	if err != nil {
		return nil, err
	}
	if err := target.LoadRenameMap(nil); err != nil {
		return nil, err
	}
	return target.BatchActions(), nil
}

// Waiter links a resource to a service waiter configuration.
type Waiter struct {
	// Name is the prefixed member name, e.g. WaitUntilExists.
	Name string

	// RelativeName is the unprefixed definition name, e.g. Exists.
	RelativeName string

	// WaiterName keys into the service's waiters.json.
	WaiterName string

	Params []*Parameter
	Path   string
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasDataIdentifier(def *HasDef) bool {
	if def == nil || def.Resource == nil {
		return false
	}
	for _, id := range def.Resource.Identifiers {
		if id.Source == SourceData {
			return true
		}
	}
	return false
}
