package model

import "fmt"

// ServiceContext bundles everything the resource factory and the docs
// generator need to know about one service: its name, its API model, its
// resource definitions and a source of waiter configurations.
type ServiceContext struct {
	ServiceName  string
	Service      *ServiceModel
	ResourceDefs *ResourcesFile
	Waiters      WaiterSource
}

// Validate asserts the context is complete enough to build resources from.
func (c *ServiceContext) Validate() error {
	if c == nil {
		return fmt.Errorf("service context is nil")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service context has no service name")
	}
	if c.Service == nil {
		return fmt.Errorf("service context for %s has no service model", c.ServiceName)
	}
	if c.ResourceDefs == nil {
		return fmt.Errorf("service context for %s has no resource definitions", c.ServiceName)
	}
	return nil
}

// ServiceResourceModel builds the model of the service root resource.
func (c *ServiceContext) ServiceResourceModel() (*ResourceModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	def := c.ResourceDefs.Service
	if def == nil {
		def = &ResourceDefinition{}
	}
	m := NewResourceModel(c.ServiceName, def, c.ResourceDefs.Resources)
	if err := m.LoadRenameMap(nil); err != nil {
		return nil, err
	}
	return m, nil
}

// ResourceModelFor builds the model of a named resource type with its
// rename map loaded against the resource's shape.
func (c *ServiceContext) ResourceModelFor(name string) (*ResourceModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	def, ok := c.ResourceDefs.Resources[name]
	if !ok {
		return nil, fmt.Errorf("service %s defines no resource %q", c.ServiceName, name)
	}
	m := NewResourceModel(name, def, c.ResourceDefs.Resources)
	shape, err := c.shapeFor(m)
	if err != nil {
		return nil, err
	}
	if err := m.LoadRenameMap(shape); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *ServiceContext) shapeFor(m *ResourceModel) (*Shape, error) {
	if m.ShapeName == "" {
		return nil, nil
	}
	return c.Service.Shape(m.ShapeName)
}

// ResourceNames lists the defined resource types, sorted.
func (c *ServiceContext) ResourceNames() []string {
	if c == nil || c.ResourceDefs == nil {
		return nil
	}
	return sortedKeys(c.ResourceDefs.Resources)
}
