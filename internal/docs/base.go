package docs

import (
	"fmt"

	"github.com/stratus/ral-core/internal/model"
)

// documenter carries everything the per-concern documenters need about one
// resource: its model, its shape (nil when the resource carries no data),
// and the member map that feeds the page's overview block.
type documenter struct {
	ctx      *model.ServiceContext
	resource *model.ResourceModel
	shape    *model.Shape
	members  *memberMap

	serviceName  string
	resourceName string
	root         bool

	// level is the heading level of category sections; members render one
	// level deeper.
	level int
}

func newDocumenter(ctx *model.ServiceContext, resource *model.ResourceModel, root bool, level int) (*documenter, error) {
	var shape *model.Shape
	if resource.ShapeName != "" {
		s, err := ctx.Service.Shape(resource.ShapeName)
		if err != nil {
			return nil, err
		}
		shape = s
	}
	return &documenter{
		ctx:          ctx,
		resource:     resource,
		shape:        shape,
		members:      newMemberMap(),
		serviceName:  ctx.ServiceName,
		resourceName: resource.Name,
		root:         root,
		level:        level,
	}, nil
}

// className is the resource's documented name, e.g. "queues.Queue".
func (d *documenter) className() string {
	if d.root {
		return d.serviceName + ".ServiceResource"
	}
	return d.serviceName + "." + d.resourceName
}

// exampleVar names the resource variable in generated examples.
func (d *documenter) exampleVar() string {
	if d.root {
		return d.serviceName
	}
	return lowerCamel(d.resourceName)
}

// addTypeOverview opens a member category section: heading plus the fixed
// descriptive paragraph.
func addTypeOverview(sec *Section, level int, title, description string) {
	sec.Heading(level, title)
	sec.Paragraph(description)
}

// memberMap records documented member names per category, in the order the
// categories were documented, to build the resource overview block.
type memberMap struct {
	order   []string
	members map[string][]string
}

func newMemberMap() *memberMap {
	return &memberMap{members: make(map[string][]string)}
}

func (m *memberMap) set(category string, names []string) {
	if len(names) == 0 {
		return
	}
	if _, ok := m.members[category]; !ok {
		m.order = append(m.order, category)
	}
	m.members[category] = names
}

// methodCategories render with call parentheses in the overview.
var methodCategories = map[string]bool{
	"actions":       true,
	"sub-resources": true,
	"waiters":       true,
}

func (m *memberMap) writeOverview(sec *Section) {
	for _, category := range m.order {
		sec.Paragraph(fmt.Sprintf("These are the resource's available %s:", category))
		for _, name := range m.members[category] {
			if methodCategories[category] {
				sec.Bullet(0, code(name+"()"))
			} else {
				sec.Bullet(0, code(name))
			}
		}
		sec.EndList()
	}
}
