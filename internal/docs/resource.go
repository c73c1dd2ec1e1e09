package docs

import (
	"fmt"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

// ResourceDocumenter renders the reference page of one resource type, or
// of the service root when built through newServiceResourceDocumenter.
type ResourceDocumenter struct {
	*documenter
}

// NewResourceDocumenter builds a documenter for a named resource type.
func NewResourceDocumenter(ctx *model.ServiceContext, resourceName string) (*ResourceDocumenter, error) {
	m, err := ctx.ResourceModelFor(resourceName)
	if err != nil {
		return nil, err
	}
	d, err := newDocumenter(ctx, m, false, 2)
	if err != nil {
		return nil, err
	}
	return &ResourceDocumenter{documenter: d}, nil
}

func newServiceResourceDocumenter(ctx *model.ServiceContext, level int) (*ResourceDocumenter, error) {
	m, err := ctx.ServiceResourceModel()
	if err != nil {
		return nil, err
	}
	d, err := newDocumenter(ctx, m, true, level)
	if err != nil {
		return nil, err
	}
	return &ResourceDocumenter{documenter: d}, nil
}

// Document writes the resource's full reference: intro, member overview and
// the per-category sections. The overview block is filled last, once every
// category has claimed its members.
func (r *ResourceDocumenter) Document(doc *Section) error {
	r.writeIntro(doc.AddSection("intro"))
	overview := doc.AddSection("member-overview")

	r.documentIdentifiers(doc.AddSection("identifiers"))
	if err := r.documentAttributes(doc.AddSection("attributes")); err != nil {
		return err
	}
	r.documentReferences(doc.AddSection("references"))
	if err := r.documentActions(doc.AddSection("actions")); err != nil {
		return err
	}
	if err := r.documentSubResources(doc.AddSection("sub-resources")); err != nil {
		return err
	}
	if err := r.documentCollections(doc.AddSection("collections")); err != nil {
		return err
	}
	if err := r.documentWaiters(doc.AddSection("waiters")); err != nil {
		return err
	}

	r.members.writeOverview(overview)
	return nil
}

func (r *ResourceDocumenter) writeIntro(sec *Section) {
	display := serviceDisplayName(r.ctx)
	var example strings.Builder
	example.WriteString("sess := ral.NewSession()\n")
	fmt.Fprintf(&example, "%s, err := sess.Resource(%q, nil)\n", r.serviceName, r.serviceName)

	if r.root {
		sec.Paragraph(fmt.Sprintf("The service resource gives modeled access to %s.", display))
	} else {
		sec.Paragraph(fmt.Sprintf("A resource representing a %s %s.", display, r.resourceName))
		if r.shape != nil && r.shape.Documentation != "" {
			sec.Paragraph(r.shape.Documentation)
		}
		r.writeConstruction(&example)
	}
	sec.CodeBlock("go", example.String())
}

// writeConstruction appends the sub-resource calls that reach this type
// from the service root, one hop per line.
func (r *ResourceDocumenter) writeConstruction(example *strings.Builder) {
	path, err := subResourcePath(r.ctx, r.resourceName)
	if err != nil {
		return
	}
	parent := r.serviceName
	for _, rel := range path {
		childVar := lowerCamel(rel.Resource.Type())
		fmt.Fprintf(example, "%s, err := %s.SubResource(%q", childVar, parent, rel.Name)
		for _, p := range rel.Resource.Identifiers() {
			if p.Source == model.SourceInput {
				fmt.Fprintf(example, ", %q", lowerCamel(p.Target))
			}
		}
		example.WriteString(")\n")
		parent = childVar
	}
}

// subResourcePath finds the shortest chain of sub-resource relations from
// the service root to the target type.
func subResourcePath(ctx *model.ServiceContext, target string) ([]*model.Action, error) {
	root, err := ctx.ServiceResourceModel()
	if err != nil {
		return nil, err
	}
	type node struct {
		model *model.ResourceModel
		path  []*model.Action
	}
	frontier := []node{{model: root}}
	seen := map[string]bool{}
	for len(frontier) > 0 {
		n := frontier[0]
		frontier = frontier[1:]
		for _, rel := range n.model.SubResources() {
			if rel.Resource == nil {
				continue
			}
			next := rel.Resource.Type()
			path := append(append([]*model.Action{}, n.path...), rel)
			if next == target {
				return path, nil
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			m, err := ctx.ResourceModelFor(next)
			if err != nil {
				return nil, err
			}
			frontier = append(frontier, node{model: m, path: path})
		}
	}
	return nil, fmt.Errorf("resource %s is not reachable from the %s service resource", target, ctx.ServiceName)
}

func serviceDisplayName(ctx *model.ServiceContext) string {
	if name := ctx.Service.Metadata().ServiceName; name != "" {
		return name
	}
	return ctx.ServiceName
}
