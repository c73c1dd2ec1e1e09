package docs

import (
	"fmt"

	"github.com/stratus/ral-core/internal/model"
)

func (d *documenter) documentIdentifiers(sec *Section) {
	ids := d.resource.Identifiers()
	if len(ids) == 0 {
		return
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.Name)
	}
	d.members.set("identifiers", names)

	addTypeOverview(sec, d.level, "Identifiers",
		"Identifiers are properties of a resource that are set upon instantiation of the resource.")
	for _, id := range ids {
		isec := sec.AddSection(id.Name)
		isec.Heading(d.level+1, id.Name)
		isec.Paragraph(italic("(string)") + " " + identifierDescription(d.resourceName, id.Name))
	}
}

func (d *documenter) documentAttributes(sec *Section) error {
	if d.shape == nil {
		return nil
	}
	attrs := d.resource.Attributes(d.shape)
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		names = append(names, attr.Name)
	}
	d.members.set("attributes", names)

	addTypeOverview(sec, d.level, "Attributes",
		fmt.Sprintf("Attributes provide access to the properties of a resource. "+
			"Attributes are lazy-loaded the first time one is accessed via the %s method.", code("Load")))
	for _, attr := range attrs {
		if err := d.documentAttribute(sec.AddSection(attr.Name), attr); err != nil {
			return err
		}
	}
	return nil
}

func (d *documenter) documentAttribute(sec *Section, attr *model.Attribute) error {
	shape, err := d.shape.MemberShape(attr.MemberName)
	if err != nil {
		return err
	}
	sec.Heading(d.level+1, attr.Name)

	doc := ""
	if attr.Member != nil {
		doc = attr.Member.Documentation
	}
	if doc == "" {
		doc = shape.Documentation
	}
	line := italic("(" + typeName(shape) + ")")
	if doc != "" {
		line += " " + doc
	}
	sec.Paragraph(line)

	if shape.Type == "structure" || shape.Type == "list" {
		fields := sec.AddSection("fields")
		writeNestedFields(fields, shape, 0, map[string]bool{shape.Name(): true})
		fields.EndList()
	}
	return nil
}

func (d *documenter) documentReferences(sec *Section) {
	refs := d.resource.References()
	if len(refs) == 0 {
		return
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	d.members.set("references", names)

	addTypeOverview(sec, d.level, "References",
		"References are related resource instances that have a belongs-to relationship.")
	for _, ref := range refs {
		rsec := sec.AddSection(ref.Name)
		rsec.Heading(d.level+1, ref.Name)
		rsec.Paragraph(fmt.Sprintf("(%s) The related %s if set, otherwise %s.",
			resourceLink(d.serviceName, ref.Resource.Type()), ref.Name, code("nil")))
		rsec.CodeBlock("go", fmt.Sprintf("%s, err := %s.Reference(ctx, %q)",
			lowerCamel(ref.Name), d.exampleVar(), ref.Name))
	}
}
