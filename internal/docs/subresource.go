package docs

import (
	"fmt"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

func (d *documenter) documentSubResources(sec *Section) error {
	subs := d.resource.SubResources()
	if len(subs) == 0 {
		return nil
	}
	names := make([]string, 0, len(subs))
	for _, sub := range subs {
		names = append(names, sub.Name)
	}
	d.members.set("sub-resources", names)

	addTypeOverview(sec, d.level, "Sub-resources",
		"Sub-resources are methods that create a new instance of a child "+
			"resource. This resource's identifiers get passed along to the child.")
	for _, sub := range subs {
		if err := d.documentSubResource(sec.AddSection(sub.Name), sub); err != nil {
			return err
		}
	}
	return nil
}

func (d *documenter) documentSubResource(sec *Section, sub *model.Action) error {
	if sub.Resource == nil {
		return fmt.Errorf("sub-resource %s of %s names no resource type", sub.Name, d.resourceName)
	}
	needed := []string{}
	for _, id := range sub.Resource.Identifiers() {
		if id.Source == model.SourceInput {
			needed = append(needed, id.Target)
		}
	}

	var call strings.Builder
	fmt.Fprintf(&call, "%s, err := %s.SubResource(%q",
		lowerCamel(sub.Name), d.exampleVar(), sub.Name)
	for _, target := range needed {
		fmt.Fprintf(&call, ", %q", lowerCamel(target))
	}
	call.WriteString(")")

	extras := make([]extraParam, 0, len(needed))
	for _, target := range needed {
		extras = append(extras, extraParam{
			name:        lowerCamel(target),
			goType:      "string",
			description: identifierDescription(sub.Name, target),
		})
	}

	opts := methodOpts{
		name:         sub.Name,
		description:  fmt.Sprintf("Creates a %s resource handle.", sub.Resource.Type()),
		callTemplate: call.String(),
		extraInputs:  extras,
		headingLevel: d.level + 1,
	}
	return documentResourceMethod(sec, opts, sub.Resource, d.serviceName)
}
