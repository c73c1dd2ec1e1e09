package docs

import (
	"fmt"
	"sort"

	"github.com/stratus/ral-core/internal/model"
)

func (d *documenter) documentActions(sec *Section) error {
	modeled := make(map[string]*model.Action)
	names := []string{}
	for _, a := range d.resource.Actions() {
		modeled[a.Name] = a
		names = append(names, a.Name)
	}
	if d.resource.HasLoad() {
		names = append(names, "Load", "Reload")
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	d.members.set("actions", names)

	addTypeOverview(sec, d.level, "Actions",
		"Actions call operations on resources. They may automatically handle "+
			"the passing in of arguments set from identifiers and some attributes.")

	for _, name := range names {
		asec := sec.AddSection(name)
		if name == "Load" || name == "Reload" {
			if err := d.documentLoadReload(asec, name); err != nil {
				return err
			}
			continue
		}
		if err := d.documentAction(asec, modeled[name]); err != nil {
			return err
		}
	}
	return nil
}

func (d *documenter) documentAction(sec *Section, action *model.Action) error {
	op, err := d.ctx.Service.Operation(action.Request.Operation)
	if err != nil {
		return err
	}
	opts := methodOpts{
		name:        action.Name,
		description: op.Documentation,
		operation:   op,
		callTemplate: fmt.Sprintf("result, err := %s.CallAction(ctx, %q, %%s)",
			d.exampleVar(), action.Name),
		excludeInput: ignoreParams(action.Request.Params),
		withNotes:    true,
		headingLevel: d.level + 1,
	}
	if action.Resource != nil {
		if returnsResourceList(action.Resource) {
			opts.followUp = fmt.Sprintf("%ss := result.Resources", lowerCamel(action.Resource.Type()))
		} else {
			opts.followUp = fmt.Sprintf("%s := result.Resource", lowerCamel(action.Resource.Type()))
		}
	}
	return documentResourceMethod(sec, opts, action.Resource, d.serviceName)
}

// documentLoadReload covers the two names a load operation surfaces under.
func (d *documenter) documentLoadReload(sec *Section, name string) error {
	load := d.resource.Load()
	if load == nil || load.Request == nil {
		return fmt.Errorf("resource %s documents %s without a load action", d.resourceName, name)
	}
	description := fmt.Sprintf("Calls %s to update the attributes of the %s resource. "+
		"Note that %s and %s are the same method and can be used interchangeably.",
		code(d.serviceName+".Client."+load.Request.Operation), d.resourceName,
		code("Load"), code("Reload"))
	return documentMethod(sec, methodOpts{
		name:         name,
		description:  description,
		callTemplate: fmt.Sprintf("err := %s.%s(ctx)", d.exampleVar(), name),
		returnsNote:  "Only an error. On success the resource's data is refreshed in place.",
		headingLevel: d.level + 1,
	})
}
