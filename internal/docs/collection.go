package docs

import (
	"fmt"
	"sort"

	"github.com/stratus/ral-core/internal/model"
)

func (d *documenter) documentCollections(sec *Section) error {
	cols := d.resource.Collections()
	if len(cols) == 0 {
		return nil
	}
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	d.members.set("collections", names)

	addTypeOverview(sec, d.level, "Collections",
		"Collections provide an interface to iterate over and manipulate groups of resources.")
	for _, col := range cols {
		if err := d.documentCollection(sec.AddSection(col.Name), col); err != nil {
			return err
		}
	}
	return nil
}

func (d *documenter) documentCollection(sec *Section, col *model.Collection) error {
	if col.Resource == nil {
		return fmt.Errorf("collection %s of %s models no resource", col.Name, d.resourceName)
	}
	resType := col.Resource.Type()
	colVar := lowerCamel(col.Name)
	if colVar == d.exampleVar() {
		colVar = "collection"
	}

	head := sec.AddSection("object")
	head.Heading(d.level+1, col.Name)
	head.Paragraph(fmt.Sprintf("A collection of %s resources.", resourceLink(d.serviceName, resType)))
	head.Paragraph(fmt.Sprintf("A %s collection includes all %s resources by default, "+
		"and extreme caution should be taken when performing actions on all of them.",
		col.Name, resType))
	head.CodeBlock("go", fmt.Sprintf("%s, err := %s.Collection(%q)", colVar, d.exampleVar(), col.Name))

	op, err := d.ctx.Service.Operation(col.Request.Operation)
	if err != nil {
		return err
	}
	batches, err := col.BatchActions()
	if err != nil {
		return err
	}
	batchByName := make(map[string]*model.Action, len(batches))
	methods := []string{"All", "Filter", "Limit", "PageSize"}
	for _, batch := range batches {
		batchByName[batch.Name] = batch
		methods = append(methods, batch.Name)
	}
	sort.Strings(methods)

	for _, name := range methods {
		msec := sec.AddSection(name)
		if batch, ok := batchByName[name]; ok {
			if err := d.documentBatchAction(msec, colVar, batch); err != nil {
				return err
			}
			continue
		}
		if err := d.documentCollectionMethod(msec, colVar, col, op, name); err != nil {
			return err
		}
	}
	return nil
}

// documentCollectionMethod covers the four fixed chaining methods every
// collection carries.
func (d *documenter) documentCollectionMethod(sec *Section, colVar string, col *model.Collection, op *model.Operation, name string) error {
	resType := col.Resource.Type()
	link := resourceLink(d.serviceName, resType)
	iteratorNote := fmt.Sprintf("An iterator over %s resource handles.", link)

	opts := methodOpts{
		name:         name,
		operation:    op,
		returnsNote:  iteratorNote,
		headingLevel: d.level + 2,
	}
	switch name {
	case "All":
		opts.description = fmt.Sprintf("Creates an iterable of all %s resources in the collection.", resType)
		opts.callTemplate = fmt.Sprintf("it := %s.All().Resources(ctx)", colVar)
		opts.hideInput = true
	case "Filter":
		opts.description = fmt.Sprintf("Creates an iterable of all %s resources in the collection "+
			"filtered by the parameters passed. A %s collection will include all resources by "+
			"default if no filters are provided, and extreme caution should be taken when "+
			"performing actions on all resources.", resType, resType)
		opts.callTemplate = fmt.Sprintf("it := %s.Filter(%%s).Resources(ctx)", colVar)
		opts.excludeInput = ignoreParams(col.Request.Params)
	case "Limit":
		opts.description = fmt.Sprintf("Creates an iterable up to a specified number of %s resources "+
			"in the collection.", resType)
		opts.callTemplate = fmt.Sprintf("it := %s.Limit(123).Resources(ctx)", colVar)
		opts.hideInput = true
		opts.extraInputs = []extraParam{{
			name:        "count",
			goType:      "int",
			description: "The limit to the number of resources in the iterable.",
		}}
	case "PageSize":
		opts.description = fmt.Sprintf("Creates an iterable of all %s resources in the collection, "+
			"but limits the number of items returned by each service call by the specified amount.", resType)
		opts.callTemplate = fmt.Sprintf("it := %s.PageSize(123).Resources(ctx)", colVar)
		opts.hideInput = true
		opts.extraInputs = []extraParam{{
			name:        "count",
			goType:      "int",
			description: "The number of items returned by each service call.",
		}}
	default:
		return fmt.Errorf("collection %s has no method %q", col.Name, name)
	}
	return documentMethod(sec, opts)
}

func (d *documenter) documentBatchAction(sec *Section, colVar string, batch *model.Action) error {
	op, err := d.ctx.Service.Operation(batch.Request.Operation)
	if err != nil {
		return err
	}
	opts := methodOpts{
		name:        batch.Name,
		description: op.Documentation,
		operation:   op,
		callTemplate: fmt.Sprintf("action, err := %s.BatchAction(%q)\nresponses, err := action.Call(ctx, %%s)",
			colVar, batch.Name),
		excludeInput: ignoreParams(batch.Request.Params),
		headingLevel: d.level + 2,
	}
	if err := documentMethod(sec, opts); err != nil {
		return err
	}

	// One underlying call per page, so the return section describes a
	// slice of responses rather than a single one.
	sec.DeleteSection("return")
	ret := sec.AddSection("return")
	ret.Label("Returns")
	output, err := op.OutputShape()
	if err != nil {
		return err
	}
	if output == nil {
		ret.Paragraph(fmt.Sprintf("A %s with one empty response per page processed.", code("[]ral.Params")))
		return nil
	}
	ret.Paragraph(fmt.Sprintf("A %s with one response per page processed, each shaped as follows:",
		code("[]ral.Params")))
	ret.CodeBlock("go", exampleParams(output, nil))
	writeShapeFields(ret, output, nil, nil)
	return nil
}
