package docs

import (
	"fmt"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

// methodOpts drives documentMethod. callTemplate is the example call with
// one %s placeholder for the params literal; followUp lines render after
// the call inside the same code block.
type methodOpts struct {
	name         string
	description  string
	operation    *model.Operation
	callTemplate string
	followUp     string
	excludeInput []string
	extraInputs  []extraParam

	// hideInput drops the operation's input members from the example and
	// parameter list while keeping synthetic extras (collection limits).
	hideInput bool

	// withNotes appends pagination and idempotency notes drawn from the
	// operation to the description.
	withNotes bool

	// returnsNote short-circuits the return section with fixed prose.
	returnsNote string

	headingLevel int
}

// documentMethod writes one documented method: heading, description,
// request syntax, parameters and return sections. Sections are named so
// callers can revise them afterwards.
func documentMethod(sec *Section, opts methodOpts) error {
	level := opts.headingLevel
	if level == 0 {
		level = 3
	}
	sec.AddSection("signature").Heading(level, opts.name)

	desc := sec.AddSection("description")
	desc.Paragraph(opts.description)
	if opts.withNotes && opts.operation != nil {
		writeOperationNotes(desc, opts.operation)
	}

	var input *model.Shape
	if opts.operation != nil {
		shape, err := opts.operation.InputShape()
		if err != nil {
			return err
		}
		input = shape
	}
	exclude := toSet(opts.excludeInput)

	if opts.callTemplate != "" {
		call := opts.callTemplate
		if strings.Contains(call, "%s") {
			literal := "nil"
			if input != nil && !opts.hideInput {
				literal = exampleParams(input, exclude)
			}
			call = fmt.Sprintf(call, literal)
		}
		if opts.followUp != "" {
			call += "\n" + opts.followUp
		}
		example := sec.AddSection("request-example")
		example.Label("Request syntax")
		example.CodeBlock("go", call)
	}

	paramShape := input
	if opts.hideInput {
		paramShape = nil
	}
	if len(opts.extraInputs) > 0 || hasVisibleMembers(paramShape, exclude) {
		params := sec.AddSection("params")
		params.Label("Parameters")
		writeShapeFields(params, paramShape, exclude, opts.extraInputs)
	}

	return writeDefaultReturn(sec.AddSection("return"), opts)
}

func writeOperationNotes(sec *Section, op *model.Operation) {
	if p := op.Pagination; p != nil {
		note := fmt.Sprintf("This operation paginates: pass %s from the previous response to continue.",
			code(p.InputToken))
		if p.LimitKey != "" {
			note += fmt.Sprintf(" %s bounds the page size.", code(p.LimitKey))
		}
		sec.Paragraph(note)
	}
	if op.IdempotencyToken != "" {
		sec.Paragraph(fmt.Sprintf("%s is an idempotency token and is generated for you when omitted.",
			code(op.IdempotencyToken)))
	}
}

func hasVisibleMembers(shape *model.Shape, exclude map[string]bool) bool {
	if shape == nil {
		return false
	}
	for _, name := range shape.MemberNames() {
		if !exclude[name] {
			return true
		}
	}
	return false
}

func writeDefaultReturn(sec *Section, opts methodOpts) error {
	if opts.returnsNote != "" {
		sec.Label("Returns")
		sec.Paragraph(opts.returnsNote)
		return nil
	}
	if opts.operation == nil {
		return nil
	}
	output, err := opts.operation.OutputShape()
	if err != nil {
		return err
	}
	sec.Label("Returns")
	if output == nil {
		sec.Paragraph("An empty " + code("ral.Params") + " on success.")
		return nil
	}
	sec.Paragraph(code("ral.Params") + " shaped as follows:")
	sec.CodeBlock("go", exampleParams(output, nil))
	writeShapeFields(sec, output, nil, nil)
	return nil
}

// documentResourceMethod documents a method and, when the action yields a
// resource, replaces the return section with the handle it produces.
func documentResourceMethod(sec *Section, opts methodOpts, resource *model.ResponseResource, serviceName string) error {
	if err := documentMethod(sec, opts); err != nil {
		return err
	}
	if resource == nil {
		return nil
	}
	sec.DeleteSection("return")
	ret := sec.AddSection("return")
	ret.Label("Returns")
	link := resourceLink(serviceName, resource.Type())
	if returnsResourceList(resource) {
		ret.Paragraph(fmt.Sprintf("A list of %s resource handles.", link))
	} else {
		ret.Paragraph(fmt.Sprintf("A %s resource handle.", link))
	}
	return nil
}
