package docs

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/stratus/ral-core/internal/model"
)

// ignoreParams lists the top-level input members a modeled mapping already
// fills, so documentation skips them. "Objects[].Key" contributes "Objects".
func ignoreParams(params []*model.Parameter) []string {
	seen := make(map[string]bool)
	for _, p := range params {
		name := p.Target
		if i := strings.IndexAny(name, ".["); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// identifierDescription is the fixed wording for identifier members.
func identifierDescription(resourceName, identifierName string) string {
	return fmt.Sprintf("The %s's %s identifier. This **must** be set.", resourceName, identifierName)
}

// lowerCamel turns a member or type name into an example variable name.
func lowerCamel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// camelWords splits CamelCase into lower-cased words: "RedriveDone"
// becomes "redrive done".
func camelWords(name string) string {
	var words []string
	start := 0
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, strings.ToLower(name[start:i]))
			start = i
		}
	}
	words = append(words, strings.ToLower(name[start:]))
	return strings.Join(words, " ")
}

// returnsResourceList reports whether an action yields several resources:
// any identifier mapping whose path walks into a list does.
func returnsResourceList(resource *model.ResponseResource) bool {
	for _, id := range resource.Identifiers() {
		if strings.Contains(id.Path, "[]") {
			return true
		}
	}
	return false
}

// typeName renders a shape's type the way the generated pages present it.
// Structures surface as the public params type rather than a bare map.
func typeName(shape *model.Shape) string {
	switch shape.Type {
	case "structure":
		return "ral.Params"
	case "list":
		elem, err := shape.ElementShape()
		if err != nil {
			return "[]any"
		}
		return "[]" + typeName(elem)
	case "map":
		if value, err := shape.ValueShape(); err == nil && isScalar(value) {
			return "map[string]" + value.GoTypeName()
		}
		return "map[string]any"
	default:
		return shape.GoTypeName()
	}
}

func isScalar(shape *model.Shape) bool {
	switch shape.Type {
	case "structure", "list", "map":
		return false
	}
	return true
}

// scalarPlaceholder is the example literal for a scalar shape.
func scalarPlaceholder(shape *model.Shape) string {
	if len(shape.Enum) > 0 {
		return fmt.Sprintf("%q", shape.Enum[0])
	}
	switch shape.Type {
	case "string":
		return `"string"`
	case "integer", "long":
		return "123"
	case "float", "double":
		return "123.0"
	case "boolean":
		return "true"
	case "timestamp":
		return `"2024-06-01T00:00:00Z"`
	case "blob":
		return `[]byte("data")`
	default:
		return "nil"
	}
}

// exampleParams renders a placeholder params literal for an input or output
// shape, excluding the given top-level members. Returns "nil" when nothing
// remains to show.
func exampleParams(shape *model.Shape, exclude map[string]bool) string {
	if shape == nil {
		return "nil"
	}
	remaining := 0
	for _, name := range shape.MemberNames() {
		if !exclude[name] {
			remaining++
		}
	}
	if remaining == 0 {
		return "nil"
	}
	var sb strings.Builder
	writeStructureLiteral(&sb, shape, exclude, "", map[string]bool{shape.Name(): true})
	return sb.String()
}

func writeStructureLiteral(sb *strings.Builder, shape *model.Shape, exclude map[string]bool, indent string, seen map[string]bool) {
	sb.WriteString("ral.Params{\n")
	inner := indent + "\t"
	for _, name := range shape.MemberNames() {
		if exclude[name] {
			continue
		}
		member, err := shape.MemberShape(name)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s%q: ", inner, name))
		writeValueLiteral(sb, member, inner, seen)
		sb.WriteString(",\n")
	}
	sb.WriteString(indent + "}")
}

func writeValueLiteral(sb *strings.Builder, shape *model.Shape, indent string, seen map[string]bool) {
	switch shape.Type {
	case "structure":
		if seen[shape.Name()] {
			sb.WriteString("ral.Params{}")
			return
		}
		seen[shape.Name()] = true
		writeStructureLiteral(sb, shape, nil, indent, seen)
		delete(seen, shape.Name())
	case "list":
		elem, err := shape.ElementShape()
		if err != nil {
			sb.WriteString("[]any{}")
			return
		}
		if elem.Type == "structure" {
			sb.WriteString("[]ral.Params{\n" + indent + "\t")
			writeValueLiteral(sb, elem, indent+"\t", seen)
			sb.WriteString(",\n" + indent + "}")
			return
		}
		sb.WriteString("[]" + elem.GoTypeName() + "{" + scalarPlaceholder(elem) + "}")
	case "map":
		sb.WriteString(typeName(shape) + "{")
		if value, err := shape.ValueShape(); err == nil && isScalar(value) {
			sb.WriteString(`"string": ` + scalarPlaceholder(value))
		}
		sb.WriteString("}")
	default:
		sb.WriteString(scalarPlaceholder(shape))
	}
}

// extraParam documents a synthetic method parameter that has no backing
// shape member, such as a collection limit count.
type extraParam struct {
	name        string
	goType      string
	description string
}

// writeShapeFields documents a shape's members as a nested bullet list.
func writeShapeFields(sec *Section, shape *model.Shape, exclude map[string]bool, extras []extraParam) {
	for _, extra := range extras {
		sec.Bullet(0, fmt.Sprintf("%s (%s) %s",
			bold(extra.name), italic(extra.goType), extra.description))
	}
	if shape != nil {
		writeMemberFields(sec, shape, exclude, 0, map[string]bool{shape.Name(): true})
	}
	sec.EndList()
}

func writeMemberFields(sec *Section, shape *model.Shape, exclude map[string]bool, depth int, seen map[string]bool) {
	for _, name := range shape.MemberNames() {
		if exclude[name] {
			continue
		}
		member := shape.Members[name]
		memberShape, err := shape.MemberShape(name)
		if err != nil {
			continue
		}
		sec.Bullet(depth, fieldLine(name, memberShape, member, shape.IsRequired(name)))
		writeNestedFields(sec, memberShape, depth+1, seen)
	}
}

func writeNestedFields(sec *Section, shape *model.Shape, depth int, seen map[string]bool) {
	switch shape.Type {
	case "structure":
		if seen[shape.Name()] {
			return
		}
		seen[shape.Name()] = true
		writeMemberFields(sec, shape, nil, depth, seen)
		delete(seen, shape.Name())
	case "list":
		if elem, err := shape.ElementShape(); err == nil && elem.Type == "structure" {
			writeNestedFields(sec, elem, depth, seen)
		}
	}
}

func fieldLine(name string, shape *model.Shape, member *model.Member, required bool) string {
	meta := italic(typeName(shape))
	if required {
		meta += ", required"
	}
	line := fmt.Sprintf("%s (%s)", bold(name), meta)
	doc := ""
	if member != nil {
		doc = member.Documentation
	}
	if doc == "" {
		doc = shape.Documentation
	}
	if doc != "" {
		line += " " + doc
	}
	if len(shape.Enum) > 0 {
		values := make([]string, len(shape.Enum))
		for i, v := range shape.Enum {
			values[i] = code(v)
		}
		line += " Valid values: " + strings.Join(values, ", ") + "."
	}
	return line
}
