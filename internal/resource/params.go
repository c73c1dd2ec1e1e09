package resource

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

// indexRe matches a trailing list marker on a target segment: "Entries[]",
// "Entries[2]" or "Entries[*]".
var indexRe = regexp.MustCompile(`\[([0-9]*|\*)\]$`)

// CreateRequestParameters renders modeled parameter mappings against a
// handle into request parameters. Identifier sources read the handle's
// identifiers, data sources read its data (loading on demand), constant
// sources use the definition's value and input sources are left to the
// caller. Batch callers pass index to address list positions; nil appends.
func CreateRequestParameters(ctx context.Context, parent *Handle, mappings []*model.Parameter, params model.Params, index *int) (model.Params, error) {
	if params == nil {
		params = model.Params{}
	}
	for _, p := range mappings {
		var value any
		switch p.Source {
		case model.SourceIdentifier:
			v, ok := parent.Identifier(p.Name)
			if !ok {
				return nil, fmt.Errorf("resource %s has no identifier %q", parent.model.Name, p.Name)
			}
			value = v
		case model.SourceData:
			v, err := parent.dataMember(ctx, p.Path)
			if err != nil {
				return nil, err
			}
			value = v
		case model.SourceString, model.SourceInteger, model.SourceBoolean:
			value = p.Value
		case model.SourceInput:
			continue
		default:
			return nil, fmt.Errorf("unsupported parameter source %q", p.Source)
		}
		BuildParamStructure(params, p.Target, value, index)
	}
	return params, nil
}

// BuildParamStructure sets value at a dotted target path inside params,
// growing nested maps and lists as needed. "Part[]" appends to a list
// unless index pins a position, "Part[2]" pins one explicitly and
// "Part[*]" behaves like "Part[]".
func BuildParamStructure(params model.Params, target string, value any, index *int) {
	pos := params
	hasIdx := index != nil
	curIdx := 0
	if hasIdx {
		curIdx = *index
	}

	parts := strings.Split(target, ".")
	for i, part := range parts {
		last := i == len(parts)-1
		m := indexRe.FindStringSubmatch(part)
		if m == nil {
			if last {
				pos[part] = value
				return
			}
			next, ok := pos[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				pos[part] = next
			}
			pos = next
			continue
		}

		part = part[:len(part)-len(m[0])]
		if m[1] != "" && m[1] != "*" {
			explicit, _ := strconv.Atoi(m[1])
			curIdx = explicit
			hasIdx = true
		}

		list, ok := pos[part].([]any)
		if !ok {
			list = []any{}
		}
		if !hasIdx {
			curIdx = len(list)
			hasIdx = true
		}
		for len(list) <= curIdx {
			list = append(list, map[string]any{})
		}
		pos[part] = list

		if last {
			list[curIdx] = value
			return
		}
		next, ok := list[curIdx].(map[string]any)
		if !ok {
			next = map[string]any{}
			list[curIdx] = next
		}
		pos = next
	}
}
