package model

import (
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Params is a loose parameter or payload map, the currency of the whole
// layer: request parameters, decoded responses and resource data all use it.
type Params = map[string]any

// ToJSONPath translates a definition path into JSONPath syntax.
// Definition paths are dotted member names where "Name[]" flattens a list
// and "Name[0]" indexes one: "Queues[].Url" becomes "$.Queues[*].Url".
func ToJSONPath(path string) string {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if strings.HasSuffix(part, "[]") {
			parts[i] = strings.TrimSuffix(part, "[]") + "[*]"
		}
	}
	return "$." + strings.Join(parts, ".")
}

// SearchPath evaluates a definition path against decoded JSON data.
// A path that matches nothing yields nil rather than an error, so callers
// can treat absent members as unset. An empty path yields data unchanged.
func SearchPath(path string, data any) any {
	if path == "" {
		return data
	}
	value, err := jsonpath.Get(ToJSONPath(path), data)
	if err != nil {
		return nil
	}
	return value
}

// SearchPathList evaluates a path expected to yield a list. Scalar results
// are wrapped, nil stays nil.
func SearchPathList(path string, data any) []any {
	value := SearchPath(path, data)
	if value == nil {
		return nil
	}
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}

// PathReturnsList reports whether a path flattens a list ("[]" or "[*]"
// appears in any segment), which marks multi-valued extraction.
func PathReturnsList(path string) bool {
	return strings.Contains(path, "[]") || strings.Contains(path, "[*]")
}
