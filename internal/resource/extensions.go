package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stratus/ral-core/internal/model"
)

// ExtensionFunc implements an injected member: custom behavior attached to
// a resource type beyond what its definition models.
type ExtensionFunc func(ctx context.Context, h *Handle, params model.Params) (any, error)

type extensionKey struct {
	service  string
	resource string
	member   string
}

var (
	extensionsMu sync.RWMutex
	extensions   = make(map[extensionKey]ExtensionFunc)
)

// RegisterExtension injects a custom member onto a resource type, usually
// from an init function. An empty resourceType targets the service root.
// Registering the same member twice panics so conflicts surface at startup;
// a member that shadows a modeled name panics when the type is first built.
func RegisterExtension(service, resourceType, member string, fn ExtensionFunc) {
	if fn == nil {
		panic(fmt.Sprintf("extension %s.%s.%s registered with nil func", service, resourceType, member))
	}
	extensionsMu.Lock()
	defer extensionsMu.Unlock()
	key := extensionKey{service: service, resource: resourceType, member: member}
	if _, exists := extensions[key]; exists {
		panic(fmt.Sprintf("extension already registered: %s.%s.%s", service, resourceType, member))
	}
	extensions[key] = fn
}

func extensionFor(service, resourceType, member string) (ExtensionFunc, bool) {
	extensionsMu.RLock()
	defer extensionsMu.RUnlock()
	fn, ok := extensions[extensionKey{service: service, resource: resourceType, member: member}]
	return fn, ok
}

// extensionMembers lists injected member names for one resource type,
// sorted.
func extensionMembers(service, resourceType string) []string {
	extensionsMu.RLock()
	defer extensionsMu.RUnlock()
	var names []string
	for key := range extensions {
		if key.service == service && key.resource == resourceType {
			names = append(names, key.member)
		}
	}
	sort.Strings(names)
	return names
}

// CallExtension invokes an injected member on this handle.
func (h *Handle) CallExtension(ctx context.Context, member string, params model.Params) (any, error) {
	resourceType := h.model.Name
	if h.root {
		resourceType = ""
	}
	fn, ok := extensionFor(h.meta.Context.ServiceName, resourceType, member)
	if !ok {
		return nil, fmt.Errorf("resource %s has no injected member %q", h.model.Name, member)
	}
	return fn(ctx, h, params)
}
