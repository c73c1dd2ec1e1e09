// Package model parses the declarative JSON service definitions that drive
// the resource layer and the documentation generator.
//
// A service ships three definition files per API version:
//
//	api.json       - operations, shapes, HTTP bindings, pagination
//	resources.json - resource types: identifiers, actions, relations, collections
//	waiters.json   - polling waiter configurations
//
// The model layer is read-only. It resolves shape references, derives
// resource attributes from shapes, and applies the member rename map that
// keeps every resource's namespace collision-free.
package model
