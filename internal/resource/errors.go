package resource

import "fmt"

// NoLoadError reports a data access on a resource type that defines no load
// action. Such resources only carry data when it arrived with the response
// that produced them.
type NoLoadError struct {
	Resource string
}

func (e *NoLoadError) Error() string {
	return fmt.Sprintf("resource %s has no load action and no data", e.Resource)
}

// MissingIdentifierError reports handle construction without a required
// identifier value.
type MissingIdentifierError struct {
	Resource   string
	Identifier string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("resource %s requires identifier %q", e.Resource, e.Identifier)
}
