// Package api implements the low-level client the resource layer drives:
// model-bound REST calls with rate limiting, retries and waiters. Nothing
// above this package touches HTTP.
package api

import (
	"context"

	"github.com/stratus/ral-core/internal/model"
)

// Caller executes modeled operations. The resource layer depends on this
// interface only, so tests and alternative transports can stand in for the
// HTTP client.
type Caller interface {
	// CallOperation invokes a named operation with loose parameters and
	// returns the decoded response. The response carries a
	// ResponseMetadata member with the HTTP status code.
	CallOperation(ctx context.Context, operation string, params model.Params) (model.Params, error)

	// Model returns the service model the caller is bound to.
	Model() *model.ServiceModel
}

// ResponseMetadataKey indexes the metadata member injected into every
// decoded response.
const ResponseMetadataKey = "ResponseMetadata"

// StatusCodeKey indexes the HTTP status inside the response metadata.
const StatusCodeKey = "HTTPStatusCode"

// ResponseStatus extracts the HTTP status from a decoded response, with
// ok=false when the response carries no metadata.
func ResponseStatus(response model.Params) (int, bool) {
	meta, ok := response[ResponseMetadataKey].(model.Params)
	if !ok {
		return 0, false
	}
	switch v := meta[StatusCodeKey].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
