package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stratus/ral-core/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config configures the service client behavior.
type Config struct {
	// Endpoint is the base URL for all requests.
	Endpoint string

	// Auth configures authentication.
	Auth AuthConfig

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// MaxRetries for failed requests (default: 3).
	MaxRetries int

	// RateLimit requests per second (default: 10).
	RateLimit float64

	// RateBurst maximum burst size (default: 5).
	RateBurst int

	// Headers to add to all requests.
	Headers map[string]string

	// UserAgent string (default: "RAL-Core/1.0").
	UserAgent string

	// Transport allows injecting a custom HTTP transport (for tests/stubs).
	Transport http.RoundTripper

	// Logger for request diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a client config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RateLimit:  10.0,
		RateBurst:  5,
		UserAgent:  "RAL-Core/1.0",
		Headers:    make(map[string]string),
	}
}

// =============================================================================
// SERVICE CLIENT
// =============================================================================

// Client executes modeled operations over HTTP with rate limiting and retry.
// It binds loose parameters onto the wire using each operation's input shape:
// uri members fill the URI template, querystring members become query
// parameters, header members become headers and everything else is the JSON
// body.
type Client struct {
	config      *Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	service     *model.ServiceModel
	logger      *zap.Logger
}

var _ Caller = (*Client)(nil)

// NewClient creates a client bound to a service model.
func NewClient(service *model.ServiceModel, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "RAL-Core/1.0"
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		service:     service,
		logger:      logger,
	}
}

// Model returns the service model the client is bound to.
func (c *Client) Model() *model.ServiceModel {
	return c.service
}

// Endpoint returns the configured base URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// CallOperation invokes a named operation and returns the decoded response.
// The response always carries ResponseMetadata with the HTTP status code and
// the request id reported by the service.
func (c *Client) CallOperation(ctx context.Context, operation string, params model.Params) (model.Params, error) {
	if c.config.Endpoint == "" {
		return nil, fmt.Errorf("client for service %s has no endpoint", c.service.ServiceID())
	}
	op, err := c.service.Operation(operation)
	if err != nil {
		return nil, err
	}
	req, err := c.buildRequest(op, params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("calling operation",
		zap.String("service", c.service.ServiceID()),
		zap.String("operation", operation))

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

// =============================================================================
// REQUEST BINDING
// =============================================================================

// request is a bound HTTP request ready to execute.
type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	headers   map[string]string
	body      []byte
}

// buildRequest binds loose parameters onto the operation's HTTP layout.
func (c *Client) buildRequest(op *model.Operation, params model.Params) (*request, error) {
	input, err := op.InputShape()
	if err != nil {
		return nil, err
	}
	if input == nil {
		if len(params) > 0 {
			return nil, fmt.Errorf("operation %s accepts no parameters", op.Name())
		}
		return &request{
			operation: op.Name(),
			method:    op.HTTP.Method,
			path:      op.HTTP.RequestURI,
		}, nil
	}

	remaining := make(model.Params, len(params)+1)
	for k, v := range params {
		remaining[k] = v
	}

	// A generated token satisfies idempotent operations when the caller
	// leaves the token member unset.
	if token := op.IdempotencyToken; token != "" {
		if _, ok := remaining[token]; !ok {
			remaining[token] = uuid.NewString()
		}
	}

	for _, name := range input.Required {
		if _, ok := remaining[name]; !ok {
			return nil, fmt.Errorf("operation %s missing required parameter %q", op.Name(), name)
		}
	}

	req := &request{
		operation: op.Name(),
		method:    op.HTTP.Method,
		path:      op.HTTP.RequestURI,
		query:     url.Values{},
		headers:   make(map[string]string),
	}
	body := make(map[string]any)

	for _, name := range input.MemberNames() {
		member := input.Members[name]
		value, ok := remaining[name]
		if !ok {
			if member.Location == "uri" {
				return nil, fmt.Errorf("operation %s missing uri parameter %q", op.Name(), name)
			}
			continue
		}
		delete(remaining, name)

		switch member.Location {
		case "uri":
			placeholder := "{" + name + "}"
			if !strings.Contains(req.path, placeholder) {
				return nil, fmt.Errorf("operation %s uri has no placeholder for %q", op.Name(), name)
			}
			req.path = strings.ReplaceAll(req.path, placeholder, url.PathEscape(scalarString(value)))
		case "querystring":
			req.query.Set(wireName(member, name), scalarString(value))
		case "header":
			req.headers[wireName(member, name)] = scalarString(value)
		default:
			body[name] = value
		}
	}

	if len(remaining) > 0 {
		unknown := make([]string, 0, len(remaining))
		for name := range remaining {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("operation %s does not accept parameters: %s", op.Name(), strings.Join(unknown, ", "))
	}

	if len(body) > 0 {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		req.body = data
		req.headers["Content-Type"] = "application/json"
	}
	return req, nil
}

// wireName picks the on-wire name for a query or header member.
func wireName(member *model.Member, name string) string {
	if member.LocationName != "" {
		return member.LocationName
	}
	return name
}

// scalarString renders a parameter value for a URI, query or header slot.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// JSON decoding hands back float64 for whole numbers too.
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// =============================================================================
// EXECUTION
// =============================================================================

// response holds a raw HTTP response.
type response struct {
	statusCode int
	headers    http.Header
	body       []byte
}

// do executes a bound request with rate limiting and retry.
func (c *Client) do(ctx context.Context, req *request) (*response, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, err := c.doOnce(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Check if retryable
		if !isRetryable(err) {
			return nil, err
		}

		c.logger.Debug("retrying operation",
			zap.String("operation", req.operation),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		// Exponential backoff
		backoff := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doOnce executes a single request attempt.
func (c *Client) doOnce(ctx context.Context, req *request) (*response, error) {
	fullURL := c.config.Endpoint
	if req.path != "" {
		fullURL = strings.TrimSuffix(fullURL, "/") + "/" + strings.TrimPrefix(req.path, "/")
	}
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if len(req.body) > 0 {
		bodyReader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	if err := c.config.Auth.Apply(httpReq); err != nil {
		return nil, fmt.Errorf("apply auth: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp, body)
	}

	return &response{
		statusCode: resp.StatusCode,
		headers:    resp.Header,
		body:       body,
	}, nil
}

// =============================================================================
// RESPONSE DECODING
// =============================================================================

// RequestIDKey indexes the request id inside the response metadata.
const RequestIDKey = "RequestId"

// decodeResponse turns a raw response into loose parameters and attaches
// response metadata.
func decodeResponse(resp *response) (model.Params, error) {
	out := model.Params{}
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	out[ResponseMetadataKey] = model.Params{
		StatusCodeKey: resp.statusCode,
		RequestIDKey:  resp.headers.Get("X-Request-Id"),
	}
	return out, nil
}

// wireError is the error body shape services respond with.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeError builds an APIError from a non-2xx response.
func decodeError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && (we.Code != "" || we.Message != "") {
		apiErr.Code = we.Code
		apiErr.Message = we.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
