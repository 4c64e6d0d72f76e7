package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/observability"
)

// TokenSource supplies the session token attached to outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client performs JSON requests against the payment backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logrus.Entry
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets an overall request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.log = logger.WithField("component", "apiclient")
	}
}

// WithNewRelic records outbound calls as external segments of the transaction in the request context.
func WithNewRelic(app *newrelic.Application) Option {
	return func(c *Client) {
		if app == nil {
			return
		}
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.httpClient
		hc.Transport = newrelic.NewRoundTripper(base)
		c.httpClient = &hc
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logrus.NewEntry(logrus.StandardLogger()).WithField("component", "apiclient"),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of the client that authenticates with tokens.
func (c *Client) WithSession(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call.
type Request struct {
	// Operation names the call in logs and metrics. Defaults to the method.
	Operation string
	// Method defaults to GET.
	Method   string
	Endpoint string
	// Body is JSON-encoded when non-nil.
	Body   any
	Header http.Header
}

// Do executes req and decodes a 2xx JSON body into T.
//
// Non-2xx answers come back as *APIError, transport failures as ErrNetwork and
// bodies that do not fit T as *MalformedResponseError.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	operation := req.Operation
	if operation == "" {
		operation = strings.ToLower(method)
	}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		return out, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	observability.APIRequestDuration.WithLabelValues(operation, method).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.APIRequestsTotal.WithLabelValues(operation, method, "network_error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		c.log.WithError(err).WithField("operation", operation).Warn("backend request failed")
		return out, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	observability.APIRequestsTotal.WithLabelValues(operation, method, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, &NetworkError{Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"operation":   operation,
		"method":      method,
		"endpoint":    req.Endpoint,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &MalformedResponseError{Operation: operation, Err: err}
	}
	if err := c.validateValue(out); err != nil {
		return out, &MalformedResponseError{Operation: operation, Err: err}
	}

	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.Endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.log.WithError(err).Warn("could not read session token")
		} else if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(key)] = values
	}

	return httpReq, nil
}

// validateValue runs struct validation on v, or on every element when v is a slice.
func (c *Client) validateValue(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.New("empty body")
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return c.validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := c.validateValue(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
