package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/domain"
	"github.com/campusfix/hostel-desk/internal/observability"
)

// RequestIDHeader carries a per-call id so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// SessionProvider exposes the current session. Current must not block or fail.
type SessionProvider interface {
	Current() (domain.Session, bool)
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8080".
	BaseURL string
	// HTTPClient is used for all requests. If nil, one is built with Timeout.
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero keeps the transport default.
	Timeout time.Duration
	// Sessions supplies the bearer credential. Nil means every call is anonymous.
	Sessions SessionProvider
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// Client is the single path every view uses to talk to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionProvider
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Payload is a normalized response body: parsed JSON when the body was JSON,
// otherwise the raw text.
type Payload struct {
	StatusCode int
	Header     http.Header
	Raw        []byte
	JSON       any
	isJSON     bool
}

// IsJSON reports whether the body parsed as JSON.
func (p *Payload) IsJSON() bool {
	return p != nil && p.isJSON
}

// Text returns the body as text.
func (p *Payload) Text() string {
	if p == nil {
		return ""
	}
	return string(p.Raw)
}

// Decode unmarshals the already-read body into v.
func (p *Payload) Decode(v any) error {
	if p == nil || !p.isJSON {
		return fmt.Errorf("response body is not JSON")
	}
	if err := json.Unmarshal(p.Raw, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// NewClient validates the configuration and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("gateway: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		sessions:   cfg.Sessions,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// URL joins endpoint to the base URL with exactly one slash between them.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + NormalizeEndpoint(endpoint)
}

// NormalizeEndpoint forces exactly one leading slash.
func NormalizeEndpoint(endpoint string) string {
	return "/" + strings.TrimLeft(strings.TrimSpace(endpoint), "/")
}

// WithQuery appends encoded query values to endpoint. Empty values leave it untouched.
func WithQuery(endpoint string, query url.Values) string {
	if len(query) == 0 {
		return endpoint
	}
	return endpoint + "?" + query.Encode()
}

// Request performs one HTTP call. It never retries. A nil body sends no body;
// []byte and json.RawMessage bodies are sent verbatim, anything else is JSON-encoded.
// Caller headers are merged over the defaults.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, headers http.Header) (*Payload, error) {
	path := NormalizeEndpoint(endpoint)

	bodyReader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set(RequestIDHeader, uuid.NewString())
	authenticated := false
	if c.sessions != nil {
		if session, ok := c.sessions.Current(); ok && session.Authenticated() {
			request.Header.Set("Authorization", "Bearer "+session.Credential)
			authenticated = true
		}
	}
	for key, values := range headers {
		request.Header.Del(key)
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.metrics.RecordError(path, method, "NETWORK")
		c.logger.Debug("gateway request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		c.metrics.RecordError(path, method, "NETWORK")
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read response body: %w", err)}
	}
	elapsed := time.Since(started)
	c.metrics.RecordRequest(path, method, response.StatusCode, elapsed)
	c.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", elapsed),
		zap.Bool("authenticated", authenticated),
		zap.String("request_id", request.Header.Get(RequestIDHeader)))

	payload := normalize(response, raw)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return payload, classify(response.StatusCode, errorMessage(payload), method, path)
	}
	return payload, nil
}

// Do performs a call and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := c.Request(ctx, method, endpoint, body, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return payload.Decode(out)
}

func encodeBody(body any) (io.Reader, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(typed), nil
	case json.RawMessage:
		return bytes.NewReader(typed), nil
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode request body: %w", err)
		}
		return bytes.NewReader(encoded), nil
	}
}

func normalize(response *http.Response, raw []byte) *Payload {
	payload := &Payload{
		StatusCode: response.StatusCode,
		Header:     response.Header,
		Raw:        raw,
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		payload.JSON = parsed
		payload.isJSON = true
	}
	return payload
}

func errorMessage(payload *Payload) string {
	switch parsed := payload.JSON.(type) {
	case map[string]any:
		if msg := stringField(parsed, "message"); msg != "" {
			return msg
		}
		if nested, ok := parsed["error"].(map[string]any); ok {
			if msg := stringField(nested, "message"); msg != "" {
				return msg
			}
		}
	case string:
		if strings.TrimSpace(parsed) != "" {
			return parsed
		}
	}
	if text := strings.TrimSpace(payload.Text()); text != "" {
		return text
	}
	return fmt.Sprintf("API error: %d %s", payload.StatusCode, http.StatusText(payload.StatusCode))
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
