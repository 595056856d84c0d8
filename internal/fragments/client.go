package fragments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fragments/internal/auth"
	"fragments/internal/logging"
	"fragments/internal/services"
)

const userAgent = "fragments-cli"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// API lists the operations the rest of the client depends on.
type API interface {
	List(ctx context.Context, user auth.User) ([]Fragment, error)
	ListIDs(ctx context.Context, user auth.User) ([]string, error)
	Get(ctx context.Context, user auth.User, id string) (*Content, error)
	Info(ctx context.Context, user auth.User, id string) (*Fragment, error)
	Create(ctx context.Context, user auth.User, payload Payload) (*Fragment, error)
	Update(ctx context.Context, user auth.User, id string, payload Payload) (*Fragment, error)
	Delete(ctx context.Context, user auth.User, id string) error
	GetAs(ctx context.Context, user auth.User, id, extension string) (*Content, error)
}

// Client talks to the fragments service over HTTP.
type Client struct {
	baseURL   string
	http      HTTPDoer
	logger    *slog.Logger
	requestID func() string
	timeout   time.Duration
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout applies a whole-request timeout. Zero keeps the transport default.
// The timeout is set on a copy of the configured *http.Client regardless of
// option order; a custom HTTPDoer that is not an *http.Client owns its own
// deadlines and is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a logger; the client tags it with its component name.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "fragments-api")
		}
	}
}

// WithRequestIDs overrides the X-Request-Id generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// New creates a client rooted at baseURL (scheme and host, optional path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("fragments base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse fragments base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("fragments base url %q must be an absolute http(s) url", baseURL)
	}
	client := &Client{
		baseURL:   baseURL,
		http:      http.DefaultClient,
		logger:    logging.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.timeout > 0 {
		if hc, ok := client.http.(*http.Client); ok {
			copied := *hc
			copied.Timeout = client.timeout
			client.http = &copied
		}
	}
	return client, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string { return c.baseURL }

// List returns every fragment owned by user, with metadata expanded.
func (c *Client) List(ctx context.Context, user auth.User) ([]Fragment, error) {
	resp, err := c.do(ctx, user, "list", http.MethodGet, "/v1/fragments?expand=1", nil)
	if err != nil {
		return nil, err
	}
	var out listResponse
	if err := c.decodeJSON(ctx, resp, &out); err != nil {
		return nil, err
	}
	c.log(ctx).Debug("listed fragments", slog.Int("count", len(out.Fragments)))
	return out.Fragments, nil
}

// ListIDs returns the ids of every fragment owned by user.
func (c *Client) ListIDs(ctx context.Context, user auth.User) ([]string, error) {
	resp, err := c.do(ctx, user, "list-ids", http.MethodGet, "/v1/fragments", nil)
	if err != nil {
		return nil, err
	}
	var out listIDsResponse
	if err := c.decodeJSON(ctx, resp, &out); err != nil {
		return nil, err
	}
	return out.Fragments, nil
}

// Get fetches the fragment body in its stored type.
func (c *Client) Get(ctx context.Context, user auth.User, id string) (*Content, error) {
	ctx = services.WithFragmentID(ctx, id)
	path, err := c.fragmentPath(ctx, id, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, user, "get", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeContent(ctx, resp)
}

// Info fetches fragment metadata.
func (c *Client) Info(ctx context.Context, user auth.User, id string) (*Fragment, error) {
	ctx = services.WithFragmentID(ctx, id)
	path, err := c.fragmentPath(ctx, id, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, user, "info", http.MethodGet, path+"/info", nil)
	if err != nil {
		return nil, err
	}
	return c.decodeFragment(ctx, resp)
}

// Create stores a new fragment.
func (c *Client) Create(ctx context.Context, user auth.User, payload Payload) (*Fragment, error) {
	resp, err := c.do(ctx, user, "create", http.MethodPost, "/v1/fragments", &payload)
	if err != nil {
		return nil, err
	}
	fragment, err := c.decodeFragment(ctx, resp)
	if err != nil {
		return nil, err
	}
	c.log(ctx).Info("created fragment",
		slog.String(logging.FieldFragmentID, fragment.ID),
		slog.String("location", resp.header.Get("Location")),
	)
	return fragment, nil
}

// Update replaces the body of an existing fragment. The service rejects a
// payload whose type differs from the stored type.
func (c *Client) Update(ctx context.Context, user auth.User, id string, payload Payload) (*Fragment, error) {
	ctx = services.WithFragmentID(ctx, id)
	path, err := c.fragmentPath(ctx, id, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, user, "update", http.MethodPut, path, &payload)
	if err != nil {
		return nil, err
	}
	fragment, err := c.decodeFragment(ctx, resp)
	if err != nil {
		return nil, err
	}
	c.log(ctx).Info("updated fragment", slog.Int64("size", fragment.Size))
	return fragment, nil
}

// Delete removes a fragment. A nil error means the service confirmed deletion.
func (c *Client) Delete(ctx context.Context, user auth.User, id string) error {
	ctx = services.WithFragmentID(ctx, id)
	path, err := c.fragmentPath(ctx, id, "")
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, user, "delete", http.MethodDelete, path, nil); err != nil {
		return err
	}
	c.log(ctx).Info("deleted fragment")
	return nil
}

// GetAs fetches the fragment converted to the type named by extension
// (".html", ".jpg", ...).
func (c *Client) GetAs(ctx context.Context, user auth.User, id, extension string) (*Content, error) {
	ctx = services.WithFragmentID(ctx, id)
	path, err := c.fragmentPath(ctx, id, extension)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, user, "get-as", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeContent(ctx, resp)
}

func (c *Client) fragmentPath(ctx context.Context, id, extension string) (string, error) {
	var err error
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		err = errors.New("fragment id required")
	case extension != "" && (!strings.HasPrefix(extension, ".") || strings.ContainsAny(extension, "/?#")):
		err = fmt.Errorf("invalid extension %q", extension)
	}
	if err != nil {
		c.log(ctx).Error("fragments request rejected", logging.Error(err))
		return "", err
	}
	return "/v1/fragments/" + url.PathEscape(id) + extension, nil
}

type response struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, user auth.User, operation, method, path string, payload *Payload) (*response, error) {
	if user == nil {
		err := errors.New("authenticated user required")
		c.log(services.WithOperation(ctx, operation)).Error("fragments request rejected", logging.Error(err))
		return nil, err
	}
	requestID := c.requestID()
	ctx = services.WithOperation(services.WithRequestID(ctx, requestID), operation)
	logger := c.log(ctx)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload.Data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range user.AuthorizationHeaders() {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", payload.Type)
	}
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("User-Agent", userAgent)

	logger.Debug("sending request", slog.String("method", method), slog.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: method, Path: path, Err: err}
		logger.Error("fragments request failed", logging.Error(netErr))
		return nil, netErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
		logger.Error("fragments request failed", logging.Error(netErr))
		return nil, netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{
			Method:     method,
			Path:       path,
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Message:    errorMessage(data),
		}
		logger.Error("fragments request failed",
			slog.Int("status", resp.StatusCode),
			logging.Error(reqErr),
		)
		return nil, reqErr
	}

	return &response{method: method, path: path, header: resp.Header, body: data}, nil
}

func (c *Client) decodeJSON(ctx context.Context, resp *response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		wrapped := fmt.Errorf("%w: %s %s: %w", ErrDecode, resp.method, resp.path, err)
		c.log(ctx).Error("fragments response invalid", logging.Error(wrapped))
		return wrapped
	}
	return nil
}

func (c *Client) decodeFragment(ctx context.Context, resp *response) (*Fragment, error) {
	var envelope fragmentResponse
	if err := c.decodeJSON(ctx, resp, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fragment != nil {
		return envelope.Fragment, nil
	}
	// Some deployments return the bare fragment.
	var bare Fragment
	if err := c.decodeJSON(ctx, resp, &bare); err != nil {
		return nil, err
	}
	if bare.ID == "" {
		err := fmt.Errorf("%w: %s %s: response missing fragment", ErrDecode, resp.method, resp.path)
		c.log(ctx).Error("fragments response invalid", logging.Error(err))
		return nil, err
	}
	return &bare, nil
}

func (c *Client) decodeContent(ctx context.Context, resp *response) (*Content, error) {
	content, err := decodeContent(resp.header.Get("Content-Type"), resp.body)
	if err != nil {
		c.log(ctx).Error("fragments response invalid", logging.Error(err))
		return nil, err
	}
	c.log(ctx).Debug("decoded fragment content",
		slog.String("kind", content.Kind.String()),
		slog.String("content_type", content.Type),
		slog.Int("bytes", content.Size()),
	)
	return &content, nil
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, c.logger)
}

func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func errorMessage(body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		return strings.TrimSpace(payload.Error.Message)
	}
	return ""
}
