package api

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

	"go.uber.org/zap"
)

// Collection names served by the backend
const (
	CollectionTasks     = "tasks"
	CollectionHabits    = "habits"
	CollectionSchedules = "schedules"
)

// Gateway operations
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Client performs CRUD calls against one collection of the backend.
// A Client holds no per-request state and is safe for concurrent use.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *zap.Logger
	observer   func(Call)
}

// Call describes one finished gateway call, for observers
type Call struct {
	Collection   string
	Operation    string // one of the Op constants
	Method       string
	URL          string
	Status       int // 0 when no response was received
	RequestSize  int64
	ResponseSize int64
	Duration     time.Duration
	Err          error
}

// Option configures a Client
type Option func(*Client)

// WithCollection binds the client to a collection other than "tasks"
func WithCollection(name string) Option {
	return func(c *Client) {
		c.collection = strings.Trim(name, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug output
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers fn to run after every call, successful or not.
// fn runs on the calling goroutine and must be safe for concurrent use.
func WithObserver(fn func(Call)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// New creates a client for baseURL. The base URL is fixed for the lifetime of the client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: CollectionTasks,
		// No timeout: a request runs until it completes or the caller's context ends
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collection returns a copy of the client bound to another collection
func (c *Client) Collection(name string) *Client {
	clone := *c
	clone.collection = strings.Trim(name, "/")
	return &clone
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string { return c.baseURL }

// Name returns the collection the client is bound to
func (c *Client) Name() string { return c.collection }

// List fetches the whole collection (GET /{collection})
func (c *Client) List(ctx context.Context) (any, error) {
	return c.do(ctx, OpList, http.MethodGet, c.collectionURL(), nil)
}

// Create posts payload to the collection (POST /{collection})
func (c *Client) Create(ctx context.Context, payload any) (any, error) {
	return c.do(ctx, OpCreate, http.MethodPost, c.collectionURL(), payload)
}

// Get fetches one resource (GET /{collection}/{id})
func (c *Client) Get(ctx context.Context, id string) (any, error) {
	return c.do(ctx, OpGet, http.MethodGet, c.resourceURL(id), nil)
}

// Update replaces one resource (PUT /{collection}/{id})
func (c *Client) Update(ctx context.Context, id string, payload any) (any, error) {
	return c.do(ctx, OpUpdate, http.MethodPut, c.resourceURL(id), payload)
}

// Remove deletes one resource (DELETE /{collection}/{id}).
// The result is nil when the server answers with an empty body.
func (c *Client) Remove(ctx context.Context, id string) (any, error) {
	return c.do(ctx, OpRemove, http.MethodDelete, c.resourceURL(id), nil)
}

func (c *Client) collectionURL() string {
	return c.baseURL + "/" + c.collection
}

// resourceURL inserts id as a single path segment without validating it
func (c *Client) resourceURL(id string) string {
	return c.collectionURL() + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, target string, payload any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var data []byte
	hasBody := method == http.MethodPost || method == http.MethodPut
	if hasBody {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var bodyReader io.Reader
	if hasBody {
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	call := Call{
		Collection:  c.collection,
		Operation:   op,
		Method:      method,
		URL:         target,
		RequestSize: int64(len(data)),
	}
	start := time.Now()

	result, err := c.roundTrip(req, &call)

	call.Duration = time.Since(start)
	call.Err = err
	if c.observer != nil {
		c.observer(call)
	}
	return result, err
}

// roundTrip sends req and fills in the status and response size of call
func (c *Client) roundTrip(req *http.Request, call *Call) (any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", call.Method),
			zap.String("url", call.URL),
			zap.Error(err),
		)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	call.Status = resp.StatusCode
	text, err := io.ReadAll(resp.Body)
	call.ResponseSize = int64(len(text))

	c.logger.Debug("request completed",
		zap.String("method", call.Method),
		zap.String("url", call.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(text)),
	)

	if err != nil {
		if IsSuccessStatus(resp.StatusCode) {
			return nil, transportError(fmt.Errorf("failed to read response body: %w", err))
		}
		// Detail extraction is best effort: an unreadable body leaves it absent
		text = nil
	}
	return handleResponse(resp.StatusCode, text)
}

// handleResponse normalizes a response into a decoded payload or an *Error
func handleResponse(status int, text []byte) (any, error) {
	if IsSuccessStatus(status) {
		if len(text) == 0 {
			return nil, nil
		}
		var result any
		if err := json.Unmarshal(text, &result); err != nil {
			return nil, decodeError(status, err)
		}
		return result, nil
	}

	var detail any
	if err := json.Unmarshal(text, &detail); err != nil {
		detail = nil
	}
	return nil, statusError(status, detail)
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
