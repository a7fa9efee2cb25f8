package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/task"
)

// Ensure Client implements api.Service at compile time.
var _ api.Service = (*Client)(nil)

const (
	// DefaultAddr is where `tally serve` listens and the client connects
	// when no address is configured.
	DefaultAddr      = "127.0.0.1:7490"
	defaultUserAgent = "tally/0.1"
	requestTimeout   = 10 * time.Second
)

// Client talks to a task API served by NewHandler.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewClient builds a Client for baseURL, which may omit the scheme.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create posts a new task.
func (c *Client) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	var created task.Task
	if err := c.do(ctx, http.MethodPost, tasksPath, draft, &created); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// Update replaces the task with t.ID.
func (c *Client) Update(ctx context.Context, t task.Task) (task.Task, error) {
	var updated task.Task
	if err := c.do(ctx, http.MethodPut, taskPath(t.ID), t, &updated); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// Delete removes the task with id.
func (c *Client) Delete(ctx context.Context, id int64) (int64, error) {
	var payload deleteResponse
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &payload); err != nil {
		return 0, err
	}
	return payload.ID, nil
}

func taskPath(id int64) string {
	return tasksPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		return fmt.Errorf("%w: %v", api.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return responseError(method, path, resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError turns an error answer back into the error the service
// returned on the server side where that is possible.
func responseError(method, path string, resp *http.Response) error {
	var payload errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return api.ErrTransient
	case resp.StatusCode == http.StatusBadRequest && payload.Field != "":
		return &task.ValidationError{Field: payload.Field, Message: payload.Error}
	case payload.Error != "":
		return fmt.Errorf("api %s %s returned status %d: %s", method, path, resp.StatusCode, payload.Error)
	default:
		return fmt.Errorf("api %s %s returned status %d", method, path, resp.StatusCode)
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
