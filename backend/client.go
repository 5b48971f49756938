package backend

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
)

// DefaultBaseURL is where the console's CRUD backend listens in development.
const DefaultBaseURL = "http://localhost:3000/api"

// StatusError is returned for any non-2xx answer of the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks JSON to the fleet backend (drivers, vehicles, shifts, media).
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// itemPath escapes id so it stays a single path segment.
func itemPath(resource Resource, id string) string {
	return "/" + string(resource) + "/" + url.PathEscape(id)
}

// List fetches every item of resource.
func List[T any](ctx context.Context, c *Client, resource Resource) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, "/"+string(resource), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Get[T any](ctx context.Context, c *Client, resource Resource, id string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, itemPath(resource, id), nil, &out)
	return out, err
}

func Create[T any](ctx context.Context, c *Client, resource Resource, item T) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, "/"+string(resource), item, &out)
	return out, err
}

func Update[T any](ctx context.Context, c *Client, resource Resource, id string, item T) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPut, itemPath(resource, id), item, &out)
	return out, err
}

func Delete(ctx context.Context, c *Client, resource Resource, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(resource, id), nil, nil)
}
