// Package graph is a thin HTTP binding for the Microsoft Graph REST API.
// It attaches bearer tokens, selects between the v1.0 and beta endpoint
// surfaces, and follows server-driven pagination. Retry policy does not
// live here: callers decide which operations are safe to repeat.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps reads of API responses to prevent unbounded memory use.
const maxResponseBytes = 10 << 20 // 10 MiB

// DefaultBaseURL is the production Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com"

// Version selects one of the two API surfaces. Several Teams resources
// (channels, messages, joined groups) are only served by the beta surface;
// this duality is a documented platform constraint, not a client choice.
type Version string

// API surfaces.
const (
	V1   Version = "v1.0"
	Beta Version = "beta"
)

// TokenSource supplies a currently-valid bearer token for each request.
type TokenSource interface {
	Bearer(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func(ctx context.Context) (string, error)

// Bearer implements TokenSource.
func (f TokenFunc) Bearer(ctx context.Context) (string, error) { return f(ctx) }

// Client issues requests against the Graph API.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient creates a Client. baseURL may be empty to use the production
// endpoint; tests point it at a local fake.
func NewClient(tokens TokenSource, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// URL joins the base URL, version segment, and resource path. It is also
// used by callers that must embed absolute resource references in request
// bodies (Graph's @odata.id member payloads).
func (c *Client) URL(version Version, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + "/" + string(version) + path
}

// do sends one request and returns the raw response body. Non-2xx statuses
// become *APIError, network failures *TransportError.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) ([]byte, error) {
	op := method + " " + rawURL

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("graph: marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("graph: create %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	bearer, err := c.tokens.Bearer(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// Get fetches a single object.
func Get[T any](ctx context.Context, c *Client, version Version, path string) (*T, error) {
	raw, err := c.do(ctx, http.MethodGet, c.URL(version, path), nil)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "GET " + path, Err: err}
	}
	return &out, nil
}

// listEnvelope is the Graph collection wrapper. NextLink, when present,
// is an absolute URL to the next page.
type listEnvelope[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// GetList fetches a paginated collection, following @odata.nextLink until
// absent and concatenating the pages in server order.
func GetList[T any](ctx context.Context, c *Client, version Version, path string) ([]T, error) {
	next := c.URL(version, path)

	var all []T
	for next != "" {
		raw, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}

		var page listEnvelope[T]
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &DecodeError{Op: "GET " + path, Err: err}
		}

		all = append(all, page.Value...)
		next = page.NextLink
	}
	return all, nil
}

// Post sends a POST with a JSON body and returns the raw response.
func (c *Client) Post(ctx context.Context, version Version, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.URL(version, path), body)
}

// PostJSON sends a POST and decodes the JSON response into T.
func PostJSON[T any](ctx context.Context, c *Client, version Version, path string, body any) (*T, error) {
	raw, err := c.Post(ctx, version, path, body)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "POST " + path, Err: err}
	}
	return &out, nil
}

// Put sends a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, version Version, path string, body any) error {
	_, err := c.do(ctx, http.MethodPut, c.URL(version, path), body)
	return err
}

// Patch sends a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, version Version, path string, body any) error {
	_, err := c.do(ctx, http.MethodPatch, c.URL(version, path), body)
	return err
}

// Delete sends a DELETE.
func (c *Client) Delete(ctx context.Context, version Version, path string) error {
	_, err := c.do(ctx, http.MethodDelete, c.URL(version, path), nil)
	return err
}
