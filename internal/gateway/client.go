package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultPageSize is used when Options.PageSize is zero. The back end's own
// default limit is 10, so listing always passes an explicit limit.
const DefaultPageSize = 100

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	PageSize  int
	RateLimit float64 // requests per second; 0 means unlimited
	Burst     int
}

// Client talks to the food-routing REST back end.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int
}

// NewClient creates a back end client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		pageSize:   pageSize,
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &transportError{op: op, err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &transportError{op: op, err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("op", op).Warn("backend request failed")
		return &transportError{op: op, err: err}
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("backend response")

	return c.decode(op, method, path, resp, result)
}

func (c *Client) decode(op, method, path string, resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return &transportError{op: op, err: err}
		}
	}
	return nil
}

// listAll walks skip/limit pages until the back end returns a short page.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	all := []T{}
	skip := 0
	for {
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(c.pageSize))

		var page []T
		if err := c.get(ctx, path, q, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
		skip += len(page)
	}
}

func itemPath(collection string, key int) string {
	return collection + strconv.Itoa(key)
}
