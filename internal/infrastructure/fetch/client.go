package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"NewsBriefing/internal/ports"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "newsbriefing/1.0"
	maxBodyBytes     = 16 << 20
)

// FetchError wraps any transport failure or non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Failure categories reported by Category.
const (
	CategoryTimeout   = "timeout"
	CategoryStatus    = "status"
	CategoryTransport = "transport"
)

// Category buckets err into timeout, status or transport.
func Category(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var ferr *FetchError
	if errors.As(err, &ferr) {
		if ferr.Timeout() {
			return CategoryTimeout
		}
		if ferr.StatusCode != 0 {
			return CategoryStatus
		}
	}
	return CategoryTransport
}

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	SearchEndpoint    string
	SearchFallbackURL string
	SearchAPIKey      string
	HTTPClient        *http.Client
}

// Client performs every outbound GET/POST of the pipeline. It never retries.
type Client struct {
	http        *http.Client
	userAgent   string
	searchURL   string
	fallbackURL string
	apiKey      string
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient builds a client; zero options fall back to sane defaults.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		http:        client,
		userAgent:   ua,
		searchURL:   opts.SearchEndpoint,
		fallbackURL: opts.SearchFallbackURL,
		apiKey:      opts.SearchAPIKey,
	}
}

// Text returns the response body as a string.
func (c *Client) Text(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON decodes the response body into generic values; numbers stay json.Number.
func (c *Client) JSON(ctx context.Context, url string) (any, error) {
	body, err := c.get(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	return decodeJSON(url, body)
}

// Peek fetches at most limit bytes without judging the status code.
func (c *Client) Peek(ctx context.Context, url string, limit int64) (int, []byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return resp.StatusCode, nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	url := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func decodeJSON(url string, body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decode json: %w", err)}
	}
	return v, nil
}
