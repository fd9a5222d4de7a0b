package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
)

// Ensure Client implements the collection remote at compile time.
var _ collection.Remote[catalog.Course] = (*Client)(nil)

// Client talks to the course catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

const (
	defaultAPIURL    = "http://127.0.0.1:8080"
	defaultUserAgent = "curator/0.1"
	requestTimeout   = 10 * time.Second
	coursesPath      = "/api/courses"
)

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry sets how often and how patiently reads are retried.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max(maxRetries, 0)
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent:  defaultUserAgent,
		maxRetries: 3,
		baseDelay:  250 * time.Millisecond,
		maxDelay:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// LoadAll fetches every course.
func (c *Client) LoadAll(ctx context.Context) ([]catalog.Course, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload courseList
	if err := c.do(ctx, http.MethodGet, coursesPath, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Courses, nil
}

// Create posts a new course and returns the stored value with its server id.
// Temporary local ids are never sent.
func (c *Client) Create(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	if c == nil {
		return catalog.Course{}, fmt.Errorf("client is nil")
	}
	if strings.HasPrefix(course.ID, collection.TempIDPrefix) {
		course.ID = ""
	}
	var out catalog.Course
	if err := c.do(ctx, http.MethodPost, coursesPath, course, &out); err != nil {
		return catalog.Course{}, err
	}
	return out, nil
}

// Update replaces the course stored under id.
func (c *Client) Update(ctx context.Context, id string, course catalog.Course) (catalog.Course, error) {
	if c == nil {
		return catalog.Course{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return catalog.Course{}, fmt.Errorf("course id required: %w", collection.ErrValidation)
	}
	var out catalog.Course
	if err := c.do(ctx, http.MethodPut, coursePath(id), course, &out); err != nil {
		return catalog.Course{}, err
	}
	return out, nil
}

// Delete removes the course stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("course id required: %w", collection.ErrValidation)
	}
	return c.do(ctx, http.MethodDelete, coursePath(id), nil, nil)
}

func coursePath(id string) string {
	return coursesPath + "/" + url.PathEscape(id)
}

// do sends one request. Only GETs are retried; a write is sent exactly once
// and retrying it is the caller's decision.
func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	reqURL := c.baseURL.JoinPath(path)

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if method == http.MethodGet && attempt < c.maxRetries {
				if werr := sleepContext(ctx, c.retryDelay(attempt+1, "")); werr != nil {
					return werr
				}
				continue
			}
			return fmt.Errorf("execute request: %w: %w", collection.ErrNetwork, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			err := decode(resp, dest)
			_ = resp.Body.Close()
			return err
		}

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		if method == http.MethodGet && retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if werr := sleepContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); werr != nil {
				return werr
			}
			continue
		}
		return newHTTPError(method, path, resp.StatusCode, respBody)
	}
}

func decode(resp *http.Response, dest any) error {
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func (c *Client) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		return min(retryAfter, c.maxDelay)
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	return min(delay, c.maxDelay)
}

func parseRetryAfterSeconds(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
