// Package feeds retrieves raw supplier payloads. Two shapes exist today: a
// paginated JSON items endpoint and a full-feed CSV export, both credentialed
// through query-string parameters.
package feeds

import (
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

	"golang.org/x/time/rate"
)

var (
	// ErrMissingConfig marks an operation that cannot run because supplier
	// credentials are absent from the environment.
	ErrMissingConfig = errors.New("missing provider configuration")
	// ErrUpstream classifies retryable supplier failures (non-2xx, timeout).
	ErrUpstream = errors.New("upstream fetch failed")
)

// DefaultTimeout bounds every supplier call; a timeout surfaces as ErrUpstream
// rather than a hang.
const DefaultTimeout = 30 * time.Second

type Credentials struct {
	UserID string
	Token  string
}

func (c Credentials) ok() bool { return c.UserID != "" && c.Token != "" }

// Client wraps the outbound HTTP client with a shared throttle so bulk syncs
// stay inside supplier rate limits.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
	Timeout time.Duration
}

func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{},
		Limiter: rate.NewLimiter(rate.Limit(5), 5),
		Timeout: DefaultTimeout,
	}
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(body))
	}
	resp.Body = io.NopCloser(strings.NewReader(string(body)))
	return resp, nil
}

// snippet keeps the first 200 characters of an error body for diagnostics.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// FetchJSONItems pulls one page of the JSON feed. The supplier has shipped the
// product array under several top-level keys over time (items, productos,
// data) and occasionally as a bare array; the first non-empty match wins.
func (c *Client) FetchJSONItems(ctx context.Context, feedURL string, creds Credentials, limit, offset int) ([]map[string]any, error) {
	if !creds.ok() {
		return nil, fmt.Errorf("%w: user id and token required", ErrMissingConfig)
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("user_id", creds.UserID)
	q.Set("token", creds.Token)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrUpstream, err)
	}
	return unwrapItems(payload), nil
}

func unwrapItems(payload any) []map[string]any {
	var arr []any
	switch v := payload.(type) {
	case []any:
		arr = v
	case map[string]any:
		for _, key := range []string{"items", "productos", "data"} {
			if a, ok := v[key].([]any); ok && len(a) > 0 {
				arr = a
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// FetchCSV pulls the full CSV export as raw text.
func (c *Client) FetchCSV(ctx context.Context, feedURL string, creds Credentials) (string, error) {
	if !creds.ok() {
		return "", fmt.Errorf("%w: user id and token required", ErrMissingConfig)
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("user_id", creds.UserID)
	q.Set("token", creds.Token)
	u.RawQuery = q.Encode()

	resp, err := c.get(ctx, u.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return string(body), nil
}
