package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/jobtrend/internal/model"
	"github.com/amishk599/jobtrend/internal/ratelimit"
	"github.com/amishk599/jobtrend/internal/retry"
)

// DefaultTimeout bounds every single request.
const DefaultTimeout = 15 * time.Second

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 32 << 20

// Policy controls retries and the politeness pause after a success.
type Policy struct {
	Attempts   int           // total attempts, minimum 1
	Backoff    time.Duration // wait after a failed attempt
	Politeness time.Duration // minimum pause after a successful fetch
	Jitter     time.Duration // random extra pause in [0, Jitter)
}

// DefaultPolicy: three attempts two seconds apart, then a 2-4s pause on success.
var DefaultPolicy = Policy{
	Attempts:   retry.DefaultPolicy.Attempts,
	Backoff:    retry.DefaultPolicy.Backoff,
	Politeness: 2 * time.Second,
	Jitter:     2 * time.Second,
}

// Response is a fully read successful HTTP response.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GET requests with rotating identity headers, bounded retry
// and a politeness pause. Each source owns its own Client.
type Client struct {
	http    *http.Client
	headers HeaderFunc
	policy  Policy
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeaders replaces the header generator (default RandomHeaders).
func WithHeaders(h HeaderFunc) Option {
	return func(c *Client) { c.headers = h }
}

// WithPolicy replaces the retry and politeness policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLimiter makes every attempt wait on a per-host limiter first.
func WithLimiter(l *ratelimit.HostLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a Client with its own connection pool and a 15s timeout.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		headers: RandomHeaders,
		policy:  DefaultPolicy,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a GET for rawURL with params appended to its query string.
// Failed attempts are logged and retried per the policy; once they are all
// used up the returned error wraps model.ErrNoResponse. A successful fetch is
// followed by the politeness pause before returning.
func (c *Client) Fetch(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", rawURL, model.ErrNoResponse, err)
	}

	var resp *Response
	p := retry.Policy{Attempts: c.policy.Attempts, Backoff: c.policy.Backoff}
	err = retry.Do(ctx, p, c.logger.With("url", target), func(ctx context.Context, attempt int) error {
		c.logger.Info("fetching url", "url", target, "attempt", attempt)
		r, err := c.get(ctx, target)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		c.logger.Error("failed to fetch url",
			"url", target,
			"attempts", max(c.policy.Attempts, 1),
			"error", err,
		)
		return nil, fmt.Errorf("fetch %s: %w: %w", target, model.ErrNoResponse, err)
	}

	c.politenessDelay(ctx)
	return resp, nil
}

// get performs exactly one attempt.
func (c *Client) get(ctx context.Context, target string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, target); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	for k, vs := range c.headers() {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return nil, &model.HTTPError{
			StatusCode: res.StatusCode,
			RetryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status %d", res.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &Response{
		URL:        target,
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// politenessDelay sleeps for a random duration in [Politeness, Politeness+Jitter).
// Cancellation cuts the pause short; the response is still returned.
func (c *Client) politenessDelay(ctx context.Context) {
	d := c.policy.Politeness
	if c.policy.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(c.policy.Jitter)))
	}
	if d <= 0 {
		return
	}
	c.logger.Debug("politeness delay", "delay", d)
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
