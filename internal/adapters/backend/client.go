// Package backend talks to the main AI Trip backend (BACKEND_API_URL).
// Nothing in the request path calls it; readiness uses it to report reachability.
package backend

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"aitrip_ai/internal/adapters/observability"
)

const maxAttempts = 3

var ErrUnavailable = errors.New("backend: unavailable")

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
	ua   string
}

func New(base, userAgent string, rps int) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend url %q: want http(s)://host", base)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 5 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		ua:   userAgent,
	}, nil
}

// Ping succeeds when the backend answers with anything below 500.
// A 4xx still proves the service is up; auth and routing are its business.
func (c *Client) Ping(ctx context.Context) error {
	status, err := c.get(ctx, c.base+"/")
	if err != nil {
		return err
	}
	if status >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
	return nil
}

// get performs a GET with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After. It returns the final status code.
func (c *Client) get(ctx context.Context, url string) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("backend", "ping", status, time.Since(start)) }()

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Accept", "application/json")
		if c.ua != "" {
			req.Header.Set("User-Agent", c.ua)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			break
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = nil
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
		}
		return status, nil
	}

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return status, nil
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
