package hellopeter

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/MatthewGuile/hellopeter-cli/internal/adapters/observability"
)

// ErrNotFound marks a 404 from the platform: the business (or endpoint) does
// not exist. Never retried.
var ErrNotFound = errors.New("hellopeter: not found")

// StatusError is any non-2xx, non-404 terminal HTTP outcome.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hellopeter: status %d", e.Code)
	}
	return fmt.Sprintf("hellopeter: status %d: %s", e.Code, e.Body)
}

// Config carries the tunables the client needs; defaults mirror the
// platform's published limits (1 req/s, 3 retries, doubling backoff).
type Config struct {
	ReviewsBase   string
	StatsBase     string
	RequestDelay  time.Duration
	MaxRetries    int
	BackoffBase   time.Duration
	BackoffFactor float64
	UserAgent     string
}

type Client struct {
	reviewsBase   string
	statsBase     string
	hc            *http.Client
	rl            *rate.Limiter
	maxRetries    int
	backoffBase   time.Duration
	backoffFactor float64
	userAgent     string
}

func New(cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 2
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	return &Client{
		reviewsBase:   strings.TrimRight(cfg.ReviewsBase, "/"),
		statsBase:     strings.TrimRight(cfg.StatsBase, "/"),
		hc:            &http.Client{Timeout: 30 * time.Second},
		rl:            rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		maxRetries:    cfg.MaxRetries,
		backoffBase:   cfg.BackoffBase,
		backoffFactor: cfg.BackoffFactor,
		userAgent:     cfg.UserAgent,
	}
}

// ---- Public API ----

// ReviewPage fetches one page of reviews for a business.
func (c *Client) ReviewPage(ctx context.Context, slug string, page int) (ReviewPage, error) {
	u := fmt.Sprintf("%s/%s/reviews?%s", c.reviewsBase, url.PathEscape(slug),
		url.Values{"page": {strconv.Itoa(page)}, "count": {"10"}}.Encode())
	var out ReviewPage
	if err := c.get(ctx, "reviews", u, &out); err != nil {
		return ReviewPage{}, err
	}
	return out, nil
}

// TotalPages reads the platform-reported last-page count via a minimal
// first-page probe. An HTTP-level failure (404 included) yields 0 with no
// error: callers treat 0 as "nothing to fetch". Transport failures after
// retry exhaustion are returned.
func (c *Client) TotalPages(ctx context.Context, slug string) (int, error) {
	pg, err := c.ReviewPage(ctx, slug, 1)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("slug", slug).Msg("business not found")
			return 0, nil
		}
		var se *StatusError
		if errors.As(err, &se) {
			log.Error().Str("slug", slug).Int("status", se.Code).Msg("total pages probe failed")
			return 0, nil
		}
		return 0, err
	}
	return pg.LastPage, nil
}

// Stats fetches the business-stats snapshot for a business.
func (c *Client) Stats(ctx context.Context, slug string) (StatsPayload, error) {
	u := c.statsBase + "/" + url.PathEscape(slug)
	var out StatsPayload
	if err := c.get(ctx, "stats", u, &out); err != nil {
		return StatsPayload{}, err
	}
	return out, nil
}

// ---- Internals ----

// get performs a GET with the courtesy throttle, retries on connection
// errors and 5xx, and decodes the JSON body into out. 4xx is terminal on the
// first attempt.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	// Courtesy throttle: fixed pacing under the platform rate limit,
	// applied to every request regardless of retry count.
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal(endpoint, 0, time.Since(start))
			lastErr = err
			if attempt < c.maxRetries && sleepCtx(ctx, c.backoff(attempt)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("hellopeter: request failed after %d attempts: %w", attempt+1, lastErr)
		}

		observability.ObserveExternal(endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("hellopeter: decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return ErrNotFound

		case resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode}
			if attempt < c.maxRetries && sleepCtx(ctx, c.backoff(attempt)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// Remaining 4xx: terminal, keep a small body excerpt for logs.
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	}
	return lastErr
}

// backoff returns the delay before retry attempt i: base doubling by the
// configured factor, plus up to +50% jitter.
func (c *Client) backoff(i int) time.Duration {
	d := float64(c.backoffBase)
	for n := 0; n < i; n++ {
		d *= c.backoffFactor
	}
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Duration(d)
	}
	j := 0.5 * float64(b[0]) / 255.0
	return time.Duration(d * (1 + j))
}

// sleepCtx waits for d or returns false if ctx is done first.
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
