// Package decksource downloads preconstructed deck listings from the
// third-party deck data repository.
package decksource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRate      = 5 // requests per second
	defaultUserAgent = "mtgjson-decks/1.0"
	maxRetries       = 3
	initialBackoff   = 1 * time.Second
	maxBackoff       = 16 * time.Second
)

// Client fetches deck listings with rate limiting and retries.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	url         string
	logger      *slog.Logger

	// backoff is the first retry delay; tests shorten it.
	backoff time.Duration
}

// Options configures a Client.
type Options struct {
	URL               string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// NewClient creates a deck source client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRate
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		userAgent:   opts.UserAgent,
		url:         opts.URL,
		logger:      opts.Logger,
		backoff:     initialBackoff,
	}
}

// FetchDecks downloads and decodes the full deck listing.
func (c *Client) FetchDecks(ctx context.Context) ([]decks.RawDeck, error) {
	var listing []decks.RawDeck
	if err := c.doRequest(ctx, c.url, &listing); err != nil {
		return nil, fmt.Errorf("failed to fetch decks: %w", err)
	}

	c.logger.Info("Downloaded deck listing", "url", c.url, "decks", len(listing))
	return listing, nil
}

// doRequest performs a GET with rate limiting, retrying network errors,
// 429 and 5xx responses with exponential backoff.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.attempt(ctx, url, result, &backoff)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}

		c.logger.Warn("Deck source request failed, retrying",
			"url", url,
			"attempt", attempt+1,
			"error", err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs a single request. It reports whether a failure is worth
// retrying and may raise the next backoff to honor Retry-After.
func (c *Client) attempt(ctx context.Context, url string, result any, backoff *time.Duration) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			*backoff = max(*backoff, time.Duration(secs)*time.Second)
		}
		return true, &StatusError{URL: url, StatusCode: resp.StatusCode}

	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, &StatusError{URL: url, StatusCode: resp.StatusCode}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusError represents a non-200 response from the deck source.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("deck source request failed with status %d (%s): %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("deck source request failed with status %d (%s)", e.StatusCode, e.URL)
}
