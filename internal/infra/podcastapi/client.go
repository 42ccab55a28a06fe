// Package podcastapi provides a client for the JSON episode API that backs the
// podcast catalogue (a json-server style REST endpoint).
package podcastapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// DefaultBaseURL is the address the catalogue API listens on by default.
const DefaultBaseURL = "http://localhost:3333"

// publishedAtLayout is the timestamp layout used by the upstream API.
const publishedAtLayout = "2006-01-02 15:04:05"

// ErrMalformedResponse marks a response body that could not be decoded.
var ErrMalformedResponse = errors.New("malformed episode API response")

// Config represents episode API client configuration.
type Config struct {
	BaseURL    string
	Limit      int    // 0 means no limit
	Sort       string // field name, e.g. "published_at"
	Order      string // "asc" or "desc"
	Timeout    time.Duration
	Revalidate time.Duration // 0 disables caching
	MaxRetries int
	RetryDelay time.Duration
}

// Client is an episode API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        Config

	cacheMu  sync.RWMutex
	cached   []episode.Episode
	cachedAt time.Time
	now      func() time.Time
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("episode API returned status %d: %s", e.StatusCode, e.Body)
}

// apiEpisode is the wire shape of a single episode.
type apiEpisode struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Members     string          `json:"members"`
	PublishedAt string          `json:"published_at"`
	Thumbnail   string          `json:"thumbnail"`
	Description string          `json:"description"`
	File        struct {
		URL      string `json:"url"`
		Type     string `json:"type"`
		Duration int    `json:"duration"`
	} `json:"file"`
}

// New creates a new episode API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Order != "" && cfg.Order != "asc" && cfg.Order != "desc" {
		return nil, errors.Newf("invalid order %q (want asc or desc)", cfg.Order)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Episodes retrieves the episode catalogue.
// Results are served from cache until the revalidate window expires.
func (c *Client) Episodes(ctx context.Context) ([]episode.Episode, error) {
	if eps, ok := c.fromCache(); ok {
		zlog.Debug().Msgf("podcastapi: using cached episodes: count=%d", len(eps))
		return eps, nil
	}

	var eps []episode.Episode
	err := c.retry(ctx, func() error {
		var err error
		eps, err = c.fetch(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	// An empty list is not cached so the source is asked again next time.
	if c.cfg.Revalidate > 0 && len(eps) > 0 {
		c.cacheMu.Lock()
		c.cached = eps
		c.cachedAt = c.now()
		c.cacheMu.Unlock()
	}
	zlog.Debug().Msgf("podcastapi: fetched episodes: count=%d", len(eps))

	return copyEpisodes(eps), nil
}

// Invalidate drops the cached catalogue.
func (c *Client) Invalidate() {
	c.cacheMu.Lock()
	c.cached = nil
	c.cachedAt = time.Time{}
	c.cacheMu.Unlock()
}

func (c *Client) fromCache() ([]episode.Episode, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	if c.cfg.Revalidate <= 0 || c.cached == nil {
		return nil, false
	}
	if c.now().Sub(c.cachedAt) >= c.cfg.Revalidate {
		return nil, false
	}
	return copyEpisodes(c.cached), true
}

func (c *Client) requestURL() string {
	params := url.Values{}
	if c.cfg.Limit > 0 {
		params.Set("_limit", strconv.Itoa(c.cfg.Limit))
	}
	if c.cfg.Sort != "" {
		params.Set("_sort", c.cfg.Sort)
	}
	if c.cfg.Order != "" {
		params.Set("_order", c.cfg.Order)
	}

	reqURL := c.baseURL + "/episodes"
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

func (c *Client) fetch(ctx context.Context) ([]episode.Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var response []apiEpisode
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse response"), ErrMalformedResponse)
	}

	eps := make([]episode.Episode, 0, len(response))
	for _, a := range response {
		eps = append(eps, a.toEpisode())
	}
	return eps, nil
}

// retry runs fn up to MaxRetries+1 times with linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.cfg.RetryDelay
			zlog.Debug().Msgf("podcastapi: retrying request: attempt=%d delay=%v error=%v", attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "request cancelled while waiting to retry")
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}
	return errors.Wrapf(lastErr, "giving up after %d attempts", c.cfg.MaxRetries+1)
}

// isRetryable reports whether err is a transient failure.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	// Anything else left is a transport error.
	return !errors.Is(err, ErrMalformedResponse)
}

func (a apiEpisode) toEpisode() episode.Episode {
	return episode.Episode{
		ID:          parseID(a.ID),
		Title:       a.Title,
		Members:     a.Members,
		Thumbnail:   a.Thumbnail,
		Duration:    a.File.Duration,
		URL:         a.File.URL,
		PublishedAt: parsePublishedAt(a.PublishedAt),
		Description: a.Description,
	}
}

// parseID accepts both string and numeric identifiers.
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func parsePublishedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(publishedAtLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	zlog.Warn().Msgf("podcastapi: unparsable published_at: %q", s)
	return time.Time{}
}

func copyEpisodes(eps []episode.Episode) []episode.Episode {
	out := make([]episode.Episode, len(eps))
	copy(out, eps)
	return out
}
