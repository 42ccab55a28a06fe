// Package spotify provides a client for reading podcast shows from the Spotify API.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// New creates a new Spotify client.
// Shows are public catalogue data, so the client-credentials flow is enough.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// HTTP client that fetches and refreshes the app token on demand
	httpClient := auth.Client(ctx)

	return newClient(spotify.New(httpClient), cfg.Market), nil
}

func newClient(client *spotify.Client, market string) *Client {
	if market == "" {
		market = "JP"
	}
	return &Client{
		client:     client,
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// ShowEpisodes retrieves up to limit episodes of a show, newest first as
// returned by Spotify. showURL can be an ID, URL, or URI. A limit of 0 or
// less fetches every episode.
func (c *Client) ShowEpisodes(ctx context.Context, showURL string, limit int) ([]episode.Episode, error) {
	showID := extractShowID(showURL)
	if showID == "" {
		return nil, errors.New("invalid show URL")
	}

	var show *spotify.FullShow
	err := c.retry(func() error {
		s, err := c.client.GetShow(ctx, spotify.ID(showID), spotify.Market(c.market))
		if err != nil {
			return err
		}
		show = s
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get show")
	}

	var episodes []episode.Episode
	page := &show.Episodes
	for {
		for _, item := range page.Episodes {
			ep, ok := c.convertEpisode(&show.SimpleShow, item)
			if !ok {
				zlog.Debug().Msgf("spotify: skipping episode without audio: id=%s name=%q", item.ID, item.Name)
				continue
			}
			episodes = append(episodes, ep)
			if limit > 0 && len(episodes) >= limit {
				return episodes, nil
			}
		}

		// NextPage zeroes the page before fetching, so it cannot be retried.
		err := c.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to get show episodes")
		}
	}

	return episodes, nil
}

// convertEpisode converts a Spotify episode to a domain Episode.
func (c *Client) convertEpisode(show *spotify.SimpleShow, e spotify.EpisodePage) (episode.Episode, bool) {
	if e.AudioPreviewURL == "" {
		return episode.Episode{}, false
	}

	var thumbnail string
	if len(e.Images) > 0 {
		thumbnail = e.Images[0].URL
	} else if len(show.Images) > 0 {
		thumbnail = show.Images[0].URL
	}

	return episode.Episode{
		ID:          string(e.ID),
		Title:       e.Name,
		Members:     show.Publisher,
		Thumbnail:   thumbnail,
		Duration:    int(e.Duration_ms) / 1000,
		URL:         e.AudioPreviewURL,
		PublishedAt: parseReleaseDate(e.ReleaseDate),
		Description: e.Description,
	}, true
}

// parseReleaseDate handles Spotify's day, month and year precisions.
func parseReleaseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractShowID extracts the show ID from a Spotify show URL or URI.
func extractShowID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:show:SHOW_ID
	if strings.HasPrefix(input, "spotify:show:") {
		return strings.TrimPrefix(input, "spotify:show:")
	}

	// Handle URL format: https://open.spotify.com/show/SHOW_ID or https://open.spotify.com/intl-XX/show/SHOW_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/show/") {
		parts := strings.Split(input, "/show/")
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	// Assume it's already a show ID
	return input
}
