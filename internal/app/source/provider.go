// Package source provides episode catalogue retrieval strategies.
package source

import (
	"context"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Provider is the interface for episode providers.
// Different implementations fetch the catalogue from different backends
// (e.g., the JSON episode API, a Spotify show).
type Provider interface {
	// Fetch retrieves the full episode catalogue in display order.
	Fetch(ctx context.Context) ([]episode.Episode, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Invalidator is implemented by providers that cache results.
type Invalidator interface {
	Invalidate()
}

// EpisodeAPI defines the episode API operations needed by APIProvider.
type EpisodeAPI interface {
	Episodes(ctx context.Context) ([]episode.Episode, error)
	Invalidate()
}

// ShowClient defines the Spotify operations needed by SpotifyProvider.
type ShowClient interface {
	ShowEpisodes(ctx context.Context, showURL string, limit int) ([]episode.Episode, error)
}
