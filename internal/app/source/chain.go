package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// ErrNoEpisodes is returned when no provider could supply a catalogue.
var ErrNoEpisodes = errors.New("all providers failed to return episodes")

// Result is a fetched catalogue with its source provider info.
type Result struct {
	Episodes    []episode.Episode
	DisplayName string
}

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Chain tries multiple providers in order until one returns episodes.
type Chain struct {
	providers []ProviderWithMetadata
}

// NewChain creates a new provider chain.
func NewChain(providers []ProviderWithMetadata) *Chain {
	return &Chain{
		providers: providers,
	}
}

// Fetch returns the catalogue of the first provider that succeeds with a
// non-empty result. Later providers are fallbacks.
func (c *Chain) Fetch(ctx context.Context) (Result, error) {
	for i, pm := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(err, "fetch cancelled")
		}

		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		eps, err := pm.Provider.Fetch(ctx)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}

		if len(eps) == 0 {
			zlog.Debug().Msgf("provider returned no episodes: provider=%s", pm.DisplayName)
			continue
		}

		zlog.Info().Msgf("provider returned episodes: provider=%s count=%d", pm.DisplayName, len(eps))
		return Result{Episodes: eps, DisplayName: pm.DisplayName}, nil
	}

	return Result{}, ErrNoEpisodes
}

// Invalidate drops cached results of every provider that caches.
func (c *Chain) Invalidate() {
	for _, pm := range c.providers {
		if inv, ok := pm.Provider.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}

// Providers returns the configured providers in order.
func (c *Chain) Providers() []ProviderWithMetadata {
	return c.providers
}
