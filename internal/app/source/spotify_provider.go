package source

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

type SpotifyProviderConfig struct {
	ShowURL string `yaml:"show_url" mapstructure:"show_url" validate:"required"`
	Limit   int    `yaml:"limit" mapstructure:"limit" default:"50" validate:"gte=0"`
}

// SpotifyProvider provides episodes of a Spotify show.
type SpotifyProvider struct {
	spotify ShowClient
	config  *SpotifyProviderConfig
}

// NewSpotifyProvider creates a new SpotifyProvider.
func NewSpotifyProvider(spotify ShowClient, settings map[string]any) (*SpotifyProvider, error) {
	if spotify == nil {
		return nil, errors.New("spotify client is required")
	}

	var config SpotifyProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("spotify provider config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("spotify provider validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}

	return &SpotifyProvider{spotify: spotify, config: &config}, nil
}

// Fetch retrieves the show's episodes.
func (p *SpotifyProvider) Fetch(ctx context.Context) ([]episode.Episode, error) {
	eps, err := p.spotify.ShowEpisodes(ctx, p.config.ShowURL, p.config.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get show episodes")
	}
	return eps, nil
}

// Name returns the provider name.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
