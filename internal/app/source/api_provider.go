package source

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/podcastapi"
)

type APIProviderConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url" default:"http://localhost:3333" validate:"required,url"`
	Limit         int    `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
	Sort          string `yaml:"sort" mapstructure:"sort"`
	Order         string `yaml:"order" mapstructure:"order" validate:"omitempty,oneof=asc desc"`
	TimeoutMs     int    `yaml:"timeout_ms" mapstructure:"timeout_ms" default:"10000" validate:"gte=1"`
	RevalidateSec int    `yaml:"revalidate_sec" mapstructure:"revalidate_sec" default:"28800" validate:"gte=0"`
	MaxRetries    int    `yaml:"max_retries" mapstructure:"max_retries" default:"2" validate:"gte=0,lte=10"`
}

// APIProvider provides episodes from the JSON episode API.
type APIProvider struct {
	api    EpisodeAPI
	config *APIProviderConfig
}

// NewAPIProvider creates a new APIProvider from a settings map.
func NewAPIProvider(settings map[string]any) (*APIProvider, error) {
	var config APIProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("api provider config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Msgf("api provider validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}

	client, err := podcastapi.New(podcastapi.Config{
		BaseURL:    config.BaseURL,
		Limit:      config.Limit,
		Sort:       config.Sort,
		Order:      config.Order,
		Timeout:    time.Duration(config.TimeoutMs) * time.Millisecond,
		Revalidate: time.Duration(config.RevalidateSec) * time.Second,
		MaxRetries: config.MaxRetries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create episode API client")
	}

	return &APIProvider{api: client, config: &config}, nil
}

// Fetch retrieves the catalogue from the episode API.
func (p *APIProvider) Fetch(ctx context.Context) ([]episode.Episode, error) {
	eps, err := p.api.Episodes(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch episodes from %s", p.config.BaseURL)
	}
	return eps, nil
}

// Invalidate drops any cached catalogue.
func (p *APIProvider) Invalidate() {
	p.api.Invalidate()
}

// Name returns the provider name.
func (p *APIProvider) Name() string {
	return "api"
}
