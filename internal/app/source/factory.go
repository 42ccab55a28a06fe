package source

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
// spotify may be nil when no spotify source is configured.
func NewChainFromConfig(cfg *config.Config, spotify ShowClient) (*Chain, error) {
	if len(cfg.Sources) == 0 {
		return nil, errors.New("no episode sources configured")
	}

	var providers []ProviderWithMetadata

	for i, scfg := range cfg.Sources {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating episode provider: index=%d type=%s settings=%+v", i+1, scfg.Type, scfg.Settings)
		switch scfg.Type {
		case "api":
			provider, err = NewAPIProvider(scfg.Settings)

		case "spotify":
			provider, err = NewSpotifyProvider(spotify, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, scfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: scfg.DisplayName,
		})

		zlog.Info().Msgf("registered episode provider: index=%d type=%s display_name=%s", i+1, scfg.Type, scfg.DisplayName)
	}

	return NewChain(providers), nil
}
