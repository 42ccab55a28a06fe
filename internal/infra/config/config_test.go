package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSources() []SourceConfig {
	return []SourceConfig{
		{
			Type:        "api",
			DisplayName: "Catalogue",
			Settings:    map[string]any{"base_url": "http://localhost:3333"},
		},
	}
}

func TestConfig_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Player:  PlayerConfig{StreamBuffer: 16},
				Sources: validSources(),
			},
			wantErr: false,
		},
		{
			name: "no sources",
			config: Config{
				Player: PlayerConfig{StreamBuffer: 16},
			},
			wantErr: true,
			errMsg:  "Sources",
		},
		{
			name: "unknown source type",
			config: Config{
				Player: PlayerConfig{StreamBuffer: 16},
				Sources: []SourceConfig{
					{Type: "rss", DisplayName: "Feed"},
				},
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "missing display name",
			config: Config{
				Player: PlayerConfig{StreamBuffer: 16},
				Sources: []SourceConfig{
					{Type: "api"},
				},
			},
			wantErr: true,
			errMsg:  "DisplayName",
		},
		{
			name: "spotify source without credentials",
			config: Config{
				Player: PlayerConfig{StreamBuffer: 16},
				Sources: []SourceConfig{
					{Type: "spotify", DisplayName: "Show", Settings: map[string]any{"show_url": "spotify:show:abc"}},
				},
			},
			wantErr: true,
			errMsg:  "client_id",
		},
		{
			name: "spotify source with credentials",
			config: Config{
				Player: PlayerConfig{StreamBuffer: 16},
				Sources: []SourceConfig{
					{Type: "spotify", DisplayName: "Show", Settings: map[string]any{"show_url": "spotify:show:abc"}},
				},
				Spotify: SpotifyConfig{ClientID: "id", ClientSecret: "secret", Market: "US"},
			},
			wantErr: false,
		},
		{
			name: "invalid market length",
			config: Config{
				Player:  PlayerConfig{StreamBuffer: 16},
				Sources: validSources(),
				Spotify: SpotifyConfig{Market: "JAPAN"},
			},
			wantErr: true,
			errMsg:  "Market",
		},
		{
			name: "stream buffer out of range",
			config: Config{
				Player:  PlayerConfig{StreamBuffer: 0},
				Sources: validSources(),
			},
			wantErr: true,
			errMsg:  "StreamBuffer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  control_token: file-token
sources:
  - type: api
    display_name: Catalogue
filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_minutes: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr, "default addr")
	assert.Equal(t, "file-token", cfg.Server.ControlToken)
	assert.Equal(t, 16, cfg.Player.StreamBuffer, "default stream buffer")
	assert.Equal(t, "JP", cfg.Spotify.Market, "default market")
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "Catalogue", cfg.Sources[0].DisplayName)

	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("duplicate_episode_filter"))
	assert.Equal(t, 120, cfg.FilterSettings("duration_limit_filter")["max_minutes"])
	assert.Empty(t, cfg.FilterSettings("unknown"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PODCASTR_API_URL", "http://catalogue.internal:3333")
	t.Setenv("PODCASTR_CONTROL_TOKEN", "env-token")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	path := writeConfig(t, `
server:
  control_token: file-token
sources:
  - type: spotify
    display_name: Show
    settings:
      show_url: spotify:show:abc
  - type: api
    display_name: Catalogue
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Server.ControlToken)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "http://catalogue.internal:3333", cfg.Sources[1].Settings["base_url"])
	assert.NotContains(t, cfg.Sources[0].Settings, "base_url")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "sources: [unterminated"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  addr: \":9090\"\n"))
	assert.Error(t, err, "config without sources is invalid")
}
