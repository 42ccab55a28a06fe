package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/config"
)

type fakeProvider struct {
	name        string
	episodes    []episode.Episode
	err         error
	calls       int
	invalidated int
}

func (f *fakeProvider) Fetch(ctx context.Context) ([]episode.Episode, error) {
	f.calls++
	return f.episodes, f.err
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Invalidate() { f.invalidated++ }

type fakeShowClient struct {
	showURL string
	limit   int
}

func (f *fakeShowClient) ShowEpisodes(ctx context.Context, showURL string, limit int) ([]episode.Episode, error) {
	f.showURL = showURL
	f.limit = limit
	return []episode.Episode{{ID: "sp1", Title: "From Spotify", URL: "https://p.scdn.co/sp1.mp3"}}, nil
}

func eps(ids ...string) []episode.Episode {
	out := make([]episode.Episode, len(ids))
	for i, id := range ids {
		out[i] = episode.Episode{ID: id, Title: "Episode " + id, URL: "https://cdn.example.com/" + id + ".mp3"}
	}
	return out
}

func TestChain_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		providers  []*fakeProvider
		wantIDs    []string
		wantSource string
		wantErr    error
		wantCalls  []int
	}{
		{
			name: "first provider wins",
			providers: []*fakeProvider{
				{name: "api", episodes: eps("1", "2")},
				{name: "spotify", episodes: eps("3")},
			},
			wantIDs:    []string{"1", "2"},
			wantSource: "p0",
			wantCalls:  []int{1, 0},
		},
		{
			name: "falls through on error",
			providers: []*fakeProvider{
				{name: "api", err: errors.New("connection refused")},
				{name: "spotify", episodes: eps("3")},
			},
			wantIDs:    []string{"3"},
			wantSource: "p1",
			wantCalls:  []int{1, 1},
		},
		{
			name: "falls through on empty result",
			providers: []*fakeProvider{
				{name: "api"},
				{name: "spotify", episodes: eps("3")},
			},
			wantIDs:    []string{"3"},
			wantSource: "p1",
			wantCalls:  []int{1, 1},
		},
		{
			name: "all providers fail",
			providers: []*fakeProvider{
				{name: "api", err: errors.New("boom")},
				{name: "spotify"},
			},
			wantErr:   ErrNoEpisodes,
			wantCalls: []int{1, 1},
		},
		{
			name:    "no providers",
			wantErr: ErrNoEpisodes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pms []ProviderWithMetadata
			for i, p := range tt.providers {
				pms = append(pms, ProviderWithMetadata{Provider: p, DisplayName: fmt.Sprintf("p%d", i)})
			}
			chain := NewChain(pms)

			result, err := chain.Fetch(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantIDs, episode.List(result.Episodes).IDs())
				assert.Equal(t, tt.wantSource, result.DisplayName)
			}
			for i, p := range tt.providers {
				assert.Equal(t, tt.wantCalls[i], p.calls, "calls to provider %d", i)
			}
		})
	}
}

func TestChain_FetchCancelled(t *testing.T) {
	p := &fakeProvider{name: "api", episodes: eps("1")}
	chain := NewChain([]ProviderWithMetadata{{Provider: p, DisplayName: "api"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestChain_Invalidate(t *testing.T) {
	p := &fakeProvider{name: "api"}
	sp, err := NewSpotifyProvider(&fakeShowClient{}, map[string]any{"show_url": "spotify:show:abc"})
	require.NoError(t, err)

	chain := NewChain([]ProviderWithMetadata{
		{Provider: p, DisplayName: "api"},
		{Provider: sp, DisplayName: "spotify"},
	})
	chain.Invalidate()

	assert.Equal(t, 1, p.invalidated)
	assert.Len(t, chain.Providers(), 2)
}

func TestNewChainFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/episodes", r.URL.Path)
		fmt.Fprint(w, `[{"id":"1","title":"Ep 1","members":"A","file":{"url":"https://cdn.example.com/1.mp3","duration":60}}]`)
	}))
	defer server.Close()

	show := &fakeShowClient{}
	cfg := &config.Config{
		Sources: []config.SourceConfig{
			{Type: "api", DisplayName: "Catalogue", Settings: map[string]any{"base_url": server.URL}},
			{Type: "spotify", DisplayName: "Show", Settings: map[string]any{"show_url": "spotify:show:abc", "limit": 5}},
		},
	}

	chain, err := NewChainFromConfig(cfg, show)
	require.NoError(t, err)
	require.Len(t, chain.Providers(), 2)
	assert.Equal(t, "api", chain.Providers()[0].Provider.Name())
	assert.Equal(t, "spotify", chain.Providers()[1].Provider.Name())

	result, err := chain.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Catalogue", result.DisplayName)
	require.Len(t, result.Episodes, 1)
	assert.Equal(t, 60, result.Episodes[0].Duration)

	sp := chain.Providers()[1].Provider
	spEps, err := sp.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, spEps, 1)
	assert.Equal(t, "spotify:show:abc", show.showURL)
	assert.Equal(t, 5, show.limit)
}

func TestNewChainFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sources []config.SourceConfig
		spotify ShowClient
	}{
		{
			name: "no sources",
		},
		{
			name:    "unknown type",
			sources: []config.SourceConfig{{Type: "rss", DisplayName: "Feed"}},
		},
		{
			name:    "invalid api order",
			sources: []config.SourceConfig{{Type: "api", DisplayName: "API", Settings: map[string]any{"order": "random"}}},
		},
		{
			name:    "spotify without client",
			sources: []config.SourceConfig{{Type: "spotify", DisplayName: "Show", Settings: map[string]any{"show_url": "abc"}}},
		},
		{
			name:    "spotify without show url",
			sources: []config.SourceConfig{{Type: "spotify", DisplayName: "Show"}},
			spotify: &fakeShowClient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChainFromConfig(&config.Config{Sources: tt.sources}, tt.spotify)
			assert.Error(t, err)
		})
	}
}

func TestNewAPIProvider_Defaults(t *testing.T) {
	p, err := NewAPIProvider(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3333", p.config.BaseURL)
	assert.Equal(t, 28800, p.config.RevalidateSec)
	assert.Equal(t, 10000, p.config.TimeoutMs)
	assert.Equal(t, 2, p.config.MaxRetries)
}
