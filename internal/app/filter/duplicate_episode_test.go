package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/podcastr/internal/domain/episode"
)

func TestDuplicateEpisodeFilter_Check(t *testing.T) {
	accepted := []episode.Episode{
		{
			ID:      "101",
			Title:   "Go generics deep dive",
			Members: "mizchi, azu",
			URL:     "https://cdn.example.com/101.mp3",
		},
	}

	tests := []struct {
		name         string
		ep           episode.Episode
		wantAccepted bool
	}{
		{
			name:         "exact ID match",
			ep:           episode.Episode{ID: "101", Title: "Something else", URL: "https://cdn.example.com/other.mp3"},
			wantAccepted: false,
		},
		{
			name:         "same media URL",
			ep:           episode.Episode{ID: "102", Title: "Mirror", URL: "https://cdn.example.com/101.mp3"},
			wantAccepted: false,
		},
		{
			name: "reupload marker",
			ep: episode.Episode{
				ID:      "103",
				Title:   "Go generics deep dive (Reupload)",
				Members: "mizchi, azu",
				URL:     "https://cdn.example.com/103.mp3",
			},
			wantAccepted: false,
		},
		{
			name: "rerun suffix and case",
			ep: episode.Episode{
				ID:      "104",
				Title:   "GO GENERICS DEEP DIVE - rerun",
				Members: "Mizchi, Azu",
				URL:     "https://cdn.example.com/104.mp3",
			},
			wantAccepted: false,
		},
		{
			name: "same title different members",
			ep: episode.Episode{
				ID:      "105",
				Title:   "Go generics deep dive",
				Members: "someone else",
				URL:     "https://cdn.example.com/105.mp3",
			},
			wantAccepted: true,
		},
		{
			name: "different episode",
			ep: episode.Episode{
				ID:      "106",
				Title:   "Go generics deep dive part 2",
				Members: "mizchi, azu",
				URL:     "https://cdn.example.com/106.mp3",
			},
			wantAccepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDuplicateEpisodeFilter()

			result := f.Check(context.Background(), tt.ep, accepted)

			assert.Equal(t, tt.wantAccepted, result.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, "duplicate_episode", result.Code)
			}
		})
	}
}

func TestDuplicateEpisodeFilter_EmptyIDsNotMatched(t *testing.T) {
	f := NewDuplicateEpisodeFilter()
	accepted := []episode.Episode{{Title: "a", URL: "https://cdn.example.com/a.mp3"}}

	result := f.Check(context.Background(), episode.Episode{Title: "b", URL: "https://cdn.example.com/b.mp3"}, accepted)

	assert.True(t, result.Accepted)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Episode 12", "episode 12"},
		{"Episode 12 (Reupload)", "episode 12"},
		{"Episode 12 [re-uploaded]", "episode 12"},
		{"Episode 12 (Remastered 2024)", "episode 12"},
		{"Episode 12 - repost", "episode 12"},
		{"  Episode   12  ", "episode 12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTitle(tt.input))
		})
	}
}
