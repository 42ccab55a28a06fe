// Package player provides the playback state store shared by presentation consumers.
package player

import (
	"slices"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// State is a snapshot of the playback state.
//
// CurrentIndex is expected to satisfy 0 <= CurrentIndex < len(EpisodeList)
// whenever the list is non-empty, and to be 0 when it is empty. PlayList does
// not enforce this, so readers should go through CurrentEpisode.
type State struct {
	EpisodeList  []episode.Episode
	CurrentIndex int
	IsPlaying    bool
	IsLooping    bool
	IsShuffling  bool
	Version      uint64 // Incremented on every notified change
}

// HasPrevious reports whether there is an episode before the current one.
func (s State) HasPrevious() bool {
	return s.CurrentIndex > 0
}

// HasNext reports whether PlayNext would move. While shuffling this is
// always true, regardless of how many episodes remain.
func (s State) HasNext() bool {
	return s.IsShuffling || s.CurrentIndex+1 < len(s.EpisodeList)
}

// CurrentEpisode returns the episode at CurrentIndex.
// Returns false if the list is empty or the index is out of range.
func (s State) CurrentEpisode() (*episode.Episode, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.EpisodeList) {
		return nil, false
	}
	ep := s.EpisodeList[s.CurrentIndex]
	return &ep, true
}

// clone returns a copy that does not share the episode slice.
func (s State) clone() State {
	s.EpisodeList = slices.Clone(s.EpisodeList)
	if s.EpisodeList == nil {
		s.EpisodeList = []episode.Episode{}
	}
	return s
}
