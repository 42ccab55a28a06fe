package connect

import (
	"time"

	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/domain/episode"
)

// PlayerState is the wire form of the playback state.
type PlayerState struct {
	EpisodeList    []episode.Episode `json:"episode_list"`
	CurrentIndex   int               `json:"current_index"`
	IsPlaying      bool              `json:"is_playing"`
	IsLooping      bool              `json:"is_looping"`
	IsShuffling    bool              `json:"is_shuffling"`
	HasNext        bool              `json:"has_next"`
	HasPrevious    bool              `json:"has_previous"`
	CurrentEpisode *episode.Episode  `json:"current_episode,omitempty"`
	Version        uint64            `json:"version"`
}

// StateChange is a single message of the SubscribeState stream.
type StateChange struct {
	Type  string      `json:"type"` // "initial" or a player change type
	State PlayerState `json:"state"`
}

// ListEpisodesResponse carries the loaded catalogue.
type ListEpisodesResponse struct {
	Episodes []episode.Episode `json:"episodes"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Rejected map[string]int    `json:"rejected,omitempty"`
}

// PlayRequest selects a single episode, either from the catalogue by ID or
// supplied inline.
type PlayRequest struct {
	EpisodeID string           `json:"episode_id,omitempty"`
	Episode   *episode.Episode `json:"episode,omitempty"`
}

// PlayListRequest starts a list at index. An empty Episodes plays the catalogue.
type PlayListRequest struct {
	Episodes []episode.Episode `json:"episodes,omitempty"`
	Index    int               `json:"index"`
}

// SetPlayingStateRequest sets the playing flag.
type SetPlayingStateRequest struct {
	Playing bool `json:"playing"`
}

// changeTypeInitial marks the first message of a state stream.
const changeTypeInitial = "initial"

func toPlayerState(st player.State) *PlayerState {
	out := &PlayerState{
		EpisodeList:  st.EpisodeList,
		CurrentIndex: st.CurrentIndex,
		IsPlaying:    st.IsPlaying,
		IsLooping:    st.IsLooping,
		IsShuffling:  st.IsShuffling,
		HasNext:      st.HasNext(),
		HasPrevious:  st.HasPrevious(),
		Version:      st.Version,
	}
	if out.EpisodeList == nil {
		out.EpisodeList = []episode.Episode{}
	}
	if ep, ok := st.CurrentEpisode(); ok {
		out.CurrentEpisode = ep
	}
	return out
}
