package player

import (
	"math/rand/v2"
	"slices"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/app/notification"
	"github.com/osa030/podcastr/internal/domain/episode"
)

// Rand is the source used to pick the next episode while shuffling.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewSeededRand returns a deterministic Rand for reproducible shuffles.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Config holds store configuration.
type Config struct {
	Rand Rand // Shuffle source; nil uses the global source
}

// Store is the single source of truth for playback state.
//
// Every operation is total: none of them returns an error. Subscribers are
// invoked synchronously, after the state lock has been released, so a
// subscriber may read or mutate the store from its callback.
type Store struct {
	mu    sync.RWMutex
	state State
	rng   Rand

	notifier *notification.Manager[Change]
}

// New creates a store with an empty episode list, index 0 and all flags off.
func New(config Config) *Store {
	rng := config.Rand
	if rng == nil {
		rng = globalRand{}
	}
	return &Store{
		state: State{
			EpisodeList: []episode.Episode{},
		},
		rng:      rng,
		notifier: notification.NewManager[Change](),
	}
}

// Subscribe registers fn to be called after every state change.
// The State passed to fn must be treated as read-only.
func (s *Store) Subscribe(fn func(Change)) string {
	return s.notifier.Subscribe(fn)
}

// Unsubscribe removes a subscription registered with Subscribe.
func (s *Store) Unsubscribe(id string) bool {
	return s.notifier.Unsubscribe(id)
}

// Notifier exposes the underlying notification manager (used for streaming).
func (s *Store) Notifier() *notification.Manager[Change] {
	return s.notifier
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// CurrentEpisode returns the episode at the current index, if any.
func (s *Store) CurrentEpisode() (*episode.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentEpisode()
}

// HasPrevious reports whether PlayPrevious would move.
func (s *Store) HasPrevious() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasPrevious()
}

// HasNext reports whether PlayNext would move (always true while shuffling).
func (s *Store) HasNext() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.HasNext()
}

// Play replaces the list with the single episode and starts playing it.
func (s *Store) Play(ep episode.Episode) {
	s.mutate(ChangeEpisodeList, func(st *State) bool {
		st.EpisodeList = []episode.Episode{ep}
		st.CurrentIndex = 0
		st.IsPlaying = true
		return true
	})
	zlog.Debug().Msgf("player: play: title=%s", ep.Title)
}

// PlayList replaces the list and starts playing at index.
// The caller must ensure 0 <= index < len(list); the store does not check it.
func (s *Store) PlayList(list []episode.Episode, index int) {
	if index < 0 || index >= len(list) {
		zlog.Warn().Msgf("player: play list with out-of-range index: index=%d len=%d", index, len(list))
	}
	s.mutate(ChangeEpisodeList, func(st *State) bool {
		st.EpisodeList = slices.Clone(list)
		if st.EpisodeList == nil {
			st.EpisodeList = []episode.Episode{}
		}
		st.CurrentIndex = index
		st.IsPlaying = true
		return true
	})
	zlog.Debug().Msgf("player: play list: len=%d index=%d", len(list), index)
}

// TogglePlay flips the playing flag.
func (s *Store) TogglePlay() {
	s.mutate(ChangePlaying, func(st *State) bool {
		st.IsPlaying = !st.IsPlaying
		return true
	})
}

// ToggleLoop flips the looping flag.
func (s *Store) ToggleLoop() {
	s.mutate(ChangeLooping, func(st *State) bool {
		st.IsLooping = !st.IsLooping
		return true
	})
}

// ToggleShuffle flips the shuffling flag.
func (s *Store) ToggleShuffle() {
	s.mutate(ChangeShuffling, func(st *State) bool {
		st.IsShuffling = !st.IsShuffling
		return true
	})
}

// SetPlayingState sets the playing flag directly. Used when the media
// element reports a pause, resume or end of episode on its own.
func (s *Store) SetPlayingState(playing bool) {
	s.mutate(ChangePlaying, func(st *State) bool {
		if st.IsPlaying == playing {
			return false
		}
		st.IsPlaying = playing
		return true
	})
}

// ClearPlayerState empties the list and resets the index.
// IsPlaying, IsLooping and IsShuffling are left as they are, so a store
// can report playing over an empty list after this call.
func (s *Store) ClearPlayerState() {
	s.mutate(ChangeEpisodeList, func(st *State) bool {
		if len(st.EpisodeList) == 0 && st.CurrentIndex == 0 {
			return false
		}
		st.EpisodeList = []episode.Episode{}
		st.CurrentIndex = 0
		return true
	})
}

// PlayNext moves to the next episode.
// While shuffling it picks a uniformly random index over the whole list,
// which may be the current one. Otherwise it advances by one if possible.
func (s *Store) PlayNext() {
	s.mutate(ChangeIndex, func(st *State) bool {
		switch {
		case st.IsShuffling:
			next := 0
			if n := len(st.EpisodeList); n > 0 {
				next = s.rng.IntN(n)
			}
			if next == st.CurrentIndex {
				return false
			}
			st.CurrentIndex = next
			return true
		case st.HasNext():
			st.CurrentIndex++
			return true
		default:
			return false
		}
	})
}

// PlayPrevious moves to the previous episode if there is one.
func (s *Store) PlayPrevious() {
	s.mutate(ChangeIndex, func(st *State) bool {
		if !st.HasPrevious() {
			return false
		}
		st.CurrentIndex--
		return true
	})
}

// mutate applies fn under the lock and, if it reports a change, notifies
// subscribers with the resulting state after the lock is released.
func (s *Store) mutate(changeType ChangeType, fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	s.state.Version++
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notifier.Broadcast(Change{
		Type:  changeType,
		State: snapshot,
	})
}
