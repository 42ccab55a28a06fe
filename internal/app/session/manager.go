// Package session provides the session manager that ties the episode
// catalogue to the playback state store.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/app/filter"
	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/app/source"
	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/config"
)

var (
	ErrSessionNotReady = errors.New("session is not ready")
	ErrSessionClosed   = errors.New("session is closed")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrIndexOutOfRange = errors.New("episode index out of range")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrEmptyCatalogue  = errors.New("no playable episodes after filtering")
)

// Catalogue supplies the episode list. *source.Chain satisfies it.
type Catalogue interface {
	Fetch(ctx context.Context) (source.Result, error)
	Invalidate()
}

// Status is a point-in-time view of the session.
type Status struct {
	Phase        Phase
	EpisodeCount int
	Source       string
	LoadedAt     time.Time
	Rejected     map[string]int
	Player       player.State
}

// Manager manages the podcast session.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	store       *player.Store
	catalogue   Catalogue
	filterChain *filter.Chain

	// Loaded catalogue
	episodes   []episode.Episode
	sourceName string
	loadedAt   time.Time
	rejected   map[string]int
	phase      Phase

	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, catalogue Catalogue) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if catalogue == nil {
		return nil, errors.New("episode catalogue is required")
	}

	var rng player.Rand
	if cfg.Player.ShuffleSeed != 0 {
		rng = player.NewSeededRand(cfg.Player.ShuffleSeed)
	}

	m := &Manager{
		config:      cfg,
		store:       player.New(player.Config{Rand: rng}),
		catalogue:   catalogue,
		filterChain: filter.NewChain(),
		episodes:    []episode.Episode{},
		rejected:    map[string]int{},
		phase:       PhaseIdle,
		now:         time.Now,
		done:        make(chan struct{}),
	}

	if err := m.setupFilters(); err != nil {
		return nil, err
	}

	return m, nil
}

// setupFilters initializes the filter chain.
func (m *Manager) setupFilters() error {
	cfg := m.config

	// PlayableFilter is always on
	m.filterChain.Add(filter.NewPlayableFilter())

	// DuplicateEpisodeFilter
	if cfg.IsFilterEnabled("duplicate_episode_filter") {
		m.filterChain.Add(filter.NewDuplicateEpisodeFilter())
	}

	// DurationLimitFilter
	if cfg.IsFilterEnabled("duration_limit_filter") {
		f := filter.NewDurationLimitFilter()
		if err := f.ValidateConfig(cfg.FilterSettings("duration_limit_filter")); err != nil {
			return errors.Wrap(err, "invalid duration_limit_filter settings")
		}
		m.filterChain.Add(f)
	}

	for _, f := range m.filterChain.Filters() {
		zlog.Debug().Msgf("session: filter enabled: name=%s codes=%v", f.Name(), f.ReturnCodes())
	}
	return nil
}

// Start loads the catalogue for the first time.
// Only one Start runs; concurrent or later calls get ErrAlreadyStarted.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	switch m.phase {
	case PhaseClosed:
		m.mu.Unlock()
		return ErrSessionClosed
	case PhaseStarting, PhaseReady:
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.phase = PhaseStarting
	m.mu.Unlock()

	loadErr := m.load(ctx)

	m.mu.Lock()
	if err := m.finishStarting(loadErr); err != nil {
		m.mu.Unlock()
		return err
	}
	eps := slices.Clone(m.episodes)
	m.mu.Unlock()
	zlog.Info().Msgf("session: ready: episodes=%d", len(eps))

	if m.config.Player.AutoplayFirst && len(eps) > 0 {
		m.store.PlayList(eps, 0)
	}
	return nil
}

// finishStarting settles PhaseStarting once the first load is over.
// A Close that ran during the load wins. Must be called with m.mu held.
func (m *Manager) finishStarting(loadErr error) error {
	if m.phase != PhaseStarting {
		return ErrSessionClosed
	}
	if loadErr != nil {
		m.phase = PhaseIdle
		return errors.Wrap(loadErr, "failed to load episodes")
	}
	m.phase = PhaseReady
	return nil
}

// Reload refetches the catalogue, bypassing provider caches.
// The playback state is left untouched. Reloading an idle session starts it.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	phase := m.phase
	switch phase {
	case PhaseClosed:
		m.mu.Unlock()
		return ErrSessionClosed
	case PhaseIdle:
		m.phase = PhaseStarting
	}
	m.mu.Unlock()

	m.catalogue.Invalidate()
	loadErr := m.load(ctx)

	if phase == PhaseIdle {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.finishStarting(loadErr); err != nil {
			return errors.Wrap(err, "failed to reload episodes")
		}
		return nil
	}

	if loadErr != nil {
		return errors.Wrap(loadErr, "failed to reload episodes")
	}
	if errors.Is(m.checkReady(), ErrSessionClosed) {
		return ErrSessionClosed
	}
	return nil
}

// load fetches and filters the catalogue and swaps it in on success.
func (m *Manager) load(ctx context.Context) error {
	result, err := m.catalogue.Fetch(ctx)
	if err != nil {
		return err
	}

	accepted, rejected := m.filterChain.Apply(ctx, result.Episodes)
	if len(accepted) == 0 {
		return errors.Wrapf(ErrEmptyCatalogue, "source %s returned %d episodes", result.DisplayName, len(result.Episodes))
	}

	m.mu.Lock()
	m.episodes = accepted
	m.sourceName = result.DisplayName
	m.loadedAt = m.now()
	m.rejected = rejected
	m.mu.Unlock()

	zlog.Info().Msgf("session: catalogue loaded: source=%s accepted=%d rejected=%v",
		result.DisplayName, len(accepted), rejected)
	return nil
}

// Episodes returns a copy of the loaded catalogue.
func (m *Manager) Episodes() []episode.Episode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.episodes)
}

// Episode returns the catalogue episode with the given ID.
func (m *Manager) Episode(id string) (episode.Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := episode.List(m.episodes).FindByID(id)
	if idx < 0 {
		return episode.Episode{}, errors.Wrapf(ErrEpisodeNotFound, "id=%s", id)
	}
	return m.episodes[idx], nil
}

// Store returns the playback state store for reading and subscribing.
// Mutations from outside the session go through ActiveStore.
func (m *Manager) Store() *player.Store {
	return m.store
}

// ActiveStore returns the store for a mutation, or ErrSessionClosed once the
// session has ended. The store is usable before the catalogue is loaded.
func (m *Manager) ActiveStore() (*player.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.phase == PhaseClosed {
		return nil, ErrSessionClosed
	}
	return m.store, nil
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rejected := make(map[string]int, len(m.rejected))
	for k, v := range m.rejected {
		rejected[k] = v
	}

	return Status{
		Phase:        m.phase,
		EpisodeCount: len(m.episodes),
		Source:       m.sourceName,
		LoadedAt:     m.loadedAt,
		Rejected:     rejected,
		Player:       m.store.State(),
	}
}

// PlayEpisode plays a single catalogue episode.
func (m *Manager) PlayEpisode(id string) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	ep, err := m.Episode(id)
	if err != nil {
		return err
	}
	m.store.Play(ep)
	return nil
}

// PlayCatalog plays the whole catalogue starting at index.
func (m *Manager) PlayCatalog(index int) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	eps := m.Episodes()
	if index < 0 || index >= len(eps) {
		return errors.Wrapf(ErrIndexOutOfRange, "index=%d len=%d", index, len(eps))
	}
	m.store.PlayList(eps, index)
	return nil
}

func (m *Manager) checkReady() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.phase {
	case PhaseReady:
		return nil
	case PhaseClosed:
		return ErrSessionClosed
	default:
		return ErrSessionNotReady
	}
}

// Done returns a channel closed when the session ends.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close ends the session and drops all state subscribers.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.phase = PhaseClosed
		m.mu.Unlock()

		m.store.Notifier().Close()
		close(m.done)
		zlog.Info().Msg("session: closed")
	})
}
