// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/osa030/podcastr/internal/app/notification"
	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/app/session"
)

const (
	// PlayerServiceName is the fully-qualified name of the PlayerService.
	PlayerServiceName = "podcastr.player.v1.PlayerService"

	PlayerServiceGetStateProcedure         = "/" + PlayerServiceName + "/GetState"
	PlayerServiceListEpisodesProcedure     = "/" + PlayerServiceName + "/ListEpisodes"
	PlayerServicePlayProcedure             = "/" + PlayerServiceName + "/Play"
	PlayerServicePlayListProcedure         = "/" + PlayerServiceName + "/PlayList"
	PlayerServiceTogglePlayProcedure       = "/" + PlayerServiceName + "/TogglePlay"
	PlayerServiceToggleLoopProcedure       = "/" + PlayerServiceName + "/ToggleLoop"
	PlayerServiceToggleShuffleProcedure    = "/" + PlayerServiceName + "/ToggleShuffle"
	PlayerServiceSetPlayingStateProcedure  = "/" + PlayerServiceName + "/SetPlayingState"
	PlayerServiceClearPlayerStateProcedure = "/" + PlayerServiceName + "/ClearPlayerState"
	PlayerServicePlayNextProcedure         = "/" + PlayerServiceName + "/PlayNext"
	PlayerServicePlayPreviousProcedure     = "/" + PlayerServiceName + "/PlayPrevious"
	PlayerServiceReloadEpisodesProcedure   = "/" + PlayerServiceName + "/ReloadEpisodes"
	PlayerServiceSubscribeStateProcedure   = "/" + PlayerServiceName + "/SubscribeState"
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session      *session.Manager
	validate     *validator.Validate
	streamBuffer int
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager, streamBuffer int) *PlayerService {
	return &PlayerService{
		session:      session,
		validate:     validator.New(),
		streamBuffer: streamBuffer,
	}
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc *PlayerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecOptions(), opts...)

	mux := http.NewServeMux()
	mux.Handle(PlayerServiceGetStateProcedure, connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, opts...))
	mux.Handle(PlayerServiceListEpisodesProcedure, connect.NewUnaryHandler(PlayerServiceListEpisodesProcedure, svc.ListEpisodes, opts...))
	mux.Handle(PlayerServicePlayProcedure, connect.NewUnaryHandler(PlayerServicePlayProcedure, svc.Play, opts...))
	mux.Handle(PlayerServicePlayListProcedure, connect.NewUnaryHandler(PlayerServicePlayListProcedure, svc.PlayList, opts...))
	mux.Handle(PlayerServiceTogglePlayProcedure, connect.NewUnaryHandler(PlayerServiceTogglePlayProcedure, svc.TogglePlay, opts...))
	mux.Handle(PlayerServiceToggleLoopProcedure, connect.NewUnaryHandler(PlayerServiceToggleLoopProcedure, svc.ToggleLoop, opts...))
	mux.Handle(PlayerServiceToggleShuffleProcedure, connect.NewUnaryHandler(PlayerServiceToggleShuffleProcedure, svc.ToggleShuffle, opts...))
	mux.Handle(PlayerServiceSetPlayingStateProcedure, connect.NewUnaryHandler(PlayerServiceSetPlayingStateProcedure, svc.SetPlayingState, opts...))
	mux.Handle(PlayerServiceClearPlayerStateProcedure, connect.NewUnaryHandler(PlayerServiceClearPlayerStateProcedure, svc.ClearPlayerState, opts...))
	mux.Handle(PlayerServicePlayNextProcedure, connect.NewUnaryHandler(PlayerServicePlayNextProcedure, svc.PlayNext, opts...))
	mux.Handle(PlayerServicePlayPreviousProcedure, connect.NewUnaryHandler(PlayerServicePlayPreviousProcedure, svc.PlayPrevious, opts...))
	mux.Handle(PlayerServiceReloadEpisodesProcedure, connect.NewUnaryHandler(PlayerServiceReloadEpisodesProcedure, svc.ReloadEpisodes, opts...))
	mux.Handle(PlayerServiceSubscribeStateProcedure, connect.NewServerStreamHandler(PlayerServiceSubscribeStateProcedure, svc.SubscribeState, opts...))

	return "/" + PlayerServiceName + "/", mux
}

// GetState returns the current playback state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	return s.stateResponse(), nil
}

// ListEpisodes returns the loaded catalogue.
func (s *PlayerService) ListEpisodes(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[ListEpisodesResponse], error) {
	return s.episodesResponse(), nil
}

// Play plays a single episode.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[PlayRequest],
) (*connect.Response[PlayerState], error) {
	switch {
	case req.Msg.EpisodeID != "":
		if err := s.session.PlayEpisode(req.Msg.EpisodeID); err != nil {
			return nil, toConnectError(err)
		}
	case req.Msg.Episode != nil:
		if err := s.validate.Struct(req.Msg.Episode); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.Wrap(err, "invalid episode"))
		}
		store, err := s.session.ActiveStore()
		if err != nil {
			return nil, toConnectError(err)
		}
		store.Play(*req.Msg.Episode)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("episode_id or episode is required"))
	}
	return s.stateResponse(), nil
}

// PlayList starts a list of episodes at the given index.
func (s *PlayerService) PlayList(
	ctx context.Context,
	req *connect.Request[PlayListRequest],
) (*connect.Response[PlayerState], error) {
	if len(req.Msg.Episodes) == 0 {
		if err := s.session.PlayCatalog(req.Msg.Index); err != nil {
			return nil, toConnectError(err)
		}
		return s.stateResponse(), nil
	}

	if req.Msg.Index < 0 || req.Msg.Index >= len(req.Msg.Episodes) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			errors.Newf("index %d out of range for %d episodes", req.Msg.Index, len(req.Msg.Episodes)))
	}
	for i := range req.Msg.Episodes {
		if err := s.validate.Struct(req.Msg.Episodes[i]); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.Wrapf(err, "invalid episode at %d", i))
		}
	}
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.PlayList(req.Msg.Episodes, req.Msg.Index)
	return s.stateResponse(), nil
}

// TogglePlay flips the playing flag.
func (s *PlayerService) TogglePlay(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.TogglePlay()
	return s.stateResponse(), nil
}

// ToggleLoop flips the looping flag.
func (s *PlayerService) ToggleLoop(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.ToggleLoop()
	return s.stateResponse(), nil
}

// ToggleShuffle flips the shuffling flag.
func (s *PlayerService) ToggleShuffle(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.ToggleShuffle()
	return s.stateResponse(), nil
}

// SetPlayingState sets the playing flag.
func (s *PlayerService) SetPlayingState(
	ctx context.Context,
	req *connect.Request[SetPlayingStateRequest],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.SetPlayingState(req.Msg.Playing)
	return s.stateResponse(), nil
}

// ClearPlayerState empties the episode list.
func (s *PlayerService) ClearPlayerState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.ClearPlayerState()
	return s.stateResponse(), nil
}

// PlayNext moves to the next episode.
func (s *PlayerService) PlayNext(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.PlayNext()
	return s.stateResponse(), nil
}

// PlayPrevious moves to the previous episode.
func (s *PlayerService) PlayPrevious(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[PlayerState], error) {
	store, err := s.session.ActiveStore()
	if err != nil {
		return nil, toConnectError(err)
	}
	store.PlayPrevious()
	return s.stateResponse(), nil
}

// ReloadEpisodes refetches the catalogue.
func (s *PlayerService) ReloadEpisodes(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[ListEpisodesResponse], error) {
	if err := s.session.Reload(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return s.episodesResponse(), nil
}

// SubscribeState streams the current state followed by every change until
// the client goes away or the session ends.
func (s *PlayerService) SubscribeState(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[StateChange],
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.session.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	sender := &stateStreamAdapter{stream: stream}
	notifier := s.session.Store().Notifier()

	zlog.Debug().Msgf("api: state subscriber connected: peer=%s", req.Peer().Addr)
	err := notification.Forward(ctx, notifier, sender, s.streamBuffer, func() error {
		return sender.Send(player.Change{State: s.session.Store().State()})
	})
	zlog.Debug().Msgf("api: state subscriber disconnected: peer=%s err=%v", req.Peer().Addr, err)
	return err
}

// stateStreamAdapter adapts connect.ServerStream to notification.Sender.
type stateStreamAdapter struct {
	stream  *connect.ServerStream[StateChange]
	initial bool
}

func (a *stateStreamAdapter) Send(change player.Change) error {
	changeType := change.Type.String()
	if !a.initial {
		a.initial = true
		changeType = changeTypeInitial
	}
	return a.stream.Send(&StateChange{
		Type:  changeType,
		State: *toPlayerState(change.State),
	})
}

func (s *PlayerService) stateResponse() *connect.Response[PlayerState] {
	return connect.NewResponse(toPlayerState(s.session.Store().State()))
}

func (s *PlayerService) episodesResponse() *connect.Response[ListEpisodesResponse] {
	status := s.session.Status()
	return connect.NewResponse(&ListEpisodesResponse{
		Episodes: s.session.Episodes(),
		Source:   status.Source,
		LoadedAt: status.LoadedAt,
		Rejected: status.Rejected,
	})
}

// toConnectError maps session errors to RPC status codes.
func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, session.ErrEpisodeNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrIndexOutOfRange):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrSessionNotReady):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrSessionClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		zlog.Error().Msgf("api: request failed: %v", err)
		return connect.NewError(connect.CodeUnavailable, err)
	}
}
