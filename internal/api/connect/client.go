package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

// PlayerServiceClient is a client for the PlayerService.
type PlayerServiceClient struct {
	getState         *connect.Client[emptypb.Empty, PlayerState]
	listEpisodes     *connect.Client[emptypb.Empty, ListEpisodesResponse]
	play             *connect.Client[PlayRequest, PlayerState]
	playList         *connect.Client[PlayListRequest, PlayerState]
	togglePlay       *connect.Client[emptypb.Empty, PlayerState]
	toggleLoop       *connect.Client[emptypb.Empty, PlayerState]
	toggleShuffle    *connect.Client[emptypb.Empty, PlayerState]
	setPlayingState  *connect.Client[SetPlayingStateRequest, PlayerState]
	clearPlayerState *connect.Client[emptypb.Empty, PlayerState]
	playNext         *connect.Client[emptypb.Empty, PlayerState]
	playPrevious     *connect.Client[emptypb.Empty, PlayerState]
	reloadEpisodes   *connect.Client[emptypb.Empty, ListEpisodesResponse]
	subscribeState   *connect.Client[emptypb.Empty, StateChange]
}

// NewPlayerServiceClient constructs a client for the PlayerService at baseURL
// (e.g. http://localhost:8080).
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{clientCodecOption()}, opts...)
	return &PlayerServiceClient{
		getState:         connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		listEpisodes:     connect.NewClient[emptypb.Empty, ListEpisodesResponse](httpClient, baseURL+PlayerServiceListEpisodesProcedure, opts...),
		play:             connect.NewClient[PlayRequest, PlayerState](httpClient, baseURL+PlayerServicePlayProcedure, opts...),
		playList:         connect.NewClient[PlayListRequest, PlayerState](httpClient, baseURL+PlayerServicePlayListProcedure, opts...),
		togglePlay:       connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceTogglePlayProcedure, opts...),
		toggleLoop:       connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceToggleLoopProcedure, opts...),
		toggleShuffle:    connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceToggleShuffleProcedure, opts...),
		setPlayingState:  connect.NewClient[SetPlayingStateRequest, PlayerState](httpClient, baseURL+PlayerServiceSetPlayingStateProcedure, opts...),
		clearPlayerState: connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServiceClearPlayerStateProcedure, opts...),
		playNext:         connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServicePlayNextProcedure, opts...),
		playPrevious:     connect.NewClient[emptypb.Empty, PlayerState](httpClient, baseURL+PlayerServicePlayPreviousProcedure, opts...),
		reloadEpisodes:   connect.NewClient[emptypb.Empty, ListEpisodesResponse](httpClient, baseURL+PlayerServiceReloadEpisodesProcedure, opts...),
		subscribeState:   connect.NewClient[emptypb.Empty, StateChange](httpClient, baseURL+PlayerServiceSubscribeStateProcedure, opts...),
	}
}

// GetState calls PlayerService.GetState.
func (c *PlayerServiceClient) GetState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.getState.CallUnary(ctx, req)
}

// ListEpisodes calls PlayerService.ListEpisodes.
func (c *PlayerServiceClient) ListEpisodes(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[ListEpisodesResponse], error) {
	return c.listEpisodes.CallUnary(ctx, req)
}

// Play calls PlayerService.Play.
func (c *PlayerServiceClient) Play(ctx context.Context, req *connect.Request[PlayRequest]) (*connect.Response[PlayerState], error) {
	return c.play.CallUnary(ctx, req)
}

// PlayList calls PlayerService.PlayList.
func (c *PlayerServiceClient) PlayList(ctx context.Context, req *connect.Request[PlayListRequest]) (*connect.Response[PlayerState], error) {
	return c.playList.CallUnary(ctx, req)
}

// TogglePlay calls PlayerService.TogglePlay.
func (c *PlayerServiceClient) TogglePlay(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

// ToggleLoop calls PlayerService.ToggleLoop.
func (c *PlayerServiceClient) ToggleLoop(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.toggleLoop.CallUnary(ctx, req)
}

// ToggleShuffle calls PlayerService.ToggleShuffle.
func (c *PlayerServiceClient) ToggleShuffle(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.toggleShuffle.CallUnary(ctx, req)
}

// SetPlayingState calls PlayerService.SetPlayingState.
func (c *PlayerServiceClient) SetPlayingState(ctx context.Context, req *connect.Request[SetPlayingStateRequest]) (*connect.Response[PlayerState], error) {
	return c.setPlayingState.CallUnary(ctx, req)
}

// ClearPlayerState calls PlayerService.ClearPlayerState.
func (c *PlayerServiceClient) ClearPlayerState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.clearPlayerState.CallUnary(ctx, req)
}

// PlayNext calls PlayerService.PlayNext.
func (c *PlayerServiceClient) PlayNext(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.playNext.CallUnary(ctx, req)
}

// PlayPrevious calls PlayerService.PlayPrevious.
func (c *PlayerServiceClient) PlayPrevious(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[PlayerState], error) {
	return c.playPrevious.CallUnary(ctx, req)
}

// ReloadEpisodes calls PlayerService.ReloadEpisodes.
func (c *PlayerServiceClient) ReloadEpisodes(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[ListEpisodesResponse], error) {
	return c.reloadEpisodes.CallUnary(ctx, req)
}

// SubscribeState calls PlayerService.SubscribeState.
func (c *PlayerServiceClient) SubscribeState(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.ServerStreamForClient[StateChange], error) {
	return c.subscribeState.CallServerStream(ctx, req)
}
