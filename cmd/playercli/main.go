// Package main provides the player CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"google.golang.org/protobuf/types/known/emptypb"

	apiconnect "github.com/osa030/podcastr/internal/api/connect"
	"github.com/osa030/podcastr/internal/domain/episode"
)

var (
	app    = kingpin.New("podcastr-cli", "podcastr player client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set PODCASTR_CONTROL_TOKEN env)").Envar("PODCASTR_CONTROL_TOKEN").String()

	stateCmd    = app.Command("state", "Show the playback state")
	episodesCmd = app.Command("episodes", "List the loaded episodes").Alias("list")
	reloadCmd   = app.Command("reload", "Refetch episodes from the sources")

	playCmd       = app.Command("play", "Play a single episode")
	playEpisodeID = playCmd.Arg("episode-id", "Episode ID").Required().String()

	playAllCmd   = app.Command("play-all", "Play the whole catalogue")
	playAllIndex = playAllCmd.Arg("index", "Start index").Default("0").Int()

	nextCmd     = app.Command("next", "Play the next episode")
	previousCmd = app.Command("previous", "Play the previous episode").Alias("prev")
	toggleCmd   = app.Command("toggle", "Toggle play/pause")
	pauseCmd    = app.Command("pause", "Pause playback")
	resumeCmd   = app.Command("resume", "Resume playback")
	loopCmd     = app.Command("loop", "Toggle looping")
	shuffleCmd  = app.Command("shuffle", "Toggle shuffling")
	clearCmd    = app.Command("clear", "Clear the episode list")

	watchCmd = app.Command("watch", "Stream state changes")
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewPlayerServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(controlTokenInterceptor(*token)),
	)

	ctx := context.Background()

	switch command {
	case stateCmd.FullCommand():
		printState(call(client.GetState(ctx, empty())))
	case episodesCmd.FullCommand():
		printEpisodes(call(client.ListEpisodes(ctx, empty())))
	case reloadCmd.FullCommand():
		printEpisodes(call(client.ReloadEpisodes(ctx, empty())))
	case playCmd.FullCommand():
		printState(call(client.Play(ctx, connect.NewRequest(&apiconnect.PlayRequest{EpisodeID: *playEpisodeID}))))
	case playAllCmd.FullCommand():
		printState(call(client.PlayList(ctx, connect.NewRequest(&apiconnect.PlayListRequest{Index: *playAllIndex}))))
	case nextCmd.FullCommand():
		printState(call(client.PlayNext(ctx, empty())))
	case previousCmd.FullCommand():
		printState(call(client.PlayPrevious(ctx, empty())))
	case toggleCmd.FullCommand():
		printState(call(client.TogglePlay(ctx, empty())))
	case pauseCmd.FullCommand():
		printState(call(client.SetPlayingState(ctx, connect.NewRequest(&apiconnect.SetPlayingStateRequest{Playing: false}))))
	case resumeCmd.FullCommand():
		printState(call(client.SetPlayingState(ctx, connect.NewRequest(&apiconnect.SetPlayingStateRequest{Playing: true}))))
	case loopCmd.FullCommand():
		printState(call(client.ToggleLoop(ctx, empty())))
	case shuffleCmd.FullCommand():
		printState(call(client.ToggleShuffle(ctx, empty())))
	case clearCmd.FullCommand():
		printState(call(client.ClearPlayerState(ctx, empty())))
	case watchCmd.FullCommand():
		watch(ctx, client)
	}
}

func empty() *connect.Request[emptypb.Empty] {
	return connect.NewRequest(&emptypb.Empty{})
}

// call unwraps a response or exits with the RPC error.
func call[T any](resp *connect.Response[T], err error) *T {
	if err != nil {
		fmt.Printf("Error [%s]: %v\n", connect.CodeOf(err), err)
		os.Exit(1)
	}
	return resp.Msg
}

// controlTokenInterceptor attaches the control token to every unary call.
func controlTokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set(apiconnect.ControlTokenHeader, token)
			}
			return next(ctx, req)
		}
	}
}

func watch(ctx context.Context, client *apiconnect.PlayerServiceClient) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.SubscribeState(ctx, empty())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Watching playback state. Press Ctrl+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		cancel()
	}()

	for stream.Receive() {
		change := stream.Msg()
		fmt.Printf("\n=== %s ===\n", strings.ToUpper(change.Type))
		printState(&change.State)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printState(st *apiconnect.PlayerState) {
	status := "⏸  Paused"
	if st.IsPlaying {
		status = "▶️  Playing"
	}
	fmt.Printf("State (version %d): %s", st.Version, status)
	if st.IsLooping {
		fmt.Print("  🔁 loop")
	}
	if st.IsShuffling {
		fmt.Print("  🔀 shuffle")
	}
	fmt.Println()

	if st.CurrentEpisode != nil {
		fmt.Printf("  Now: [%d/%d] %s\n", st.CurrentIndex+1, len(st.EpisodeList), formatEpisode(*st.CurrentEpisode))
	} else {
		fmt.Println("  Now: (nothing)")
	}
	fmt.Printf("  Has previous: %v  Has next: %v\n", st.HasPrevious, st.HasNext)
}

func printEpisodes(resp *apiconnect.ListEpisodesResponse) {
	fmt.Printf("%d episodes from %s (loaded %s)\n", len(resp.Episodes), resp.Source, resp.LoadedAt.Format("2006-01-02 15:04:05"))
	for i, ep := range resp.Episodes {
		fmt.Printf("  %3d  %-24s %s\n", i, ep.ID, formatEpisode(ep))
	}
	for code, n := range resp.Rejected {
		fmt.Printf("  rejected %s: %d\n", code, n)
	}
}

func formatEpisode(ep episode.Episode) string {
	s := fmt.Sprintf("%s (%s)", ep.Title, ep.DurationTime())
	if ep.Members != "" {
		s += " - " + ep.Members
	}
	return s
}
