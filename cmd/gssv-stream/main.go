// cmd/gssv-stream is the minimal CLI entrypoint, matching spec.md §6's
// caller surface: create/lookup_games/lookup_consoles/start_stream_x*.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/xcloudgo/gssv-stream/coordinator"
	"github.com/xcloudgo/gssv-stream/gssv"
	"github.com/xcloudgo/gssv-stream/webrtcengine"
)

func main() {
	platform := flag.String("platform", "home", "streaming platform: cloud or home")
	titleID := flag.String("title", "", "xCloud title id (xcloud platform only)")
	serverID := flag.String("server", "", "xHome console server id (xhome platform only)")
	tokenPath := flag.String("token-store", "tokens.json", "path to the persisted token store")
	stunURL := flag.String("stun", "stun:stun.l.google.com:19302", "STUN server URL")
	action := flag.String("action", "stream", "action to perform: lookup_games, lookup_consoles, stream")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(log, *platform, *titleID, *serverID, *tokenPath, *stunURL, *action); err != nil {
		log.Fatal().Err(err).Msg("gssv-stream failed")
	}
}

func run(log zerolog.Logger, platformFlag, titleID, serverID, tokenPath, stunURL, action string) error {
	store := gssv.NewTokenStore(tokenPath)
	tokens, err := store.Load()
	if err != nil {
		return fmt.Errorf("load token store: %w", err)
	}

	platform, err := gssv.ParsePlatform(platformFlag)
	if err != nil {
		return err
	}

	client, err := gssv.NewClient(platform, tokens.GssvToken, gssv.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch action {
	case "lookup_games":
		titles, err := client.LookupGames(ctx)
		if err != nil {
			return err
		}
		for _, t := range titles.Results {
			fmt.Printf("%s\t%s\n", t.TitleID, t.Name)
		}
		return nil
	case "lookup_consoles":
		consoles, err := client.LookupConsoles(ctx)
		if err != nil {
			return err
		}
		for _, c := range consoles.Results {
			fmt.Printf("%s\t%s\n", c.ServerID, c.Name)
		}
		return nil
	case "stream":
		return stream(ctx, log, client, platform, titleID, serverID, stunURL, tokens.TransferToken)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func stream(ctx context.Context, log zerolog.Logger, client *gssv.Client, platform gssv.Platform, titleID, serverID, stunURL, transferToken string) error {
	engine, err := webrtcengine.New(stunURL, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	cfg := coordinator.Config{
		Platform:          platform,
		TitleID:           titleID,
		ServerID:          serverID,
		StunURL:           stunURL,
		KeepaliveInterval: 20 * time.Second,
	}
	c := coordinator.New(client, engine, cfg, log)

	return c.Run(ctx, transferToken)
}
