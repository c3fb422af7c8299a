package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/duplex"
	"github.com/dan-ince-aai/pipecheetah/transport/ws"
	"github.com/dan-ince-aai/pipecheetah/wire"
)

const (
	captureSampleRate  = 16000
	playbackSampleRate = 24000

	// ~10 seconds of 24 kHz mono s16le
	playbackBufferSize = playbackSampleRate * 2 * 10
)

type cliArgs struct {
	url      string
	logLevel string
}

func (a *cliArgs) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(a.logLevel)); err != nil {
		panic(fmt.Errorf("invalid log level [%s]: %w", a.logLevel, err))
	}
	return lvl
}

func initCLI() *cliArgs {
	args := cliArgs{
		url:      "ws://localhost:8765/ws",
		logLevel: "info",
	}
	flag.StringVar(&args.url, "url", args.url, "server websocket URI")
	flag.StringVar(&args.logLevel, "log-level", args.logLevel, "log level")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: args.LogLevel(),
	})))

	return &args
}

func main() {
	args := initCLI()
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// run owns all the defers, so devices are released before the
	// process exits regardless of how the session ended
	if err := run(ctx, args, log); err != nil {
		log.Error("session ended with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("terminated")
}

func run(ctx context.Context, args *cliArgs, log *slog.Logger) error {
	log.Info("connecting", slog.String("url", args.url))
	conn, err := ws.Dial(ctx, ws.DialConfig{URL: args.url})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	// announce our capture format before any audio flows
	startMsg, err := wire.EncodeStart(captureSampleRate, 1)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, startMsg); err != nil {
		return fmt.Errorf("send start message: %w", err)
	}

	playback := audio.NewBuffer(playbackBufferSize)
	streamer := duplex.New(conn, playback)

	devices, err := openAudio(streamer, playback)
	if err != nil {
		return fmt.Errorf("audio setup: %w", err)
	}

	log.Info("full-duplex audio stream started")

	return streamSession(ctx, streamer, playback, devices)
}

// streamSession drives the streamer and releases the audio devices and
// playback buffer on every exit path, error or not.
func streamSession(ctx context.Context, streamer *duplex.Streamer, playback *audio.Buffer, devices interface{ Close() }) error {
	defer devices.Close()
	defer playback.Close()

	err := streamer.Run(ctx)

	if n := streamer.Dropped(); n > 0 {
		slog.Warn("capture chunks dropped", slog.Uint64("count", n))
	}
	return err
}
