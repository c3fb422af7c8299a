package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dan-ince-aai/pipecheetah/config"
	"github.com/dan-ince-aai/pipecheetah/internal/idgen"
	"github.com/dan-ince-aai/pipecheetah/metrics"
	"github.com/dan-ince-aai/pipecheetah/transport/ws"
)

type cliArgs struct {
	configPath string
	logLevel   string
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
		configPath: "",
		logLevel:   "info",
	}
	flag.StringVar(&args.configPath, "config", args.configPath, "path to yaml config file")
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

	cfg, err := config.Load(args.configPath)
	if err != nil {
		log.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// one identifier per server instance, used in recording filenames
	serverName := fmt.Sprintf("server_%s", idgen.ID())

	srv := ws.NewServer(ws.ServerConfig{
		Addr: cfg.Server.Addr,
		Path: cfg.Server.Path,
	})
	srv.Handle("/metrics", promhttp.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server failed to start", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("voice pipeline server running",
		slog.String("addr", cfg.Server.Addr),
		slog.String("path", cfg.Server.Path),
		slog.String("server_name", serverName),
	)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown failed", slog.Any("err", err))
			}
			cancel()
			log.Info("terminated")
			return

		case sess := <-srv.Channel():
			go runBot(ctx, cfg, m, serverName, sess)
		}
	}
}
