package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"minebridge/internal/bridge"
	"minebridge/internal/persistence/actionlog"
	"minebridge/internal/persistence/archive"
	"minebridge/internal/session"
	"minebridge/internal/toolsrv"
	"minebridge/internal/tuning"
	"minebridge/internal/upstream"
)

func main() {
	_ = godotenv.Load()

	var (
		listen     = flag.String("listen", envOr("MB_LISTEN", "127.0.0.1:8077"), "http listen address")
		gameWSURL  = flag.String("game-ws-url", envOr("MB_GAME_WS_URL", "ws://127.0.0.1:8085/agent"), "game client ws url")
		tuningPath = flag.String("tuning", envOr("MB_TUNING", "./tuning.yaml"), "tuning yaml path")
		dataDir    = flag.String("data-dir", envOr("MB_DATA_DIR", "./data"), "persistence directory")
		logLevel   = flag.String("log-level", envOr("MB_LOG_LEVEL", "info"), "debug|info|warn|error")
	)
	flag.Parse()

	log := newLogger(*logLevel)

	tun, err := tuning.Load(*tuningPath)
	if err != nil {
		log.Error("tuning load failed", "path", *tuningPath, "err", err)
		os.Exit(1)
	}

	alog := actionlog.NewWriter(*dataDir+"/actions", "actions")
	defer alog.Close()

	arch, err := archive.Open(*dataDir + "/archive.db")
	if err != nil {
		log.Error("archive open failed", "err", err)
		os.Exit(1)
	}
	defer arch.Close()

	br := bridge.New(bridge.Config{
		Dial: func(ctx context.Context, agent string) (upstream.Surface, error) {
			return upstream.Dial(ctx, *gameWSURL, agent, log)
		},
		Tuning:    tun,
		Log:       log,
		ActionLog: alog,
		Archive:   arch,
		Behaviors: session.Config{
			AutoFeed: session.FeedConfig{Enabled: true, Threshold: tun.Behaviors.FeedThreshold},
		},
	})
	defer br.Close()

	srv, err := toolsrv.NewServer(br, log)
	if err != nil {
		log.Error("tool server init failed", "err", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", *listen, "game_ws", *gameWSURL)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("listen failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
