package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sglre6355/todbot/internal/bot"
	_ "github.com/sglre6355/todbot/internal/modules/truth_or_dare"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/todbot
var version = "dev"

const readHeaderTimeout = 5 * time.Second

func main() {
	// Configure JSON logging until the configured logger is available
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	logger.Info("starting todbot", "version", version)

	if err := run(cfg, logger); err != nil {
		logger.Error("bot exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("completed bot shutdown")
}

func run(cfg *bot.Config, logger *slog.Logger) error {
	publicKey, err := cfg.VerifyKey()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and configure bot
	b := bot.NewBot(cfg, logger)
	b.LoadModules()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           bot.NewServer(b, publicKey),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening for interactions", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received termination signal, shutting down")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server", "error", err)
	}
	if err := b.Stop(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown bot", "error", err)
	}

	return runErr
}
