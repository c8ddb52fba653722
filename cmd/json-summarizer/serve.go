// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/profile"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/server"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the summarization HTTP API",
	Long: `Serve starts the HTTP API: POST /v1/summarize-json (with optional SSE
streaming), POST /v1/chat, GET /v1/profiles, and GET /healthz. Profiles
are loaded from the configured directory and, with profiles.watch
enabled, reloaded when their files change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger := newLogger(cmd)
	defer logger.Sync()

	profiles := profile.NewRegistry(logger)
	if err := profiles.LoadDirectory(cfg.Profiles.Dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Profiles.Watch {
		watcher, err := profile.NewWatcher(profiles, cfg.Profiles.Dir, logger)
		if err != nil {
			logger.Warn("profile watcher unavailable", zap.Error(err))
		} else {
			watcher.Start(ctx)
			defer watcher.Close()
		}
	}

	srv := server.NewServer(cfg, logger, summarize.NewRegistry(), profiles, version)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
