// Package main is the entry point for the blog API server. It reads the
// configuration, prepares the data directories, and hands off to the
// server package.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkarpinski/blog-api/internal/config"
	"github.com/mkarpinski/blog-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.UploadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
