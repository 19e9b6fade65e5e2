// Command server runs the Marvel character catalog API.
//
// main stays small: load config, build the logger, hand both to the server.
// Everything else lives under internal/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/marvel-catalog/internal/config"
	"github.com/sakif/marvel-catalog/internal/server"
)

func main() {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		// no configured logger yet
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
