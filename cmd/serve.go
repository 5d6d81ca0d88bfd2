package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/galaxykit/holocron/internal/api"
	"github.com/galaxykit/holocron/internal/catalog"
	"github.com/galaxykit/holocron/internal/schema"
	"github.com/galaxykit/holocron/internal/source"
	"github.com/galaxykit/holocron/internal/syncer"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  "Run the HTTP API server. Configuration comes from HOLOCRON_* environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := api.LoadConfig()
		setupLogger(cfg)

		store, err := catalog.Open(cfg.DBPath, schema.All())
		if err != nil {
			slog.Error("open store", "err", err)
			os.Exit(1)
		}
		defer store.Close()

		engine := syncer.New(store, source.New(cfg.PageTimeout))
		srv := api.NewServer(cfg, store, engine)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Start(); err != nil {
			slog.Error("start server", "err", err)
			os.Exit(1)
		}
		slog.Info("server started", "addr", cfg.ListenAddr, "db", cfg.DBPath)

		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "err", err)
		}
		return nil
	},
}

// setupLogger configures the default slog logger from config.
func setupLogger(cfg api.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
