package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/jaki95/mixplayer/config"
	"github.com/jaki95/mixplayer/internal/catalog"
	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/overlay"
	"github.com/jaki95/mixplayer/internal/playback"
	"github.com/jaki95/mixplayer/internal/preferences"
	"github.com/jaki95/mixplayer/internal/progress"
	"github.com/jaki95/mixplayer/internal/server"
	"github.com/jaki95/mixplayer/internal/storage"
	"github.com/jaki95/mixplayer/internal/widget"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to the YAML configuration")
	port := flag.String("port", "", "Server port (overrides server.port)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Error("Failed to create storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if keys, err := store.Keys(ctx); err != nil {
		slog.Warn("Failed to list client storage keys", "error", err)
	} else {
		slog.Info("Client storage ready", "type", cfg.Storage.Type, "keys", keys)
	}

	clk := clock.New()
	cat := catalog.New(cfg.Data.Dir)
	tracker := progress.NewTracker(ctx, store, clk)
	prefs := preferences.New(ctx, store)

	bridge := widget.NewBridge()
	player := playback.New(bridge, cat, tracker, playback.Options{
		ProgressInterval: cfg.Playback.ProgressInterval.Std(),
		ShareMessageTTL:  cfg.Playback.ShareMessageTTL.Std(),
		ShareBaseURL:     cfg.Playback.ShareBaseURL,
		WidgetBaseURL:    cfg.Widget.BaseURL,
		TrackTolerance:   cfg.Playback.TrackTolerance,
		Clock:            clk,
	})
	defer player.Close()
	bridge.SetHandler(player.HandleEvent)
	bridge.OnConnect(player.Resync)
	defer bridge.Close()

	modal := overlay.NewModal(clk, cfg.UI.ModalCloseGrace.Std())
	defer modal.Stop()
	ui := overlay.New()
	modal.OnChange(func(open bool) { ui.SetModalOpen(open) })

	srv := server.New(cfg, server.Deps{
		Catalog:     cat,
		Player:      player,
		Progress:    tracker,
		Preferences: prefs,
		Modal:       modal,
		Overlay:     ui,
		Widget:      bridge,
	})
	srv.StartCatalogWatcher(ctx)
	srv.LogProgress()
	defer srv.LogPlayerChanges()()

	if err := player.LoadMixes(ctx, domain.Filters{}); err != nil {
		slog.Warn("Initial playlist load failed", "error", err)
	}

	slog.Info("Starting mix player API server", "port", cfg.Server.Port, "data", cfg.Data.Dir, "storage", cfg.Storage.Type)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
