package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jaki95/mixplayer/internal/playback"
	"github.com/jaki95/mixplayer/internal/progress"
)

// StartCatalogWatcher reloads the catalog when the data directory changes,
// until ctx is cancelled. It does nothing unless data.watch is enabled.
func (s *Server) StartCatalogWatcher(ctx context.Context) {
	if !s.cfg.Data.Watch {
		return
	}
	go func() {
		if err := s.catalog.Watch(ctx); err != nil {
			slog.Error("Catalog watcher stopped", "error", err)
		}
	}()
	slog.Info("Catalog watcher started", "dir", s.cfg.Data.Dir)
}

// LogPlayerChanges logs transitions of the player phase and current mix.
func (s *Server) LogPlayerChanges() func() {
	var (
		mu   sync.Mutex
		last playback.State
	)
	return s.player.Subscribe(func(state playback.State) {
		mu.Lock()
		defer mu.Unlock()
		if state.Phase == last.Phase && state.CurrentKey == last.CurrentKey && state.Error == last.Error {
			return
		}
		slog.Info("Player state changed",
			"phase", state.Phase,
			"currentKey", state.CurrentKey,
			"index", state.CurrentIndex,
			"mixes", len(state.Keys),
			"error", state.Error,
		)
		last = state
	})
}

// LogProgress logs every saved progress change at debug level.
func (s *Server) LogProgress() {
	s.progress.AddListener(func(e progress.Event) {
		slog.Debug("Mix progress saved",
			"key", e.Key,
			"status", e.Progress.Status,
			"position", e.Progress.Position,
			"duration", e.Progress.Duration,
		)
	})
}
