package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/storage"
)

// StorageKey is where the progress map lives in client storage.
const StorageKey = "mixProgress"

// Event is emitted after every progress change.
type Event struct {
	Key      string             `json:"key"`
	Progress domain.MixProgress `json:"progress"`
}

// Tracker owns the per-mix progress map. Entries are created on first
// update and never deleted; every change is written through to storage.
type Tracker struct {
	mu        sync.RWMutex
	store     storage.Storage
	clock     clock.Clock
	entries   map[string]domain.MixProgress
	listeners []func(Event)

	// version counts changes; written is the newest version in storage.
	// persistMu orders writes so an older snapshot never replaces a newer one.
	version   uint64
	persistMu sync.Mutex
	written   uint64
}

// NewTracker loads the saved map from store. A missing or unreadable map
// starts empty.
func NewTracker(ctx context.Context, store storage.Storage, clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}

	t := &Tracker{
		store:   store,
		clock:   clk,
		entries: make(map[string]domain.MixProgress),
	}

	if store == nil {
		return t
	}

	data, err := store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		slog.Warn("Failed to load mix progress", "error", err)
	default:
		if err := json.Unmarshal(data, &t.entries); err != nil {
			slog.Warn("Discarding malformed mix progress", "error", err)
			t.entries = make(map[string]domain.MixProgress)
		}
	}

	slog.Debug("Mix progress loaded", "entries", len(t.entries))
	return t
}

// AddListener adds a new progress event listener
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Update upserts the entry for key and returns it.
//
// The status is complete when position reaches the end of the mix. A zero
// position on a key never seen before is unplayed; anything else is in
// progress.
func (t *Tracker) Update(ctx context.Context, key string, position, duration float64) domain.MixProgress {
	if position < 0 {
		position = 0
	}
	if duration > 0 && position > duration {
		position = duration
	}

	t.mu.Lock()
	prev, existed := t.entries[key]
	if duration <= 0 && existed {
		duration = prev.Duration
	}

	entry := domain.MixProgress{
		Duration:   duration,
		Position:   position,
		LastPlayed: t.clock.Now(),
	}
	switch {
	case domain.IsComplete(position, duration):
		entry.Status = domain.StatusComplete
	case position == 0 && !existed:
		entry.Status = domain.StatusUnplayed
	default:
		entry.Status = domain.StatusInProgress
	}

	t.entries[key] = entry
	t.version++
	version := t.version
	snapshot := t.copyLocked()
	listeners := append([]func(Event){}, t.listeners...)
	t.mu.Unlock()

	t.persist(ctx, version, snapshot)

	for _, listener := range listeners {
		listener(Event{Key: key, Progress: entry})
	}
	return entry
}

func (t *Tracker) persist(ctx context.Context, version uint64, entries map[string]domain.MixProgress) {
	if t.store == nil {
		return
	}

	t.persistMu.Lock()
	defer t.persistMu.Unlock()
	if version <= t.written {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		slog.Error("Failed to encode mix progress", "error", err)
		return
	}
	if err := t.store.Set(ctx, StorageKey, data); err != nil {
		slog.Warn("Failed to save mix progress", "error", err)
		return
	}
	t.written = version
}

func (t *Tracker) Get(key string) (domain.MixProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[key]
	return entry, ok
}

// All returns a copy of every entry.
func (t *Tracker) All() map[string]domain.MixProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyLocked()
}

func (t *Tracker) copyLocked() map[string]domain.MixProgress {
	out := make(map[string]domain.MixProgress, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
