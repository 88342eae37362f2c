package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jaki95/mixplayer/internal/storage"
)

// ThemeKey is where the theme preference lives in client storage.
const ThemeKey = "theme"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

var ErrInvalidTheme = errors.New("invalid theme")

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Preferences caches the stored theme and writes changes through.
type Preferences struct {
	mu    sync.RWMutex
	store storage.Storage
	theme Theme
}

func New(ctx context.Context, store storage.Storage) *Preferences {
	p := &Preferences{store: store, theme: DefaultTheme}
	if store == nil {
		return p
	}

	data, err := store.Get(ctx, ThemeKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to load theme preference", "error", err)
		}
		return p
	}

	var saved Theme
	if err := json.Unmarshal(data, &saved); err != nil || !saved.Valid() {
		slog.Warn("Ignoring stored theme preference", "value", string(data))
		return p
	}
	p.theme = saved
	return p
}

func (p *Preferences) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

func (p *Preferences) SetTheme(ctx context.Context, theme Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	p.mu.Lock()
	p.theme = theme
	p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	data, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, ThemeKey, data); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
