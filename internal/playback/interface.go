package playback

import (
	"context"
	"errors"

	"github.com/jaki95/mixplayer/internal/domain"
)

var (
	// ErrWidgetNotReady is returned by a Widget that has nothing attached to
	// send commands to.
	ErrWidgetNotReady = errors.New("widget not ready")

	// ErrNoMixes is returned by operations that need a current mix.
	ErrNoMixes = errors.New("no mixes loaded")

	// ErrSuperseded is returned by LoadMixes when a later load was issued
	// before this one resolved. Its result was discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// Widget is the embedded third-party player. It plays whatever source URL
// it was last given and reports back through Coordinator.HandleEvent.
type Widget interface {
	Load(url string) error
	Play() error
	Pause() error
	Seek(position float64) error
	SetVolume(volume float64) error
}

// MixSource answers playlist queries.
type MixSource interface {
	MixKeys(ctx context.Context, filters domain.Filters) ([]string, error)
	Tracks(key string) ([]domain.Track, error)
}

// ProgressRecorder stores per-mix playback progress.
type ProgressRecorder interface {
	Update(ctx context.Context, key string, position, duration float64) domain.MixProgress
	Get(key string) (domain.MixProgress, bool)
	All() map[string]domain.MixProgress
}

// Clipboard receives share links.
type Clipboard interface {
	WriteAll(text string) error
}
