package playback

import "github.com/jaki95/mixplayer/internal/domain"

// Phase is the coarse lifecycle of the coordinator.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhasePlaying Phase = "playing"
	PhasePaused  Phase = "paused"
	PhaseError   Phase = "error"
)

// State is an immutable snapshot of the coordinator.
type State struct {
	Phase             Phase                         `json:"phase"`
	IsPlaying         bool                          `json:"isPlaying"`
	IsLoading         bool                          `json:"isLoading"`
	WidgetReady       bool                          `json:"widgetReady"`
	WidgetURL         string                        `json:"widgetUrl,omitempty"`
	CurrentIndex      int                           `json:"currentIndex"`
	CurrentKey        string                        `json:"currentKey"`
	CurrentTrackIndex int                           `json:"currentTrackIndex"`
	CurrentTrack      *domain.Track                 `json:"currentTrack,omitempty"`
	Duration          float64                       `json:"duration"`
	Position          float64                       `json:"position"`
	Volume            float64                       `json:"volume"`
	Keys              []string                      `json:"keys"`
	ShuffleMode       bool                          `json:"shuffleMode"`
	MixProgress       map[string]domain.MixProgress `json:"mixProgress"`
	Filters           domain.Filters                `json:"filters"`
	Error             string                        `json:"error,omitempty"`
	ShareMessage      string                        `json:"shareMessage,omitempty"`
}
