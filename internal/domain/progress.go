package domain

import "time"

// ProgressStatus is the listening state of a mix.
type ProgressStatus string

const (
	StatusUnplayed   ProgressStatus = "unplayed"
	StatusInProgress ProgressStatus = "in_progress"
	StatusComplete   ProgressStatus = "complete"
)

// CompletionEpsilon is how close to the end a position must be to count as complete.
const CompletionEpsilon = 1.0

// MixProgress is the persisted playback position of one mix.
type MixProgress struct {
	Duration   float64        `json:"duration"`
	Position   float64        `json:"position"`
	LastPlayed time.Time      `json:"lastPlayed"`
	Status     ProgressStatus `json:"status"`
}

// IsComplete reports whether position has reached the end of the mix.
func IsComplete(position, duration float64) bool {
	return duration > 0 && position >= duration-CompletionEpsilon
}
