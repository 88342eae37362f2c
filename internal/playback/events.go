package playback

// EventType names a widget lifecycle event.
type EventType string

const (
	EventReady    EventType = "ready"
	EventPlay     EventType = "play"
	EventPause    EventType = "pause"
	EventEnded    EventType = "ended"
	EventProgress EventType = "progress"
)

// Event is a lifecycle callback from the widget. Key, when set, names the
// mix the widget had loaded; events for any other mix are dropped.
type Event struct {
	Type     EventType `json:"event"`
	Key      string    `json:"key,omitempty"`
	Position float64   `json:"position,omitempty"`
	Duration float64   `json:"duration,omitempty"`
}

func (t EventType) Valid() bool {
	switch t {
	case EventReady, EventPlay, EventPause, EventEnded, EventProgress:
		return true
	}
	return false
}
