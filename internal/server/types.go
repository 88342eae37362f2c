package server

import (
	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/overlay"
	"github.com/jaki95/mixplayer/internal/playback"
)

// LoadRequest selects a new playlist
type LoadRequest struct {
	Filters domain.Filters `json:"filters"`
	Target  *int           `json:"target,omitempty"`
}

type SeekRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

type VolumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

type GoToRequest struct {
	Index             *int `json:"index" binding:"required"`
	FromSavedPosition bool `json:"fromSavedPosition"`
}

// ShuffleRequest sets shuffle mode. Without On the mode is toggled.
type ShuffleRequest struct {
	On *bool `json:"on,omitempty"`
}

// MenuRequest opens or closes the menu. Without Open the menu is toggled.
type MenuRequest struct {
	Open *bool `json:"open,omitempty"`
}

type ProgressRequest struct {
	Key      string  `json:"key" binding:"required"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

type ThemeResponse struct {
	Theme string `json:"theme"`
}

// ShareResponse carries the copied link alongside the player state
type ShareResponse struct {
	Link  string         `json:"link"`
	State playback.State `json:"state"`
}

type UIResponse struct {
	Modal   overlay.ModalState `json:"modal"`
	Overlay overlay.State      `json:"overlay"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
