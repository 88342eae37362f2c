package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaki95/mixplayer/internal/catalog"
	"github.com/jaki95/mixplayer/internal/playback"
	"github.com/jaki95/mixplayer/internal/preferences"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// statusFor maps package sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, playback.ErrNoMixes):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, preferences.ErrInvalidTheme), errors.Is(err, ErrIndexOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}
