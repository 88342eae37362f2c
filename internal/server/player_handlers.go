package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jaki95/mixplayer/internal/playback"
)

// playerState godoc
// @Summary Current player state
// @Tags Player
// @Produce json
// @Success 200 {object} playback.State
// @Router /api/player [get]
func (s *Server) playerState(c *gin.Context) {
	c.JSON(200, s.player.State())
}

// playerAction wraps a parameterless player command. The response is the
// state after the command; transport flags change only once the widget
// confirms.
func (s *Server) playerAction(action func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		action()
		c.JSON(200, s.player.State())
	}
}

// loadMixes godoc
// @Summary Load a playlist
// @Description Replaces the playlist with the mixes matching the filters. A load
// @Description overtaken by a newer one returns the newer state.
// @Tags Player
// @Accept json
// @Produce json
// @Param request body LoadRequest true "Filters and optional target index"
// @Success 200 {object} playback.State
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/player/load [post]
func (s *Server) loadMixes(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	var target []int
	if req.Target != nil {
		target = append(target, *req.Target)
	}

	if err := s.player.LoadMixes(c.Request.Context(), req.Filters, target...); err != nil && !playback.IsSuperseded(err) {
		respondError(c, err)
		return
	}
	c.JSON(200, s.player.State())
}

// setShuffle godoc
// @Summary Set or toggle shuffle mode
// @Tags Player
// @Accept json
// @Produce json
// @Param request body ShuffleRequest false "Desired mode; toggles when omitted"
// @Success 200 {object} playback.State
// @Router /api/player/shuffle [post]
func (s *Server) setShuffle(c *gin.Context) {
	var req ShuffleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}
	}

	if req.On == nil {
		s.player.ToggleShuffle()
	} else {
		s.player.SetShuffle(*req.On)
	}
	c.JSON(200, s.player.State())
}

// seek godoc
// @Summary Seek within the current mix
// @Tags Player
// @Accept json
// @Produce json
// @Param request body SeekRequest true "Position in seconds"
// @Success 200 {object} playback.State
// @Failure 400 {object} ErrorResponse
// @Router /api/player/seek [post]
func (s *Server) seek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.player.Seek(*req.Position)
	c.JSON(200, s.player.State())
}

// setVolume godoc
// @Summary Set the volume
// @Tags Player
// @Accept json
// @Produce json
// @Param request body VolumeRequest true "Volume between 0 and 1"
// @Success 200 {object} playback.State
// @Failure 400 {object} ErrorResponse
// @Router /api/player/volume [post]
func (s *Server) setVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.player.SetVolume(*req.Volume)
	c.JSON(200, s.player.State())
}

// goToTrack godoc
// @Summary Jump to a mix in the playlist
// @Tags Player
// @Accept json
// @Produce json
// @Param request body GoToRequest true "Playlist index"
// @Success 200 {object} playback.State
// @Failure 400 {object} ErrorResponse
// @Router /api/player/goto [post]
func (s *Server) goToTrack(c *gin.Context) {
	var req GoToRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if n := len(s.player.State().Keys); *req.Index < 0 || *req.Index >= n {
		respondError(c, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, *req.Index, n))
		return
	}
	s.player.GoToTrack(*req.Index, req.FromSavedPosition)
	c.JSON(200, s.player.State())
}

// share godoc
// @Summary Copy a link to the current mix
// @Tags Player
// @Produce json
// @Success 200 {object} ShareResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/player/share [post]
func (s *Server) share(c *gin.Context) {
	link, err := s.player.ShareCurrentMix()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, ShareResponse{Link: link, State: s.player.State()})
}

// listProgress godoc
// @Summary Saved progress for every mix
// @Tags Player
// @Produce json
// @Success 200 {object} map[string]domain.MixProgress
// @Router /api/player/progress [get]
func (s *Server) listProgress(c *gin.Context) {
	c.JSON(200, s.progress.All())
}

// updateProgress godoc
// @Summary Record progress for a mix
// @Tags Player
// @Accept json
// @Produce json
// @Param request body ProgressRequest true "Mix key and position"
// @Success 200 {object} domain.MixProgress
// @Failure 400 {object} ErrorResponse
// @Router /api/player/progress [post]
func (s *Server) updateProgress(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.player.UpdateMixProgress(c.Request.Context(), req.Key, req.Position, req.Duration)
	entry, _ := s.progress.Get(req.Key)
	c.JSON(200, entry)
}
