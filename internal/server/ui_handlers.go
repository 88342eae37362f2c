package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jaki95/mixplayer/internal/overlay"
	"github.com/jaki95/mixplayer/internal/preferences"
)

// uiState godoc
// @Summary Modal and overlay state
// @Tags UI
// @Produce json
// @Success 200 {object} UIResponse
// @Router /api/ui [get]
func (s *Server) uiState(c *gin.Context) {
	c.JSON(200, UIResponse{Modal: s.modal.State(), Overlay: s.overlay.State()})
}

// openModal godoc
// @Summary Open the modal
// @Description Replaces anything already shown. autoCloseTimeout is in milliseconds.
// @Tags UI
// @Accept json
// @Produce json
// @Param request body overlay.Content true "Modal content"
// @Success 200 {object} UIResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/ui/modal [post]
func (s *Server) openModal(c *gin.Context) {
	content, ok := bindContent(c)
	if !ok {
		return
	}
	modal := s.modal.Open(content)
	c.JSON(200, UIResponse{Modal: modal, Overlay: s.overlay.State()})
}

// switchModal godoc
// @Summary Swap modal content without a transition
// @Tags UI
// @Accept json
// @Produce json
// @Param request body overlay.Content true "Modal content"
// @Success 200 {object} UIResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/ui/modal/switch [post]
func (s *Server) switchModal(c *gin.Context) {
	content, ok := bindContent(c)
	if !ok {
		return
	}
	modal := s.modal.Switch(content)
	c.JSON(200, UIResponse{Modal: modal, Overlay: s.overlay.State()})
}

func bindContent(c *gin.Context) (overlay.Content, bool) {
	var content overlay.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid modal content: %v", err)})
		return content, false
	}
	return content, true
}

// closeModal godoc
// @Summary Close the modal
// @Description Content stays readable for a short grace period after closing.
// @Tags UI
// @Produce json
// @Success 200 {object} UIResponse
// @Router /api/ui/modal [delete]
func (s *Server) closeModal(c *gin.Context) {
	modal := s.modal.Close()
	c.JSON(200, UIResponse{Modal: modal, Overlay: s.overlay.State()})
}

// setMenu godoc
// @Summary Open, close or toggle the menu
// @Tags UI
// @Accept json
// @Produce json
// @Param request body MenuRequest false "Desired state; toggles when omitted"
// @Success 200 {object} UIResponse
// @Router /api/ui/menu [post]
func (s *Server) setMenu(c *gin.Context) {
	var req MenuRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}
	}

	var state overlay.State
	if req.Open == nil {
		state = s.overlay.ToggleMenu()
	} else {
		state = s.overlay.SetMenuOpen(*req.Open)
	}
	c.JSON(200, UIResponse{Modal: s.modal.State(), Overlay: state})
}

// closeAll godoc
// @Summary Close the modal and the menu
// @Tags UI
// @Produce json
// @Success 200 {object} UIResponse
// @Router /api/ui/close-all [post]
func (s *Server) closeAll(c *gin.Context) {
	modal := s.modal.Close()
	state := s.overlay.CloseAll()
	c.JSON(200, UIResponse{Modal: modal, Overlay: state})
}

// getTheme godoc
// @Summary Current theme
// @Tags Preferences
// @Produce json
// @Success 200 {object} ThemeResponse
// @Router /api/preferences/theme [get]
func (s *Server) getTheme(c *gin.Context) {
	c.JSON(200, ThemeResponse{Theme: string(s.prefs.Theme())})
}

// setTheme godoc
// @Summary Change the theme
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body ThemeRequest true "dark or light"
// @Success 200 {object} ThemeResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/preferences/theme [put]
func (s *Server) setTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := s.prefs.SetTheme(c.Request.Context(), preferences.Theme(req.Theme)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, ThemeResponse{Theme: string(s.prefs.Theme())})
}
