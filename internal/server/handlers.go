package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaki95/mixplayer/internal/catalog"
	"github.com/jaki95/mixplayer/internal/domain"
)

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "mixplayer",
	}
	if s.widget != nil {
		response["widgetConnected"] = s.widget.Connected()
	}
	c.JSON(http.StatusOK, response)
}

// listMixes godoc
// @Summary List mixes
// @Description Lists mixes in list order, narrowed by the optional filters.
// @Tags Catalog
// @Produce json
// @Param category query string false "Category code"
// @Param name query string false "Name substring"
// @Param notes query string false "Notes substring"
// @Param tags query string false "Comma separated tag substrings"
// @Param date query string false "YYYY-MM or YYYY"
// @Success 200 {array} domain.Mix
// @Router /api/mixes [get]
func (s *Server) listMixes(c *gin.Context) {
	var filters domain.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid filters: %v", err)})
		return
	}
	c.JSON(200, s.catalog.Mixes(filters))
}

// randomMix godoc
// @Summary Pick a random mix
// @Tags Catalog
// @Produce json
// @Success 200 {object} domain.Mix
// @Failure 404 {object} ErrorResponse
// @Router /api/mixes/random [get]
func (s *Server) randomMix(c *gin.Context) {
	var filters domain.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid filters: %v", err)})
		return
	}
	mix, err := s.catalog.RandomMix(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, mix)
}

// recentMixes godoc
// @Summary Most recently uploaded mixes
// @Tags Catalog
// @Produce json
// @Param limit query int false "Maximum number of mixes"
// @Success 200 {array} domain.Mix
// @Router /api/mixes/recent [get]
func (s *Server) recentMixes(c *gin.Context) {
	c.JSON(200, s.catalog.Recent(queryLimit(c, DefaultRecentLimit)))
}

// getMix godoc
// @Summary Get a mix by key
// @Tags Catalog
// @Produce json
// @Param key path string true "Mix key, e.g. /artist/mix-name/"
// @Success 200 {object} domain.Mix
// @Failure 404 {object} ErrorResponse
// @Router /api/mix/{key} [get]
func (s *Server) getMix(c *gin.Context) {
	mix, err := s.catalog.Mix(mixKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, mix)
}

// getTracks godoc
// @Summary Tracklist of a mix, ordered by start time
// @Tags Catalog
// @Produce json
// @Param key path string true "Mix key"
// @Success 200 {array} domain.Track
// @Failure 404 {object} ErrorResponse
// @Router /api/tracks/{key} [get]
func (s *Server) getTracks(c *gin.Context) {
	tracks, err := s.catalog.Tracks(mixKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, tracks)
}

// writeMix godoc
// @Summary Create or replace a mix
// @Description The catalog is read-only; this always fails.
// @Tags Catalog
// @Accept json
// @Failure 405 {object} ErrorResponse
// @Router /api/mixes [post]
func (s *Server) writeMix(c *gin.Context) {
	var mix domain.Mix
	// The catalog refuses writes whatever the body holds.
	_ = c.ShouldBindJSON(&mix)
	respondError(c, s.catalog.Put(mix))
}

// deleteMix godoc
// @Summary Delete a mix
// @Description The catalog is read-only; this always fails.
// @Tags Catalog
// @Failure 405 {object} ErrorResponse
// @Router /api/mix/{key} [delete]
func (s *Server) deleteMix(c *gin.Context) {
	respondError(c, s.catalog.Delete(mixKey(c)))
}

// listCategories godoc
// @Summary List mix categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.Category
// @Router /api/categories [get]
func (s *Server) listCategories(c *gin.Context) {
	c.JSON(200, s.catalog.Categories())
}

// listBackgroundCategories godoc
// @Summary List background categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.BackgroundCategory
// @Router /api/background-categories [get]
func (s *Server) listBackgroundCategories(c *gin.Context) {
	c.JSON(200, s.catalog.BackgroundCategories())
}

// listBackgrounds godoc
// @Summary List backgrounds
// @Description With random=true a single random background is returned instead.
// @Tags Catalog
// @Produce json
// @Param category query string false "Background category code"
// @Param random query bool false "Return one random background"
// @Success 200 {array} domain.Background
// @Failure 404 {object} ErrorResponse
// @Router /api/backgrounds [get]
func (s *Server) listBackgrounds(c *gin.Context) {
	category := c.Query("category")
	if !queryBool(c, "random") {
		c.JSON(200, s.catalog.Backgrounds(category))
		return
	}

	bg, ok := s.catalog.RandomBackground(category)
	if !ok {
		respondError(c, fmt.Errorf("%w: no backgrounds in category %q", catalog.ErrNotFound, category))
		return
	}
	c.JSON(200, bg)
}

// stats godoc
// @Summary Dataset statistics
// @Tags Catalog
// @Produce json
// @Success 200 {object} catalog.Stats
// @Router /api/stats [get]
func (s *Server) stats(c *gin.Context) {
	c.JSON(200, s.catalog.Stats())
}

// listTags godoc
// @Summary Every distinct tag
// @Tags Catalog
// @Produce json
// @Success 200 {array} string
// @Router /api/tags [get]
func (s *Server) listTags(c *gin.Context) {
	c.JSON(200, s.catalog.Tags())
}

// search godoc
// @Summary Fuzzy search across mixes and tracks
// @Tags Catalog
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Maximum number of results"
// @Success 200 {array} catalog.SearchResult
// @Failure 400 {object} ErrorResponse
// @Router /api/search [get]
func (s *Server) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(400, ErrorResponse{Error: "query parameter q is required"})
		return
	}
	c.JSON(200, s.catalog.Search(q, queryLimit(c, catalog.DefaultSearchLimit)))
}
