package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaki95/mixplayer/config"
	"github.com/jaki95/mixplayer/internal/catalog"
	"github.com/jaki95/mixplayer/internal/overlay"
	"github.com/jaki95/mixplayer/internal/playback"
	"github.com/jaki95/mixplayer/internal/preferences"
	"github.com/jaki95/mixplayer/internal/progress"
)

const shutdownTimeout = 5 * time.Second

// Deps are the components the HTTP API exposes.
type Deps struct {
	Catalog     *catalog.Catalog
	Player      *playback.Coordinator
	Progress    *progress.Tracker
	Preferences *preferences.Preferences
	Modal       *overlay.Modal
	Overlay     *overlay.Overlay

	// Widget upgrades /ws/widget to the widget bridge. Optional.
	Widget WidgetEndpoint
}

// WidgetEndpoint is the websocket side of the widget bridge.
type WidgetEndpoint interface {
	http.Handler
	Connected() bool
}

// Server handles HTTP requests for the mix player
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	catalog  *catalog.Catalog
	player   *playback.Coordinator
	progress *progress.Tracker
	prefs    *preferences.Preferences
	modal    *overlay.Modal
	overlay  *overlay.Overlay
	widget   WidgetEndpoint
}

// New creates a new HTTP server instance
func New(cfg *config.Config, deps Deps) *Server {
	router := gin.Default()

	server := &Server{
		cfg:      cfg,
		router:   router,
		catalog:  deps.Catalog,
		player:   deps.Player,
		progress: deps.Progress,
		prefs:    deps.Preferences,
		modal:    deps.Modal,
		overlay:  deps.Overlay,
		widget:   deps.Widget,
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.GET("/mixes", s.listMixes)
		api.GET("/mixes/random", s.randomMix)
		api.GET("/mixes/recent", s.recentMixes)
		api.POST("/mixes", s.writeMix)
		api.PUT("/mixes", s.writeMix)
		api.GET("/mix/*key", s.getMix)
		api.DELETE("/mix/*key", s.deleteMix)
		api.GET("/tracks/*key", s.getTracks)
		api.GET("/categories", s.listCategories)
		api.GET("/background-categories", s.listBackgroundCategories)
		api.GET("/backgrounds", s.listBackgrounds)
		api.GET("/stats", s.stats)
		api.GET("/tags", s.listTags)
		api.GET("/search", s.search)

		player := api.Group("/player")
		{
			player.GET("", s.playerState)
			player.POST("/load", s.loadMixes)
			player.POST("/play", s.playerAction(s.player.Play))
			player.POST("/pause", s.playerAction(s.player.Pause))
			player.POST("/toggle", s.playerAction(s.player.Toggle))
			player.POST("/next", s.playerAction(s.player.Next))
			player.POST("/previous", s.playerAction(s.player.Previous))
			player.POST("/random", s.playerAction(s.player.PlayRandomFromCurrentList))
			player.POST("/mute", s.playerAction(s.player.ToggleMute))
			player.POST("/shuffle", s.setShuffle)
			player.POST("/seek", s.seek)
			player.POST("/volume", s.setVolume)
			player.POST("/goto", s.goToTrack)
			player.POST("/share", s.share)
			player.GET("/progress", s.listProgress)
			player.POST("/progress", s.updateProgress)
		}

		ui := api.Group("/ui")
		{
			ui.GET("", s.uiState)
			ui.POST("/modal", s.openModal)
			ui.POST("/modal/switch", s.switchModal)
			ui.DELETE("/modal", s.closeModal)
			ui.POST("/menu", s.setMenu)
			ui.POST("/close-all", s.closeAll)
		}

		api.GET("/preferences/theme", s.getTheme)
		api.PUT("/preferences/theme", s.setTheme)
	}

	if s.widget != nil {
		router.GET("/ws/widget", gin.WrapH(s.widget))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, port string) error {
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
