// Package api exposes the HTTP surface: the room and preference APIs, the
// translation metrics summary, health and the websocket upgrade route.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"crosstalk/internal/bus"
	"crosstalk/internal/config"
	"crosstalk/internal/directory"
	"crosstalk/internal/fanout"
	"crosstalk/internal/history"
	"crosstalk/internal/room"
	"crosstalk/pkg/interfaces"
)

// Server wires the HTTP routes to the chat core.
type Server struct {
	cfg         *config.Config
	store       interfaces.Store
	rooms       *room.Manager
	directory   *directory.Directory
	coordinator *fanout.Coordinator
	bus         *bus.Bus
	replayer    *history.Replayer

	engine *gin.Engine
	http   *http.Server
}

func NewServer(cfg *config.Config, store interfaces.Store, rooms *room.Manager, dir *directory.Directory, coordinator *fanout.Coordinator, b *bus.Bus, replayer *history.Replayer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:         cfg,
		store:       store,
		rooms:       rooms,
		directory:   dir,
		coordinator: coordinator,
		bus:         b,
		replayer:    replayer,
		engine:      gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.GET("/languages", s.handleListLanguages)
	api.POST("/rooms", s.handleCreateRoom)
	api.GET("/rooms", s.handleListRooms)
	api.GET("/rooms/:id", s.handleGetRoom)
	api.GET("/users/:id/preference", s.handleGetPreference)
	api.PUT("/users/:id/preference", s.handleSetPreference)
	api.GET("/metrics/translations", s.handleMetricsSummary)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Start runs the HTTP server until ListenAndServe returns.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.HTTP.Host, s.cfg.HTTP.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}

	log.Info().Str("module", "api").Str("addr", addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
