package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/lang"
)

type createRoomRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type preferenceRequest struct {
	Language string `json:"language" binding:"required"`
}

type preferenceResponse struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	Name     string `json:"language_name"`
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": s.directory.Stats()})
}

// handleListLanguages returns the supported codes with display names, for
// preference pickers.
func (s *Server) handleListLanguages(c *gin.Context) {
	codes := lang.Codes()
	out := make([]gin.H, 0, len(codes))
	for _, code := range codes {
		out = append(out, gin.H{"code": code, "name": lang.Name(code)})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out})
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug and name are required"})
		return
	}

	created, err := s.rooms.CreateRoom(c.Request.Context(), req.Slug, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrRoomExists):
			c.JSON(http.StatusConflict, gin.H{"error": "slug already taken"})
		case errors.Is(err, interfaces.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleListRooms(c *gin.Context) {
	rooms, err := s.rooms.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// handleGetRoom resolves by ID first and falls back to slug, so both forms
// work in client URLs.
func (s *Server) handleGetRoom(c *gin.Context) {
	key := c.Param("id")

	found, err := s.rooms.GetRoom(c.Request.Context(), key)
	if errors.Is(err, interfaces.ErrRoomNotFound) {
		found, err = s.rooms.GetRoomBySlug(c.Request.Context(), key)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	c.JSON(http.StatusOK, found)
}

func (s *Server) handleGetPreference(c *gin.Context) {
	userID := c.Param("id")

	code, err := s.store.PreferredLanguage(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preference"})
		return
	}

	c.JSON(http.StatusOK, preferenceResponse{
		UserID:   userID,
		Language: code,
		Name:     lang.Name(code),
	})
}

func (s *Server) handleSetPreference(c *gin.Context) {
	userID := c.Param("id")

	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language is required"})
		return
	}
	if !lang.IsValid(req.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown language code"})
		return
	}

	if err := s.store.SetPreferredLanguage(c.Request.Context(), userID, req.Language); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store preference"})
		return
	}

	log.Info().
		Str("module", "api").
		Str("user_id", userID).
		Str("language", req.Language).
		Msg("preference updated")
	c.JSON(http.StatusOK, preferenceResponse{
		UserID:   userID,
		Language: req.Language,
		Name:     lang.Name(req.Language),
	})
}

func (s *Server) handleMetricsSummary(c *gin.Context) {
	summaries, err := s.store.MetricsSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": summaries})
}
