package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/internal/services"
	"github.com/jstittsworth/monster-team-builder/pkg/database"
)

type HealthHandler struct {
	db      *database.DB
	cache   *services.CacheService
	claude  *services.ClaudeClient
	history *services.AnalysisHistoryService
}

func NewHealthHandler(db *database.DB, cache *services.CacheService, claude *services.ClaudeClient, history *services.AnalysisHistoryService) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		claude:  claude,
		history: history,
	}
}

// GetHealth returns basic health status - always returns 200 if server is running
// This is used for basic liveness probes
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "monster-team-builder",
	})
}

// GetReady returns 200 only when the database and redis answer. The text
// generator is reported but does not affect readiness.
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx := c.Request.Context()
	ready := true
	checks := gin.H{}

	if err := h.db.HealthCheck(); err != nil {
		ready = false
		checks["database"] = err.Error()
	} else {
		checks["database"] = "ok"
	}

	if h.cache == nil {
		checks["redis"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		ready = false
		checks["redis"] = err.Error()
	} else {
		checks["redis"] = "ok"
	}

	switch {
	case h.claude == nil:
		checks["text_generator"] = "disabled"
	case h.claude.IsHealthy():
		checks["text_generator"] = "ok"
	default:
		checks["text_generator"] = "degraded: circuit " + h.claude.GetCircuitBreakerState().String()
	}

	if h.history != nil {
		checks["history_cleanup"] = h.history.Status()
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}
