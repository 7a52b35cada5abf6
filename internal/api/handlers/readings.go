package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dessyd/scout/internal/api/models"
	"github.com/dessyd/scout/internal/helpers"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// limitParam parses the limit query parameter, clamped to a sane range.
func limitParam(c *gin.Context) int {
	raw := c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultHistoryLimit
	}
	return helpers.ClampInt(n, 1, maxHistoryLimit)
}

// Readings returns persisted telemetry samples, most recent first.
func (h *Handler) Readings(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "history store disabled"})
		return
	}

	rows, err := h.history.RecentReadings(limitParam(c))
	if err != nil {
		h.logger.Error("readings query failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
