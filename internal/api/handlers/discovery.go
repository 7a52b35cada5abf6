package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dessyd/scout/internal/api/models"
)

// GetDiscovery returns the currently known service endpoint, or 404
// when nothing has been discovered yet.
func (h *Handler) GetDiscovery(c *gin.Context) {
	svc, ok := h.current.Current()
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no service discovered"})
		return
	}

	url, err := svc.URL()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.DiscoveryResponse{
		Hostname:   svc.Hostname,
		Port:       svc.Port,
		Path:       svc.Path,
		APIVersion: svc.APIVersion,
		IPv4:       svc.IPv4Text,
		URL:        url,
		UpdatedAt:  h.current.UpdatedAt(),
	})
}

// DiscoveryHistory returns persisted discovery events, most recent
// first. The limit query parameter defaults to 50 and is clamped to
// 1..500.
func (h *Handler) DiscoveryHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "history store disabled"})
		return
	}

	rows, err := h.history.RecentDiscoveries(limitParam(c))
	if err != nil {
		h.logger.Error("discovery history query failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
