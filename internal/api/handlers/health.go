package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dessyd/scout/internal/api/models"
)

// Health returns the agent health status. When a history database is
// configured its connectivity is part of the check.
func (h *Handler) Health(c *gin.Context) {
	if h.history != nil {
		if err := h.history.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats returns runtime statistics including memory, goroutines, and
// discovery counters.
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	resp := models.AgentStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		GoRoutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
		NumCPU:        runtime.NumCPU(),
	}

	if fn := h.getStatsFunc(); fn != nil {
		s := fn()
		resp.DiscoveryStats = &models.DiscoveryStatsResponse{
			QueriesSent:     s.QueriesSent,
			PacketsReceived: s.PacketsReceived,
			PacketsIgnored:  s.PacketsIgnored,
			Incomplete:      s.Incomplete,
			Discoveries:     s.Discoveries,
			ReadingsTaken:   s.ReadingsTaken,
			Published:       s.Published,
		}
	}

	c.JSON(http.StatusOK, resp)
}
