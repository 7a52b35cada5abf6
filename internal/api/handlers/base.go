// Package handlers implements the REST API endpoint handlers for the
// scout agent.
//
// REST API Endpoints:
//
// System:
//   - GET /api/v1/health - Health check (includes history database ping)
//   - GET /api/v1/stats - Agent statistics (uptime, memory, discovery counters)
//
// Discovery:
//   - GET /api/v1/discovery - Currently known service endpoint
//   - GET /api/v1/discovery/history - Persisted discovery events
//
// Telemetry:
//   - GET /api/v1/readings - Persisted telemetry samples
//
// All endpoints except /health support optional API key authentication
// via the X-API-Key header.
package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dessyd/scout/internal/config"
	"github.com/dessyd/scout/internal/discovery"
	"github.com/dessyd/scout/internal/store"
)

// AgentStatsSnapshot contains a point-in-time snapshot of the agent's
// counters.
type AgentStatsSnapshot struct {
	QueriesSent     uint64
	PacketsReceived uint64
	PacketsIgnored  uint64
	Incomplete      uint64
	Discoveries     uint64
	ReadingsTaken   uint64
	Published       uint64
}

// AgentStatsFunc is a function that returns agent statistics.
type AgentStatsFunc func() AgentStatsSnapshot

// Handler contains dependencies for API handlers. The history store is
// optional; endpoints backed by it report 503 when it is absent.
type Handler struct {
	cfg       *config.Config
	current   *discovery.Store
	history   *store.Store
	logger    *slog.Logger
	startTime time.Time

	statsFunc AgentStatsFunc
	mu        sync.RWMutex
}

// New creates a new Handler.
func New(cfg *config.Config, current *discovery.Store, history *store.Store, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		current:   current,
		history:   history,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetStatsFunc sets the function the stats endpoint polls for agent
// counters.
func (h *Handler) SetStatsFunc(fn AgentStatsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statsFunc = fn
}

func (h *Handler) getStatsFunc() AgentStatsFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.statsFunc
}
