package models

import "time"

// AgentStatsResponse contains agent runtime statistics.
type AgentStatsResponse struct {
	Uptime         string                  `json:"uptime"`
	UptimeSeconds  int64                   `json:"uptime_seconds"`
	StartTime      time.Time               `json:"start_time"`
	GoRoutines     int                     `json:"goroutines"`
	MemoryAllocMB  float64                 `json:"memory_alloc_mb"`
	NumCPU         int                     `json:"num_cpu"`
	DiscoveryStats *DiscoveryStatsResponse `json:"discovery,omitempty"`
}

// DiscoveryStatsResponse contains mDNS discovery counters.
type DiscoveryStatsResponse struct {
	QueriesSent     uint64 `json:"queries_sent"`
	PacketsReceived uint64 `json:"packets_received"`
	PacketsIgnored  uint64 `json:"packets_ignored"`
	Incomplete      uint64 `json:"incomplete"`
	Discoveries     uint64 `json:"discoveries"`
	ReadingsTaken   uint64 `json:"readings_taken"`
	Published       uint64 `json:"published"`
}
