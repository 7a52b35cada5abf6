// Package telemetry samples host metrics for the periodic readings the
// agent publishes. Each metric carries its own validity flag so a
// single failing probe never suppresses the rest of the sample.
package telemetry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// ErrNoReadings is returned when every probe failed.
var ErrNoReadings = errors.New("telemetry: no probe produced a value")

// Readings is one telemetry sample. Zero-valued metrics with a false
// flag were unavailable at collection time.
type Readings struct {
	MemoryUsedPercent float64
	MemoryValid       bool

	Load1     float64
	LoadValid bool

	UptimeSec   uint64
	UptimeValid bool

	TemperatureC float64
	TempValid    bool

	Timestamp time.Time
}

// Valid reports whether at least one metric was collected.
func (r Readings) Valid() bool {
	return r.MemoryValid || r.LoadValid || r.UptimeValid || r.TempValid
}

// Payload renders the sample as the JSON object published over MQTT.
// Only valid metrics appear; the timestamp is always present.
func (r Readings) Payload() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrNoReadings
	}
	doc := make(map[string]any, 5)
	if r.MemoryValid {
		doc["memory_used_percent"] = round1(r.MemoryUsedPercent)
	}
	if r.LoadValid {
		doc["load_1m"] = round1(r.Load1)
	}
	if r.UptimeValid {
		doc["uptime_sec"] = r.UptimeSec
	}
	if r.TempValid {
		doc["temperature"] = round1(r.TemperatureC)
	}
	doc["timestamp"] = r.Timestamp.Unix()
	return json.Marshal(doc)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// Collector samples host metrics.
type Collector struct {
	logger *slog.Logger
}

// NewCollector returns a Collector.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Collect probes memory, load, uptime, and temperature. Probe failures
// are logged at debug level and reflected in the validity flags.
func (c *Collector) Collect() Readings {
	r := Readings{Timestamp: time.Now().UTC()}

	if vm, err := mem.VirtualMemory(); err == nil {
		r.MemoryUsedPercent = vm.UsedPercent
		r.MemoryValid = true
	} else {
		c.logger.Debug("memory probe failed", "error", err)
	}

	if avg, err := load.Avg(); err == nil {
		r.Load1 = avg.Load1
		r.LoadValid = true
	} else {
		c.logger.Debug("load probe failed", "error", err)
	}

	if up, err := host.Uptime(); err == nil {
		r.UptimeSec = up
		r.UptimeValid = true
	} else {
		c.logger.Debug("uptime probe failed", "error", err)
	}

	if temps, err := host.SensorsTemperatures(); err == nil {
		for _, t := range temps {
			if t.Temperature > 0 {
				r.TemperatureC = t.Temperature
				r.TempValid = true
				break
			}
		}
	} else {
		c.logger.Debug("temperature probe failed", "error", err)
	}

	return r
}
