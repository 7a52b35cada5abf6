package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadings_Payload_OnlyValidFields(t *testing.T) {
	r := Readings{
		MemoryUsedPercent: 41.27,
		MemoryValid:       true,
		UptimeSec:         3600,
		UptimeValid:       true,
		Timestamp:         time.Unix(1700000000, 0),
	}

	payload, err := r.Payload()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))

	assert.Equal(t, 41.3, doc["memory_used_percent"])
	assert.Equal(t, float64(3600), doc["uptime_sec"])
	assert.Equal(t, float64(1700000000), doc["timestamp"])
	assert.NotContains(t, doc, "load_1m")
	assert.NotContains(t, doc, "temperature")
}

func TestReadings_Payload_Empty(t *testing.T) {
	_, err := Readings{Timestamp: time.Now()}.Payload()
	require.ErrorIs(t, err, ErrNoReadings)
}

func TestReadings_Valid(t *testing.T) {
	assert.False(t, Readings{}.Valid())
	assert.True(t, Readings{LoadValid: true}.Valid())
}
