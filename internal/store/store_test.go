package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dessyd/scout/internal/discovery"
	"github.com/dessyd/scout/internal/telemetry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_MigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Health())
	require.NoError(t, s.Close())

	// Reopening applies no further migrations and must not fail.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestDiscoveries_InsertAndQuery(t *testing.T) {
	s := openTestStore(t)

	svc := discovery.Service{
		Hostname:   "host.local",
		Port:       5050,
		Path:       "/config",
		APIVersion: "1.0",
		IPv4Text:   "192.168.1.50",
		Valid:      true,
	}
	require.NoError(t, s.InsertDiscovery(svc))

	rows, err := s.RecentDiscoveries(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "host.local", rows[0].Hostname)
	assert.Equal(t, 5050, rows[0].Port)
	assert.Equal(t, "http://192.168.1.50:5050/config", rows[0].URL)
	assert.Equal(t, "1.0", rows[0].APIVersion)
}

func TestInsertDiscovery_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	require.Error(t, s.InsertDiscovery(discovery.Service{}))
}

func TestReadings_NullableFields(t *testing.T) {
	s := openTestStore(t)

	r := telemetry.Readings{
		MemoryUsedPercent: 52.5,
		MemoryValid:       true,
		UptimeSec:         7200,
		UptimeValid:       true,
		Timestamp:         time.Now().UTC(),
	}
	require.NoError(t, s.InsertReading(r))

	rows, err := s.RecentReadings(5)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NotNil(t, rows[0].MemoryUsedPercent)
	assert.InDelta(t, 52.5, *rows[0].MemoryUsedPercent, 0.001)
	require.NotNil(t, rows[0].UptimeSec)
	assert.Equal(t, int64(7200), *rows[0].UptimeSec)
	assert.Nil(t, rows[0].Load1)
	assert.Nil(t, rows[0].TemperatureC)
}

func TestRecentReadings_LimitAndOrder(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		r := telemetry.Readings{
			Load1:     float64(i),
			LoadValid: true,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.InsertReading(r))
	}

	rows, err := s.RecentReadings(3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4.0, *rows[0].Load1)
	assert.Equal(t, 2.0, *rows[2].Load1)
}
