// Package store provides SQLite-backed history for discoveries and
// telemetry readings.
//
// The schema is managed by embedded migrations so upgrades never need
// an external tool.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dessyd/scout/internal/discovery"
	"github.com/dessyd/scout/internal/telemetry"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the SQLite history database.
type Store struct {
	conn *sql.DB
}

// DiscoveryRow is one persisted discovery event.
type DiscoveryRow struct {
	ID           int64     `json:"id"`
	Hostname     string    `json:"hostname"`
	Port         int       `json:"port"`
	Path         string    `json:"path"`
	APIVersion   string    `json:"api_version,omitempty"`
	IPv4         string    `json:"ipv4"`
	URL          string    `json:"url"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// ReadingRow is one persisted telemetry sample. Nil fields were not
// collected.
type ReadingRow struct {
	ID                int64     `json:"id"`
	MemoryUsedPercent *float64  `json:"memory_used_percent,omitempty"`
	Load1             *float64  `json:"load_1m,omitempty"`
	UptimeSec         *int64    `json:"uptime_sec,omitempty"`
	TemperatureC      *float64  `json:"temperature,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	// WAL keeps the API's reads from blocking the agent's writes.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	if err := applyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Store{conn: conn}, nil
}

func applyMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Health checks database connectivity.
func (s *Store) Health() error {
	return s.conn.Ping()
}

// InsertDiscovery records one committed discovery.
func (s *Store) InsertDiscovery(svc discovery.Service) error {
	url, err := svc.URL()
	if err != nil {
		return fmt.Errorf("insert discovery: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO discoveries (hostname, port, path, api_version, ipv4, url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		svc.Hostname, svc.Port, svc.Path, svc.APIVersion, svc.IPv4Text, url)
	if err != nil {
		return fmt.Errorf("insert discovery: %w", err)
	}
	return nil
}

// RecentDiscoveries returns the newest discovery rows, most recent
// first.
func (s *Store) RecentDiscoveries(limit int) ([]DiscoveryRow, error) {
	rows, err := s.conn.Query(`
		SELECT id, hostname, port, path, api_version, ipv4, url, discovered_at
		FROM discoveries
		ORDER BY discovered_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query discoveries: %w", err)
	}
	defer rows.Close()

	out := make([]DiscoveryRow, 0, limit)
	for rows.Next() {
		var r DiscoveryRow
		if err := rows.Scan(&r.ID, &r.Hostname, &r.Port, &r.Path,
			&r.APIVersion, &r.IPv4, &r.URL, &r.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("scan discovery row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertReading records one telemetry sample. Invalid metrics are
// stored as NULL.
func (s *Store) InsertReading(r telemetry.Readings) error {
	_, err := s.conn.Exec(`
		INSERT INTO readings (memory_used_percent, load_1m, uptime_sec, temperature, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		nullFloat(r.MemoryUsedPercent, r.MemoryValid),
		nullFloat(r.Load1, r.LoadValid),
		nullUint(r.UptimeSec, r.UptimeValid),
		nullFloat(r.TemperatureC, r.TempValid),
		r.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// RecentReadings returns the newest telemetry rows, most recent first.
func (s *Store) RecentReadings(limit int) ([]ReadingRow, error) {
	rows, err := s.conn.Query(`
		SELECT id, memory_used_percent, load_1m, uptime_sec, temperature, recorded_at
		FROM readings
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]ReadingRow, 0, limit)
	for rows.Next() {
		var (
			r    ReadingRow
			mem  sql.NullFloat64
			ld   sql.NullFloat64
			up   sql.NullInt64
			temp sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &mem, &ld, &up, &temp, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		if mem.Valid {
			r.MemoryUsedPercent = &mem.Float64
		}
		if ld.Valid {
			r.Load1 = &ld.Float64
		}
		if up.Valid {
			r.UptimeSec = &up.Int64
		}
		if temp.Valid {
			r.TemperatureC = &temp.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullFloat(v float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

func nullUint(v uint64, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: valid} //nolint:gosec // uptimes fit in int64
}
