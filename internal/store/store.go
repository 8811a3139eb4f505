package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"boothmap/internal/models"
	"boothmap/internal/monitoring"
)

// ErrNotFound is returned when a marker id is not in the store.
var ErrNotFound = errors.New("marker not found")

// Store persists markers in sqlite. It is the host side of the angle commit.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive across queries
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA busy_timeout = 5000;
		CREATE TABLE IF NOT EXISTS markers (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			lat         DOUBLE,
			lng         DOUBLE,
			angle       DOUBLE NOT NULL DEFAULT 0,
			width       DOUBLE,
			height      DOUBLE,
			locked      INTEGER NOT NULL DEFAULT 0,
			updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db}, nil
}

// Upsert inserts or replaces markers in one transaction.
func (s *Store) Upsert(ctx context.Context, markers []models.Marker) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO markers (id, name, lat, lng, angle, width, height, locked, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lat = excluded.lat,
			lng = excluded.lng,
			angle = excluded.angle,
			width = excluded.width,
			height = excluded.height,
			locked = excluded.locked,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range markers {
		var width, height sql.NullFloat64
		if len(m.Rectangle) == 2 {
			width = sql.NullFloat64{Float64: m.Rectangle[0], Valid: true}
			height = sql.NullFloat64{Float64: m.Rectangle[1], Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.Name, nullable(m.Lat), nullable(m.Lng), m.Angle, width, height, m.Locked); err != nil {
			return fmt.Errorf("failed to upsert marker %q: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit markers: %w", err)
	}
	monitoring.Logf("[store] upserted %d markers", len(markers))
	return nil
}

// List returns every stored marker ordered by id.
func (s *Store) List(ctx context.Context) ([]models.Marker, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, name, lat, lng, angle, width, height, locked
		FROM markers ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	var markers []models.Marker
	for rows.Next() {
		var (
			m             models.Marker
			lat, lng      sql.NullFloat64
			width, height sql.NullFloat64
		)
		if err := rows.Scan(&m.ID, &m.Name, &lat, &lng, &m.Angle, &width, &height, &m.Locked); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		if lat.Valid {
			m.Lat = models.Coord(lat.Float64)
		}
		if lng.Valid {
			m.Lng = models.Coord(lng.Float64)
		}
		if width.Valid && height.Valid {
			m.Rectangle = []float64{width.Float64, height.Float64}
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// UpdateAngle stores a committed rotation.
func (s *Store) UpdateAngle(ctx context.Context, id string, angle float64) error {
	res, err := s.ExecContext(ctx,
		`UPDATE markers SET angle = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, angle, id)
	if err != nil {
		return fmt.Errorf("failed to update angle for %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update angle for %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update angle for %q: %w", id, ErrNotFound)
	}
	return nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
