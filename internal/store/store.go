// Package store keeps encoded JVXL documents in a sqlite database.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/flywave/go-jvxl"
)

const schema = `
	CREATE TABLE IF NOT EXISTS jvxl_surfaces (
		surface_id    TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		n_surfaces    INTEGER NOT NULL,
		mode          TEXT NOT NULL,
		document      BLOB NOT NULL,
		created_at_ns INTEGER NOT NULL
	)
`

// Record is one stored document.
type Record struct {
	SurfaceID   string `json:"surface_id"`
	Name        string `json:"name"`
	NSurfaces   int    `json:"n_surfaces"`
	Mode        string `json:"mode"`
	CreatedAtNs int64  `json:"created_at_ns"`
}

// SurfaceStore provides persistence for encoded surfaces.
type SurfaceStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*SurfaceStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := NewSurfaceStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewSurfaceStore(db *sql.DB) *SurfaceStore {
	return &SurfaceStore{db: db}
}

func (s *SurfaceStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SurfaceStore) Close() error {
	return s.db.Close()
}

// Save stores doc under a new id and returns it.
func (s *SurfaceStore) Save(ctx context.Context, name string, doc *jvxl.Document) (string, error) {
	data, err := doc.Bytes()
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	mode := ""
	if len(doc.Surfaces) > 0 {
		mode = doc.Surfaces[0].Definition.Mode().String()
	}
	id := uuid.New().String()
	query := `
		INSERT INTO jvxl_surfaces (
			surface_id, name, n_surfaces, mode, document, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query, id, name, len(doc.Surfaces), mode, data, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert surface: %w", err)
	}
	return id, nil
}

// Load parses the stored document with the given id.
func (s *SurfaceStore) Load(ctx context.Context, id string) (*jvxl.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM jvxl_surfaces WHERE surface_id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("surface not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get surface: %w", err)
	}
	return jvxl.Read(bytes.NewReader(data))
}

// List returns every record, newest first.
func (s *SurfaceStore) List(ctx context.Context) ([]*Record, error) {
	query := `
		SELECT surface_id, name, n_surfaces, mode, created_at_ns
		FROM jvxl_surfaces
		ORDER BY created_at_ns DESC, surface_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list surfaces: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.SurfaceID, &r.Name, &r.NSurfaces, &r.Mode, &r.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan surface: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
