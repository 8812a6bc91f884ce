// Package store persists projects as JSON documents in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a project or site does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	document   TEXT NOT NULL,
	site_count INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS projects_updated_at ON projects (updated_at);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// ProjectSummary is a project listing entry without site documents.
type ProjectSummary struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SiteCount int       `json:"siteCount"`
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer, and every :memory: connection is a new database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Project store opened")
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProject inserts or replaces a project document.
func (s *Store) SaveProject(ctx context.Context, p *site.Project) error {
	if p == nil || p.ID == "" {
		return errors.New("project without id")
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, document, site_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document = excluded.document,
			site_count = excluded.site_count,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, string(doc), len(p.Sites), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}

	log.Trace().Str("project", p.ID).Int("sites", len(p.Sites)).Msg("Project saved")
	return nil
}

// GetProject loads a project document.
func (s *Store) GetProject(ctx context.Context, id string) (*site.Project, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var p site.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// GetSite loads one site of a project.
func (s *Store) GetSite(ctx context.Context, projectID, siteID string) (*site.Site, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	st := p.Site(siteID)
	if st == nil {
		return nil, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}
	return st, nil
}

// ListProjects returns project summaries, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, site_count, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []ProjectSummary{}
	for rows.Next() {
		var (
			ps               ProjectSummary
			created, updated string
		)
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.SiteCount, &created, &updated); err != nil {
			return nil, err
		}
		ps.CreatedAt = parseTime(created)
		ps.UpdatedAt = parseTime(updated)
		out = append(out, ps)
	}
	return out, rows.Err()
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Warn().Err(err).Str("value", s).Msg("Invalid timestamp in store")
	}
	return t
}
