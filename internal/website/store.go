package website

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("website not found")

type Site struct {
	ID          int64     `json:"id"`
	FamilyID    string    `json:"familyId"`
	Title       string    `json:"title"`
	Theme       string    `json:"theme"`
	HTML        string    `json:"html"`
	CSS         string    `json:"css"`
	Status      string    `json:"status"` // draft|published
	GeneratedAt time.Time `json:"generatedAt"`
}

// Store keeps generated websites in Postgres; the rest of the portal lives
// in Mongo, this feature alone is relational.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		// 3D000 is "database does not exist"; give an actionable hint.
		return nil, fmt.Errorf("postgres unreachable (is the database created?): %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS websites (
			id           BIGSERIAL PRIMARY KEY,
			family_id    TEXT NOT NULL,
			title        TEXT NOT NULL,
			theme        TEXT NOT NULL DEFAULT 'classic',
			html         TEXT NOT NULL,
			css          TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'draft',
			generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS websites_family_idx ON websites (family_id);
	`)
	return err
}

// Upsert replaces the family's site (one site per family).
func (s *Store) Upsert(ctx context.Context, site *Site) error {
	row := s.db.QueryRowContext(ctx, `
		WITH deleted AS (DELETE FROM websites WHERE family_id = $1)
		INSERT INTO websites (family_id, title, theme, html, css, status, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		site.FamilyID, site.Title, site.Theme, site.HTML, site.CSS, site.Status, site.GeneratedAt,
	)
	return row.Scan(&site.ID)
}

func (s *Store) FindByFamily(ctx context.Context, familyID string) (*Site, error) {
	var site Site
	err := s.db.QueryRowContext(ctx, `
		SELECT id, family_id, title, theme, html, css, status, generated_at
		FROM websites WHERE family_id = $1`,
		familyID,
	).Scan(&site.ID, &site.FamilyID, &site.Title, &site.Theme, &site.HTML, &site.CSS, &site.Status, &site.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Store) SetStatus(ctx context.Context, familyID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE websites SET status = $2 WHERE family_id = $1`, familyID, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
