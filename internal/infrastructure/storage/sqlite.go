package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/collabmatch/backend/internal/domain"
)

// Store is the SQLite persistence layer for influencer profiles, app
// settings, and the collaboration log.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite database at path and runs
// migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the base schema and applies additive column migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS influencer_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		display_name TEXT DEFAULT '',
		instagram_handle TEXT DEFAULT '',
		rating_reliability INTEGER DEFAULT 0,
		rating_content_quality INTEGER DEFAULT 0,
		rating_communication INTEGER DEFAULT 0,
		notes TEXT DEFAULT '',
		ai_summary TEXT DEFAULT '',
		ai_summary_updated_at TEXT DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS collaboration_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		influencer_name TEXT NOT NULL,
		product TEXT NOT NULL,
		campaign_name TEXT DEFAULT '',
		status TEXT DEFAULT 'planned',
		notes TEXT DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_collab_log_influencer ON collaboration_log(influencer_name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Workspace-sync columns were added after the base schema shipped.
	// ALTER fails when a column already exists, which is fine.
	migrations := []string{
		`ALTER TABLE influencer_profiles ADD COLUMN notion_page_id TEXT DEFAULT ''`,
		`ALTER TABLE influencer_profiles ADD COLUMN notion_status TEXT DEFAULT ''`,
		`ALTER TABLE influencer_profiles ADD COLUMN notion_produkt TEXT DEFAULT ''`,
		`ALTER TABLE influencer_profiles ADD COLUMN notion_follower INTEGER DEFAULT 0`,
		`ALTER TABLE influencer_profiles ADD COLUMN notion_synced_at TEXT DEFAULT ''`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			if !strings.Contains(err.Error(), "duplicate column name") {
				return fmt.Errorf("apply migration: %w", err)
			}
		}
	}

	return nil
}

const profileColumns = `id, name, display_name, instagram_handle,
	rating_reliability, rating_content_quality, rating_communication,
	notes, ai_summary, ai_summary_updated_at,
	notion_page_id, notion_status, notion_produkt, notion_follower, notion_synced_at,
	created_at, updated_at`

// GetProfile fetches one profile by canonical name.
func (s *Store) GetProfile(ctx context.Context, name string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles WHERE name = ?`, name)

	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", name, err)
	}
	return profile, nil
}

// UpsertProfile inserts or updates a profile keyed by canonical name and
// returns the stored row.
func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO influencer_profiles (
			name, display_name, instagram_handle,
			rating_reliability, rating_content_quality, rating_communication,
			notes, ai_summary, ai_summary_updated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE display_name END,
			instagram_handle = CASE WHEN excluded.instagram_handle != '' THEN excluded.instagram_handle ELSE instagram_handle END,
			rating_reliability = excluded.rating_reliability,
			rating_content_quality = excluded.rating_content_quality,
			rating_communication = excluded.rating_communication,
			notes = excluded.notes,
			ai_summary = CASE WHEN excluded.ai_summary != '' THEN excluded.ai_summary ELSE ai_summary END,
			ai_summary_updated_at = CASE WHEN excluded.ai_summary != '' THEN excluded.ai_summary_updated_at ELSE ai_summary_updated_at END,
			updated_at = excluded.updated_at`,
		p.Name, p.DisplayName, p.InstagramHandle,
		p.RatingReliability, p.RatingContentQual, p.RatingCommunication,
		p.Notes, p.AISummary, formatTime(p.AISummaryUpdatedAt), now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert profile %q: %w", p.Name, err)
	}

	return s.GetProfile(ctx, p.Name)
}

// ListProfiles returns every profile ordered by display name.
func (s *Store) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// SearchProfiles returns profiles whose name or display name contains the
// query, ordered by display name.
func (s *Store) SearchProfiles(ctx context.Context, query string) ([]domain.Profile, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles
		 WHERE name LIKE ? OR display_name LIKE ? ORDER BY display_name`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// UpdateNotionData attaches workspace-sync fields to an existing profile.
func (s *Store) UpdateNotionData(ctx context.Context, name string, entry domain.NotionEntry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		UPDATE influencer_profiles
		SET notion_page_id = ?, notion_status = ?, notion_produkt = ?,
		    notion_follower = ?, notion_synced_at = ?, updated_at = ?
		WHERE name = ?`,
		entry.PageID, entry.Status, entry.Produkt, entry.Follower, now, now, name)
	if err != nil {
		return fmt.Errorf("update notion data for %q: %w", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// AddCollaboration appends one entry to the collaboration log.
func (s *Store) AddCollaboration(ctx context.Context, entry domain.CollaborationEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collaboration_log (influencer_name, product, campaign_name, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Influencer, entry.Product, entry.CampaignName, entry.Status, entry.Notes,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add collaboration: %w", err)
	}
	return nil
}

// GetCollaborations lists log entries for an influencer, newest first.
func (s *Store) GetCollaborations(ctx context.Context, influencer string) ([]domain.CollaborationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, influencer_name, product, campaign_name, status, notes, created_at
		FROM collaboration_log WHERE influencer_name = ? ORDER BY created_at DESC, id DESC`,
		influencer)
	if err != nil {
		return nil, fmt.Errorf("get collaborations for %q: %w", influencer, err)
	}
	defer rows.Close()

	var entries []domain.CollaborationEntry
	for rows.Next() {
		var e domain.CollaborationEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Influencer, &e.Product, &e.CampaignName, &e.Status, &e.Notes, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetSetting returns the value for a settings key, or ErrProfileNotFound-like
// empty result when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores or replaces a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a settings key; deleting an absent key is a no-op.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for profile scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var p domain.Profile
	var summaryUpdated, notionSynced, createdAt, updatedAt string
	err := row.Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.InstagramHandle,
		&p.RatingReliability, &p.RatingContentQual, &p.RatingCommunication,
		&p.Notes, &p.AISummary, &summaryUpdated,
		&p.NotionPageID, &p.NotionStatus, &p.NotionProdukt, &p.NotionFollower, &notionSynced,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.AISummaryUpdatedAt = parseTime(summaryUpdated)
	p.NotionSyncedAt = parseTime(notionSynced)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func collectProfiles(rows *sql.Rows) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
