// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ledger implements the dedup ledger: a durable URL → status record
// that prevents a source item from ever being processed twice.
package ledger

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Item statuses recorded in the ledger.
const (
	StatusSeen      = "seen"
	StatusGenerated = "generated"
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Ledger is a SQLite-backed processed-links store. A URL present with any
// status is considered processed.
type Ledger struct {
	db *sql.DB
	// now acts as time.Now, but can be mocked for testing.
	now func() time.Time
}

// Open opens (creating if needed) the ledger database at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS processed_links (
			url TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// IsProcessed reports whether url has a ledger record.
func (l *Ledger) IsProcessed(ctx context.Context, url string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `
		SELECT 1 FROM processed_links WHERE url = ? LIMIT 1;
	`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed upserts the record for url. On conflict the source and
// status are replaced, but a previously recorded title survives unless a
// new non-empty title is supplied.
func (l *Ledger) MarkProcessed(ctx context.Context, url, source, title, status string) error {
	var t any
	if title != "" {
		t = title
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO processed_links (url, source, title, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			source = excluded.source,
			title = COALESCE(excluded.title, processed_links.title),
			status = excluded.status;
	`, url, source, t, status, l.now().UTC().Format(time.RFC3339))
	return err
}

// CountProcessedToday returns how many records with one of the given
// statuses were created since UTC midnight.
func (l *Ledger) CountProcessedToday(ctx context.Context, statuses ...string) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	midnight := l.now().UTC().Truncate(24 * time.Hour).Format(time.RFC3339)

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(statuses)+1)
	args = append(args, midnight)
	for _, s := range statuses {
		args = append(args, s)
	}

	var count int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM processed_links
		WHERE created_at >= ? AND status IN (`+placeholders+`);
	`, args...).Scan(&count)
	return count, err
}

// Record is one ledger row.
type Record struct {
	URL       string
	Source    string
	Title     string
	Status    string
	CreatedAt string
}

// Get returns the record for url, or nil if none exists.
func (l *Ledger) Get(ctx context.Context, url string) (*Record, error) {
	var (
		r     Record
		title sql.NullString
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT url, source, title, status, created_at
		FROM processed_links WHERE url = ?;
	`, url).Scan(&r.URL, &r.Source, &title, &r.Status, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Title = title.String
	return &r, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
