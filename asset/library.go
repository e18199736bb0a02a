package asset

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lixenwraith/vi-pattern/pattern"
)

//go:embed schema.sql
var schema string

// Entry describes one stored pattern
type Entry struct {
	ID        string
	Name      string
	Actions   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Library is a named pattern store backed by sqlite
type Library struct {
	db *sql.DB
}

// Open opens or creates the library at path, ":memory:" gives a private in-memory library
func Open(path string) (*Library, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("library path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Library{db: db}, nil
}

// Close releases the database handle
func (l *Library) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Save stores p under name, replacing an existing entry but keeping its id
func (l *Library) Save(ctx context.Context, name string, p *pattern.Pattern) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("pattern name is required")
	}
	body, err := Encode(p)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC().UnixMilli()
	var id string
	err = l.db.QueryRowContext(ctx,
		`INSERT INTO patterns (id, name, body, actions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   body = excluded.body,
		   actions = excluded.actions,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		uuid.NewString(), name, string(body), p.Len(), now, now,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("save pattern %q: %w", name, err)
	}
	return id, nil
}

// Load decodes the pattern stored under name
func (l *Library) Load(ctx context.Context, name string) (*pattern.Pattern, error) {
	var body string
	err := l.db.QueryRowContext(ctx, `SELECT body FROM patterns WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: pattern %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load pattern %q: %w", name, err)
	}
	p, err := Decode([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", name, err)
	}
	return p, nil
}

// List returns every entry ordered by name
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, actions, created_at, updated_at FROM patterns ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                Entry
			created, updated int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Actions, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		e.UpdatedAt = time.UnixMilli(updated).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the entry stored under name
func (l *Library) Delete(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM patterns WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete pattern %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pattern %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: pattern %q", ErrNotFound, name)
	}
	return nil
}

// Import saves every pattern of b, returning how many were stored
func (l *Library) Import(ctx context.Context, b *Bundle) (int, error) {
	for i, name := range b.Names {
		if _, err := l.Save(ctx, name, b.Patterns[name]); err != nil {
			return i, err
		}
	}
	return len(b.Names), nil
}
