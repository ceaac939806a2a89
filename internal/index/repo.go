package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/starford/cognitio/internal/apperr"
)

// Row represents a row in the cheatsheets table.
type Row struct {
	Path      string
	Root      string
	Name      string
	Title     string
	Shorthand string
	Checksum  string
	Sections  []string
	Tags      []string
	Body      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Shorthand string `json:"shorthand_id"`
	Snippet   string `json:"snippet"`
}

const defaultSearchLimit = 20

const rowColumns = `path, root, name, title, shorthand, checksum, sections, tags, body, updated_at`

// Upsert inserts or replaces a cheatsheet and its FTS entry within a transaction.
func (db *DB) Upsert(r Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	sectionsJSON, _ := json.Marshal(nonNil(r.Sections))
	tagsJSON, _ := json.Marshal(nonNil(r.Tags))
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO cheatsheets (`+rowColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			root       = excluded.root,
			name       = excluded.name,
			title      = excluded.title,
			shorthand  = excluded.shorthand,
			checksum   = excluded.checksum,
			sections   = excluded.sections,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.Path, r.Root, r.Name, r.Title, r.Shorthand, r.Checksum,
		string(sectionsJSON), string(tagsJSON), r.Body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a cheatsheet and its FTS entry.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM cheatsheets WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete: %w", err)
	}
	return tx.Commit()
}

// DeletePrefix removes every cheatsheet stored below dir and returns how many
// rows were removed. It is used when a whole directory disappears.
func (db *DB) DeletePrefix(dir string) (int64, error) {
	prefix := filepath.Clean(dir) + string(filepath.Separator)

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeletePrefix(tx, prefix)
	res, err := tx.Exec(`DELETE FROM cheatsheets WHERE substr(path, 1, length(?)) = ?`, prefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("index: delete prefix: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// Get returns the indexed row for path, or apperr.ErrNotFound.
func (db *DB) Get(path string) (*Row, error) {
	row := db.conn.QueryRow(`SELECT `+rowColumns+` FROM cheatsheets WHERE path = ?`, path)
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: get %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get: %w", err)
	}
	return r, nil
}

// GetChecksum returns the stored checksum for a cheatsheet, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM cheatsheets WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// Lookup returns every cheatsheet whose shorthand id equals shorthand, ordered by path.
func (db *DB) Lookup(shorthand string) ([]Row, error) {
	rows, err := db.conn.Query(`SELECT `+rowColumns+` FROM cheatsheets WHERE shorthand = ? ORDER BY path`, shorthand)
	if err != nil {
		return nil, fmt.Errorf("index: lookup: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed cheatsheet.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM cheatsheets`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*Row, error) {
	var (
		r                    Row
		sectionsRaw, tagsRaw string
	)
	if err := s.Scan(&r.Path, &r.Root, &r.Name, &r.Title, &r.Shorthand, &r.Checksum,
		&sectionsRaw, &tagsRaw, &r.Body, &r.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(sectionsRaw), &r.Sections)
	_ = json.Unmarshal([]byte(tagsRaw), &r.Tags)
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Shorthand, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
