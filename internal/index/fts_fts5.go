//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Column order matters for bm25 weights and snippet().
const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS cheatsheets_fts USING fts5(
	path UNINDEXED,
	title,
	sections,
	tags,
	body,
	tokenize = 'unicode61 remove_diacritics 2'
);
`

const ftsBodyColumn = 4

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(ftsSchemaSQL)
	return err
}

func ftsUpsert(tx *sql.Tx, r Row) error {
	_, _ = tx.Exec(`DELETE FROM cheatsheets_fts WHERE path = ?`, r.Path)
	_, err := tx.Exec(`INSERT INTO cheatsheets_fts (path, title, sections, tags, body) VALUES (?, ?, ?, ?, ?)`,
		r.Path, r.Title, strings.Join(r.Sections, "\n"), strings.Join(r.Tags, " "), r.Body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM cheatsheets_fts WHERE path = ?`, path)
}

func ftsDeletePrefix(tx *sql.Tx, prefix string) {
	_, _ = tx.Exec(`DELETE FROM cheatsheets_fts WHERE substr(path, 1, length(?)) = ?`, prefix, prefix)
}

// Search runs an FTS5 query. Title hits rank above section headings, which
// rank above tags and body text.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT f.path,
		       f.title,
		       c.shorthand,
		       snippet(cheatsheets_fts, ?, '<b>', '</b>', '...', 32)
		FROM cheatsheets_fts f
		JOIN cheatsheets c ON c.path = f.path
		WHERE cheatsheets_fts MATCH ?
		ORDER BY bm25(cheatsheets_fts, 0.0, 10.0, 5.0, 3.0, 1.0), f.path
		LIMIT ?
	`, ftsBodyColumn, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
