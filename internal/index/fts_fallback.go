//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the cheatsheets table is searched directly.
func initFTS(*sql.DB) error { return nil }

func ftsUpsert(*sql.Tx, Row) error { return nil }

func ftsDelete(*sql.Tx, string) {}

func ftsDeletePrefix(*sql.Tx, string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query as a substring of the title, section headings, tags or
// body. Title matches come first, then section matches. % and _ in query
// match literally.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, shorthand, substr(body, 1, 200)
		FROM cheatsheets
		WHERE title LIKE ?1 ESCAPE '\' OR sections LIKE ?1 ESCAPE '\'
			OR tags LIKE ?1 ESCAPE '\' OR body LIKE ?1 ESCAPE '\'
		ORDER BY (title LIKE ?1 ESCAPE '\') DESC, (sections LIKE ?1 ESCAPE '\') DESC, path
		LIMIT ?2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
