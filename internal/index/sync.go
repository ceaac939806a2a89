package index

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/cognitio/internal/checksum"
	"github.com/starford/cognitio/internal/models"
	"github.com/starford/cognitio/internal/parser"
	"github.com/starford/cognitio/internal/shorthand"
	"github.com/starford/cognitio/internal/storage"
)

// Sync walks every root and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - rows whose file is gone, or whose root is no longer listed, are deleted
//
// A root that cannot be listed is logged and treated as empty.
func Sync(db Indexer, store storage.Provider, roots []string, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	for _, root := range roots {
		metas, err := store.List(root)
		if err != nil {
			logger.Warn("sync: list failed", slog.String("root", root), slog.String("error", err.Error()))
			continue
		}
		for _, m := range metas {
			disk[m.Path] = struct{}{}

			if checksums[m.Path] == m.Checksum {
				continue
			}

			data, err := store.Read(m.Path)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				continue
			}
			if err := IndexFile(db, m.Root, m.Path, data); err != nil {
				logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: indexed", slog.String("path", m.Path))
			}
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts it into db under root.
func IndexFile(db Indexer, root, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	return db.Upsert(Row{
		Path:      path,
		Root:      root,
		Name:      name,
		Title:     res.TitleOr(strings.TrimSuffix(name, models.MarkdownExt)),
		Shorthand: shorthand.File(path),
		Checksum:  checksum.Sum(data),
		Sections:  res.Sections,
		Tags:      res.Tags,
		Body:      res.Body,
	})
}
