package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/cognitio/internal/apperr"
	"github.com/starford/cognitio/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cognitio-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cheatsheets`).Scan(&count); err != nil {
		t.Fatalf("cheatsheets table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	row := Row{
		Path:      "/s/go/chan.md",
		Root:      "/s",
		Name:      "chan.md",
		Title:     "Channels",
		Shorthand: "sgoch",
		Checksum:  "abc123",
		Sections:  []string{"Send", "Receive"},
		Tags:      []string{"go"},
		Body:      "### Send\nch <- v",
	}
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := db.Get("/s/go/chan.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Channels" || got.Root != "/s" || got.Shorthand != "sgoch" {
		t.Errorf("row = %+v", got)
	}
	if !reflect.DeepEqual(got.Sections, []string{"Send", "Receive"}) {
		t.Errorf("sections = %v", got.Sections)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at should default to now")
	}
	cs, err := db.GetChecksum("/s/go/chan.md")
	if err != nil || cs != "abc123" {
		t.Errorf("checksum = %q, %v", cs, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.Get("/nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Path: "/s/up.md", Title: "Old", Checksum: "1"})
	_ = db.Upsert(Row{Path: "/s/up.md", Title: "New", Checksum: "2", Tags: []string{"new"}})

	got, err := db.Get("/s/up.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" || got.Checksum != "2" {
		t.Errorf("row not updated: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Path: "/s/del.md", Checksum: "x"})
	if err := db.Delete("/s/del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cs, _ := db.GetChecksum("/s/del.md"); cs != "" {
		t.Errorf("deleted row still has checksum %q", cs)
	}
}

func TestDeletePrefix(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"/s/go/a.md", "/s/go/deep/b.md", "/s/gopher.md", "/s/rust/c.md"} {
		_ = db.Upsert(Row{Path: p, Checksum: "1"})
	}
	n, err := db.DeletePrefix("/s/go")
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d rows, want 2", n)
	}
	all, _ := db.AllChecksums()
	if _, ok := all["/s/gopher.md"]; !ok {
		t.Error("sibling with a shared name prefix must survive")
	}
	if len(all) != 2 {
		t.Errorf("remaining = %v", all)
	}
}

func TestLookup_ReturnsAllMatchesSorted(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Path: "/s/bash/backup.md", Shorthand: "sbaba"})
	_ = db.Upsert(Row{Path: "/s/bash/Basics.md", Shorthand: "sbaba"})
	_ = db.Upsert(Row{Path: "/s/go/chan.md", Shorthand: "sgoch"})

	rows, err := db.Lookup("sbaba")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(rows) != 2 || rows[0].Path != "/s/bash/Basics.md" || rows[1].Path != "/s/bash/backup.md" {
		t.Errorf("lookup = %+v", rows)
	}
	if rows, _ := db.Lookup("zz"); len(rows) != 0 {
		t.Errorf("unknown shorthand matched %+v", rows)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Path: "/s/s.md", Title: "Search Me", Shorthand: "ss", Checksum: "1", Body: "uniqueword appears here"})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/s/s.md" || results[0].Shorthand != "ss" {
		t.Errorf("search results = %+v, want 1 hit for /s/s.md", results)
	}
}

func TestSearch_TitleAndSectionsRankFirst(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(Row{Path: "/s/a.md", Title: "Backups", Checksum: "a", Body: "we copy files around with rsync every night and check the logs afterwards"})
	_ = db.Upsert(Row{Path: "/s/b.md", Title: "Rsync", Checksum: "b", Body: "flags"})
	_ = db.Upsert(Row{Path: "/s/c.md", Title: "Copying", Checksum: "c", Sections: []string{"Rsync flags"}, Body: "-a -v"})

	results, err := db.Search("rsync", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}
	if results[0].Path != "/s/b.md" || results[2].Path != "/s/a.md" {
		t.Errorf("ranking = %s, %s, %s", results[0].Path, results[1].Path, results[2].Path)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(root, rel)
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("Bash/Variables.md", "# Vars\n### Export\nexport A=1")
	write("Bash/notes.txt", "ignored")
	write(".git/x.md", "hidden")

	roots := []string{root, filepath.Join(t.TempDir(), "missing")}
	store := storage.NewFS(func() []string { return roots })

	_ = db.Upsert(Row{Path: filepath.Join(root, "stale.md"), Checksum: "old"})

	if err := Sync(db, store, roots, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 1 {
		t.Fatalf("indexed = %v", all)
	}
	vars := filepath.Join(root, "Bash", "Variables.md")
	got, err := db.Get(vars)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Vars" || got.Root != root || !reflect.DeepEqual(got.Sections, []string{"Export"}) {
		t.Errorf("row = %+v", got)
	}

	// Unchanged files are skipped, changed ones re-indexed.
	write("Bash/Variables.md", "# Variables")
	if err := Sync(db, store, roots, logger); err != nil {
		t.Fatal(err)
	}
	got, _ = db.Get(vars)
	if got.Title != "Variables" {
		t.Errorf("changed file not re-indexed: %+v", got)
	}
}

func TestIndexFile_TitleFallsBackToStem(t *testing.T) {
	db := testDB(t)
	if err := IndexFile(db, "/s", "/s/Docs/Bash/Variables.md", []byte("plain text")); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Get("/s/Docs/Bash/Variables.md")
	if got.Title != "Variables" || got.Name != "Variables.md" || got.Shorthand != "dobava" {
		t.Errorf("row = %+v", got)
	}
}
