package index

// Indexer defines the cheatsheet index operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Indexer interface {
	Upsert(r Row) error
	Delete(path string) error
	DeletePrefix(dir string) (int64, error)
	Get(path string) (*Row, error)
	GetChecksum(path string) (string, error)
	Lookup(shorthand string) ([]Row, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Indexer at compile time.
var _ Indexer = (*DB)(nil)
