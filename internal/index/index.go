package index

// ContentIndex defines the interface for content indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ContentIndex interface {
	UpsertContent(c ContentRow, body string) error
	DeleteContent(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListContent(limit, offset int, section, tag, sort string) ([]ContentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ContentIndex at compile time.
var _ ContentIndex = (*DB)(nil)
