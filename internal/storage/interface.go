package storage

import (
	"errors"
	"strings"

	"github.com/procrastinate-org/procrastinate/internal/collection"
)

// ErrNotInitialized is returned by Load when the backing file does not
// exist yet.
var ErrNotInitialized = errors.New("storage not initialized")

// Provider owns the persisted collection. Implementations must
// round-trip every entry field, default sticky to false and sleep to
// absent on records that predate those fields, and never persist the
// transient dirty tag.
type Provider interface {
	// Init creates an empty store. It fails if one already exists.
	Init() error

	// Load reads the collection, returning ErrNotInitialized when the
	// backing file is missing.
	Load() error

	// Data returns the loaded collection.
	Data() *collection.Collection

	Save() error
	Close() error
	Path() string
}

// ForPath picks a provider by file extension: ".db" means SQLite,
// anything else is the JSON file store.
func ForPath(path string) Provider {
	if strings.HasSuffix(path, ".db") {
		return NewSQLiteStore(path)
	}
	return NewJSONStore(path)
}
