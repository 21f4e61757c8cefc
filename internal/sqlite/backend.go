// Package sqlite implements the SQLite storage backend for Larder.
// SQLite is the query engine; per-shelf JSONL files are the durable mirror
// reloaded on the next attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Backend implements the Store interface over a SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	shelves  map[string]*shelf
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		shelves: make(map[string]*shelf),
	}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist and opens a fresh SQLite database;
// shelf contents are restored from the JSONL mirrors when CreateShelf runs.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The JSONL mirrors are the source of truth; the database file is
	// rebuilt from them on every attach.
	dbPath := filepath.Join(dataDir, "larder.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. Closes the SQLite
// connection. After Detach, all operations return ErrStoreDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.shelves = make(map[string]*shelf)
	return nil
}

// CreateShelf materializes a table for the schema and reloads any existing
// JSONL mirror into it. Returns ErrShelfExists if the shelf was already
// created on this backend.
func (b *Backend) CreateShelf(schema types.Schema) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	if _, ok := b.shelves[schema.Name]; ok {
		return types.ErrShelfExists
	}

	if _, err := b.db.Exec(createTableSQL(schema)); err != nil {
		return fmt.Errorf("creating table %s: %w", schema.Name, err)
	}

	sh := &shelf{backend: b, schema: schema}
	if err := sh.loadJSONL(); err != nil {
		return fmt.Errorf("loading %s mirror: %w", schema.Name, err)
	}

	b.shelves[schema.Name] = sh
	return nil
}

// Shelf returns the accessor for a previously created shelf.
// Returns ErrShelfNotFound if the name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) Shelf(name string) (types.Shelf, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	sh, ok := b.shelves[name]
	if !ok {
		return nil, types.ErrShelfNotFound
	}
	return sh, nil
}

// newRecordID generates a UUID v7 for record IDs, falling back to v4 if v7
// generation fails.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
