package types

import "errors"

// Store defines the interface for backend-agnostic record storage.
// Callers attach to a backend, create shelves from schemas, access them by
// name, and detach when done.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Idempotent on first call;
	// returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on shelves return ErrStoreDetached.
	Detach() error

	// CreateShelf materializes storage for the given schema.
	// Returns ErrShelfExists if a shelf with that name was already created.
	CreateShelf(schema Schema) error

	// Shelf returns the accessor for a previously created shelf.
	// Returns ErrShelfNotFound if no shelf with that name exists.
	Shelf(name string) (Shelf, error)
}

// Shelf provides uniform CRUD over the records of one schema.
type Shelf interface {
	// Get retrieves the record with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Get(id string) (Record, error)

	// Put creates or updates a record. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Put(id string, rec Record) (string, error)

	// Delete removes the record with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Delete(id string) error

	// List returns every record on the shelf, ordered by ID.
	List() ([]Record, error)
}

// Record holds one record's domain values keyed by column name. Get and
// List include the record's ID under the IDColumn key.
type Record map[string]any

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrShelfNotFound   = errors.New("shelf not found")
	ErrShelfExists     = errors.New("shelf already exists")
)

// Shelf operation errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid record ID")
	ErrUnknownColumn = errors.New("unknown column")
	ErrNullValue     = errors.New("null value in non-nullable column")
)
