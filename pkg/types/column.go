package types

import (
	"errors"
	"fmt"
)

// Column types name the storage primitive a column holds.
const (
	SQLText      = "text"
	SQLInteger   = "integer"
	SQLReal      = "real"
	SQLBlob      = "blob"
	SQLBoolean   = "boolean"
	SQLTimestamp = "timestamp"
)

// validSQLTypes is the set of recognized column types.
var validSQLTypes = map[string]bool{
	SQLText:      true,
	SQLInteger:   true,
	SQLReal:      true,
	SQLBlob:      true,
	SQLBoolean:   true,
	SQLTimestamp: true,
}

// IsValidSQLType reports whether the given string is a recognized column type.
func IsValidSQLType(st string) bool {
	return validSQLTypes[st]
}

// Column describes a single named field of a shelf.
type Column struct {
	Name     string // Unique within the schema (required, non-empty).
	Type     string // One of the SQL type constants.
	Nullable bool   // Whether the column admits SQL NULL.
	Codec    Codec  // Optional value conversion; nil stores values as-is.
}

// Schema describes a shelf: its name and ordered columns. Every shelf also
// carries an implicit "id" text primary key managed by the backend.
type Schema struct {
	Name    string
	Columns []Column
}

// Schema validation errors.
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrNoColumns       = errors.New("schema has no columns")
	ErrInvalidSQLType  = errors.New("invalid column type")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrReservedColumn  = errors.New("column name is reserved")
)

// IDColumn is the implicit primary-key column present on every shelf.
const IDColumn = "id"

// Validate checks that the schema is well-formed: a non-empty name and at
// least one column, each with a unique non-reserved name and a recognized
// column type. Converter behavior is not validated; codecs are opaque here.
func (s Schema) Validate() error {
	if s.Name == "" {
		return ErrInvalidName
	}
	if len(s.Columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: column in schema %q", ErrInvalidName, s.Name)
		}
		if col.Name == IDColumn {
			return fmt.Errorf("%w: %q", ErrReservedColumn, col.Name)
		}
		if !validSQLTypes[col.Type] {
			return fmt.Errorf("%w: column %q has type %q", ErrInvalidSQLType, col.Name, col.Type)
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}

// Column returns the column with the given name, if present.
func (s Schema) Column(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
