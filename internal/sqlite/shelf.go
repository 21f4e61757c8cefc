package sqlite

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// shelf implements types.Shelf for a single schema. Each column's codec is
// invoked once per field read or write; nullable columns short-circuit nil
// around the codec so converters only ever see non-null values.
type shelf struct {
	backend *Backend
	schema  types.Schema
}

var _ types.Shelf = (*shelf)(nil)

// rawRow holds one row's storage primitives in schema column order.
type rawRow struct {
	id   string
	vals []any
}

// Get retrieves a record by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (s *shelf) Get(id string) (types.Record, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if !s.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.queryRaw(`WHERE "id" = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return s.decodeRow(rows[0])
}

// Put creates or updates a record. If id is empty, generates a UUID v7.
// Returns the record ID and any error. Codec failures and null values in
// non-nullable columns abort the write before anything is stored.
func (s *shelf) Put(id string, rec types.Record) (string, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if !s.backend.attached {
		return "", types.ErrStoreDetached
	}
	if id == "" {
		id = newRecordID()
	}

	args, err := s.encodeRecord(rec)
	if err != nil {
		return "", err
	}

	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %q (%s) VALUES (%s)",
		s.schema.Name, columnList(s.schema), placeholders(len(args)+1))
	if _, err := s.backend.db.Exec(stmt, append([]any{id}, args...)...); err != nil {
		return "", fmt.Errorf("writing record %s: %w", id, err)
	}

	if err := s.persistJSONL(); err != nil {
		return "", fmt.Errorf("persisting %s mirror: %w", s.schema.Name, err)
	}
	return id, nil
}

// Delete removes a record by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (s *shelf) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	if !s.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := s.backend.db.Exec(fmt.Sprintf("DELETE FROM %q WHERE \"id\" = ?", s.schema.Name), id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if err := s.persistJSONL(); err != nil {
		return fmt.Errorf("persisting %s mirror: %w", s.schema.Name, err)
	}
	return nil
}

// List returns all records on the shelf, ordered by ID.
func (s *shelf) List() ([]types.Record, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	if !s.backend.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.queryRaw("")
	if err != nil {
		return nil, err
	}
	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := s.decodeRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// queryRaw runs a SELECT over the shelf and returns the rows as storage
// primitives. The caller must hold the backend lock.
func (s *shelf) queryRaw(where string, args ...any) ([]rawRow, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %q %s ORDER BY \"id\"",
		columnList(s.schema), s.schema.Name, where)
	rows, err := s.backend.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.schema.Name, err)
	}
	defer rows.Close()

	var result []rawRow
	for rows.Next() {
		row := rawRow{vals: make([]any, len(s.schema.Columns))}
		dest := make([]any, 0, len(s.schema.Columns)+1)
		dest = append(dest, &row.id)
		for i := range row.vals {
			dest = append(dest, &row.vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.schema.Name, err)
		}
		for i, col := range s.schema.Columns {
			row.vals[i] = normalizeRaw(col, row.vals[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", s.schema.Name, err)
	}
	return result, nil
}

// normalizeRaw settles driver representation differences so codecs see the
// declared storage primitive: text-affinity values arrive as string, never
// []byte.
func normalizeRaw(col types.Column, raw any) any {
	if b, ok := raw.([]byte); ok {
		switch col.Type {
		case types.SQLText, types.SQLTimestamp:
			return string(b)
		}
	}
	return raw
}

// encodeRecord maps a record's domain values to storage primitives in schema
// column order. Keys with no matching column are rejected; missing keys and
// nil values become SQL NULL when the column allows it.
func (s *shelf) encodeRecord(rec types.Record) ([]any, error) {
	for key := range rec {
		if key == types.IDColumn {
			continue
		}
		if _, ok := s.schema.Column(key); !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownColumn, key)
		}
	}

	args := make([]any, 0, len(s.schema.Columns))
	for _, col := range s.schema.Columns {
		value, ok := rec[col.Name]
		if !ok || value == nil {
			if !col.Nullable {
				return nil, fmt.Errorf("%w: %q", types.ErrNullValue, col.Name)
			}
			args = append(args, nil)
			continue
		}
		if col.Codec != nil {
			encoded, err := col.Codec.EncodeSQL(value)
			if err != nil {
				return nil, fmt.Errorf("encoding column %q: %w", col.Name, err)
			}
			value = encoded
		}
		args = append(args, value)
	}
	return args, nil
}

// decodeRow maps one row's storage primitives back to domain values.
// Codec errors propagate to the caller unchanged apart from column context.
func (s *shelf) decodeRow(row rawRow) (types.Record, error) {
	rec := types.Record{types.IDColumn: row.id}
	for i, col := range s.schema.Columns {
		raw := row.vals[i]
		if raw == nil {
			rec[col.Name] = nil
			continue
		}
		if col.Codec != nil {
			value, err := col.Codec.DecodeSQL(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding column %q of record %s: %w", col.Name, row.id, err)
			}
			rec[col.Name] = value
			continue
		}
		rec[col.Name] = raw
	}
	return rec, nil
}

// jsonValue renders one column's storage primitive for the JSONL mirror.
// Columns whose codec carries the JSON capability are written in their JSON
// representation; all others are mirrored as the raw primitive.
func jsonValue(col types.Column, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	jc, ok := col.Codec.(types.JSONCodec)
	if !ok {
		return raw, nil
	}
	value, err := jc.DecodeSQL(raw)
	if err != nil {
		return nil, err
	}
	return jc.EncodeJSON(value)
}

// storageValue maps one column's mirrored JSON value back to the storage
// primitive, reversing jsonValue. Plain columns coerce JSON's number model
// back to the declared primitive.
func storageValue(col types.Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if jc, ok := col.Codec.(types.JSONCodec); ok {
		value, err := jc.DecodeJSON(v)
		if err != nil {
			return nil, err
		}
		return jc.EncodeSQL(value)
	}
	switch col.Type {
	case types.SQLInteger, types.SQLBoolean:
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			return int64(f), nil
		}
	case types.SQLReal:
		if f, ok := v.(float64); ok {
			return f, nil
		}
	case types.SQLText, types.SQLTimestamp:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.SQLBlob:
		if s, ok := v.(string); ok {
			return base64.StdEncoding.DecodeString(s)
		}
	}
	return nil, fmt.Errorf("%w: mirrored %T for %s column %q", types.ErrTypeMismatch, v, col.Type, col.Name)
}
