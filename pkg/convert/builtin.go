package convert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UnixMillis converts instants to epoch milliseconds in UTC. The JSON side
// is overridden to RFC 3339 text, so JSONL mirrors stay human-readable while
// the storage column stays numeric and sortable.
//
// The domain is millisecond-precision instants; sub-millisecond detail is
// truncated by ToSQL and does not round-trip.
func UnixMillis() JSONConverter[time.Time, int64] {
	return unixMillis{}
}

type unixMillis struct{}

func (unixMillis) ToSQL(value time.Time) int64 { return value.UnixMilli() }

func (unixMillis) FromSQL(raw int64) (time.Time, error) {
	return time.UnixMilli(raw).UTC(), nil
}

func (unixMillis) ToJSON(value time.Time) any {
	return value.UTC().Format(time.RFC3339Nano)
}

func (unixMillis) FromJSON(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %T is not a timestamp string", ErrInvalidValue, raw)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing timestamp %q: %v", ErrInvalidValue, s, err)
	}
	return t.Truncate(time.Millisecond).UTC(), nil
}

// TimeText converts instants to RFC 3339 text in UTC, the convention the
// JSONL files use for created_at style fields.
func TimeText() Converter[time.Time, string] {
	return timeText{}
}

type timeText struct{}

func (timeText) ToSQL(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func (timeText) FromSQL(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing timestamp %q: %v", ErrInvalidValue, raw, err)
	}
	return t.UTC(), nil
}

// UUIDText converts UUIDs to their canonical text form.
func UUIDText() Converter[uuid.UUID, string] {
	return uuidText{}
}

type uuidText struct{}

func (uuidText) ToSQL(value uuid.UUID) string { return value.String() }

func (uuidText) FromSQL(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: parsing UUID %q: %v", ErrInvalidValue, raw, err)
	}
	return id, nil
}

// BoolInt converts booleans to the 0/1 integers SQLite stores them as.
// FromSQL accepts only 0 and 1; anything else is corrupted data.
func BoolInt() Converter[bool, int64] {
	return boolInt{}
}

type boolInt struct{}

func (boolInt) ToSQL(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func (boolInt) FromSQL(raw int64) (bool, error) {
	switch raw {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d is not a boolean", ErrInvalidValue, raw)
	}
}

// DurationNanos converts durations to their nanosecond count. Both
// directions are total.
func DurationNanos() Converter[time.Duration, int64] {
	return durationNanos{}
}

type durationNanos struct{}

func (durationNanos) ToSQL(value time.Duration) int64 { return value.Nanoseconds() }

func (durationNanos) FromSQL(raw int64) (time.Duration, error) {
	return time.Duration(raw), nil
}

// JSONText converts arbitrary values to JSON text, the same representation
// free-form property values use. T must be JSON-encodable; ToSQL panics
// otherwise, since an unencodable domain type is a programming error.
func JSONText[T any]() Converter[T, string] {
	return jsonText[T]{}
}

type jsonText[T any] struct{}

func (jsonText[T]) ToSQL(value T) string {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("convert: encoding %T: %v", value, err))
	}
	return string(data)
}

func (jsonText[T]) FromSQL(raw string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, fmt.Errorf("%w: decoding %q: %v", ErrInvalidValue, raw, err)
	}
	return value, nil
}
