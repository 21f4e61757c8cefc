package convert

import (
	"fmt"
	"math"
)

// JSONConverter is a converter that additionally knows how to represent its
// domain values in JSON. Serializers check for this capability with an
// interface assertion; converters that lack it have their fields written as
// the raw storage primitive.
//
// The JSON side is dynamically typed because decoded JSON is: ToJSON returns
// whatever value the encoder should emit, FromJSON receives whatever the
// decoder produced. By default both delegate to the storage mapping; a
// converter overrides them to use a different JSON representation while
// keeping the storage representation unchanged (UnixMillis stores epoch
// milliseconds but serializes RFC 3339 text).
type JSONConverter[D, S any] interface {
	Converter[D, S]

	// ToJSON maps a domain value to its JSON representation.
	// Like ToSQL, it is total over valid domain values.
	ToJSON(value D) any

	// FromJSON maps a decoded JSON value back to the domain type.
	// Returns an error wrapping ErrInvalidValue when raw cannot be
	// interpreted.
	FromJSON(raw any) (D, error)
}

// WithJSON attaches the default JSON behavior to a converter: ToJSON
// delegates to ToSQL and FromJSON to FromSQL. A converter that already
// implements JSONConverter is returned unchanged, so its overrides win.
func WithJSON[D, S any](inner Converter[D, S]) JSONConverter[D, S] {
	if jc, ok := inner.(JSONConverter[D, S]); ok {
		return jc
	}
	return jsonDefault[D, S]{inner: inner}
}

// NullableJSON lifts a non-null converter into one that is simultaneously
// null-safe and JSON-capable. The base contract behaves exactly like
// Nullable(inner); ToJSON and FromJSON repeat the sentinel passthrough, with
// the untyped nil standing in for JSON null.
func NullableJSON[D, S any](inner Converter[D, S]) JSONConverter[*D, *S] {
	return nullableJSON[D, S]{
		nullable: nullable[D, S]{inner: inner},
		json:     WithJSON(inner),
	}
}

type jsonDefault[D, S any] struct {
	inner Converter[D, S]
}

func (j jsonDefault[D, S]) ToSQL(value D) S          { return j.inner.ToSQL(value) }
func (j jsonDefault[D, S]) FromSQL(raw S) (D, error) { return j.inner.FromSQL(raw) }
func (j jsonDefault[D, S]) ToJSON(value D) any       { return j.inner.ToSQL(value) }

func (j jsonDefault[D, S]) FromJSON(raw any) (D, error) {
	s, ok := raw.(S)
	if !ok {
		s, ok = coerceNumber[S](raw)
	}
	if !ok {
		var zero D
		return zero, fmt.Errorf("%w: %T is not the storage type", ErrInvalidValue, raw)
	}
	return j.inner.FromSQL(s)
}

// coerceNumber bridges JSON's single number type and the storage primitives:
// decoded JSON carries float64 where the converter stores int64.
func coerceNumber[S any](raw any) (S, bool) {
	var zero S
	switch any(zero).(type) {
	case int64:
		if f, ok := raw.(float64); ok && f == math.Trunc(f) {
			return any(int64(f)).(S), true
		}
	case float64:
		if i, ok := raw.(int64); ok {
			return any(float64(i)).(S), true
		}
	}
	return zero, false
}

type nullableJSON[D, S any] struct {
	nullable[D, S]
	json JSONConverter[D, S]
}

func (n nullableJSON[D, S]) ToJSON(value *D) any {
	if value == nil {
		return nil
	}
	return n.json.ToJSON(*value)
}

func (n nullableJSON[D, S]) FromJSON(raw any) (*D, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := n.json.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
