package types

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/convert"
)

// Codec is the dynamically typed view of a convert.Converter. Shelves hold
// columns of differing domain types, so the backend drives each column's
// converter through this erased form, once per field read or write.
//
// EncodeSQL rejects values whose dynamic type is not the converter's domain
// type; that is the only check added over the underlying converter.
// The backend never hands a codec SQL NULL: nullable columns short-circuit
// nil before the codec is invoked.
type Codec interface {
	// EncodeSQL maps a domain value to its storage representation.
	// Returns ErrTypeMismatch when value is not of the domain type.
	EncodeSQL(value any) (any, error)

	// DecodeSQL maps a stored value back to the domain type, propagating
	// the converter's conversion errors unchanged.
	DecodeSQL(raw any) (any, error)
}

// JSONCodec is implemented by codecs whose converter also carries the JSON
// capability. The JSONL serializer asserts for it; columns whose codec lacks
// it are mirrored as the raw storage primitive.
type JSONCodec interface {
	Codec

	// EncodeJSON maps a domain value to its JSON representation.
	EncodeJSON(value any) (any, error)

	// DecodeJSON maps a decoded JSON value back to the domain type.
	DecodeJSON(raw any) (any, error)
}

// ErrTypeMismatch reports a value handed to a codec with the wrong dynamic
// type.
var ErrTypeMismatch = errors.New("type mismatch")

// Bind erases a typed converter into a Codec for use in a Column. When the
// converter also implements convert.JSONConverter, the returned codec
// implements JSONCodec, so the capability survives erasure.
func Bind[D, S any](conv convert.Converter[D, S]) Codec {
	base := binding[D, S]{conv: conv}
	if jc, ok := conv.(convert.JSONConverter[D, S]); ok {
		return jsonBinding[D, S]{binding: base, json: jc}
	}
	return base
}

type binding[D, S any] struct {
	conv convert.Converter[D, S]
}

func (b binding[D, S]) EncodeSQL(value any) (any, error) {
	d, ok := value.(D)
	if !ok {
		return nil, fmt.Errorf("%w: encoding %T", ErrTypeMismatch, value)
	}
	return b.conv.ToSQL(d), nil
}

func (b binding[D, S]) DecodeSQL(raw any) (any, error) {
	s, ok := raw.(S)
	if !ok {
		return nil, fmt.Errorf("%w: decoding %T", ErrTypeMismatch, raw)
	}
	return b.conv.FromSQL(s)
}

type jsonBinding[D, S any] struct {
	binding[D, S]
	json convert.JSONConverter[D, S]
}

func (b jsonBinding[D, S]) EncodeJSON(value any) (any, error) {
	d, ok := value.(D)
	if !ok {
		return nil, fmt.Errorf("%w: encoding %T", ErrTypeMismatch, value)
	}
	return b.json.ToJSON(d), nil
}

func (b jsonBinding[D, S]) DecodeJSON(raw any) (any, error) {
	return b.json.FromJSON(raw)
}
