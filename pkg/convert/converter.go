package convert

import "errors"

// Converter maps domain values of type D to and from a single storage
// primitive of type S. S is one of the primitive types the storage layer
// understands: int64, float64, string, bool, []byte, or time.Time. The set
// is a documented convention; the column layer, not this package, rejects
// columns declared with an unsupported primitive.
//
// A well-behaved converter satisfies the round-trip law: for every valid
// domain value x, FromSQL(ToSQL(x)) returns x and a nil error. The reverse
// direction is not required to be total; stored values outside the
// converter's expected range legitimately fail.
//
// Converters hold no mutable state after construction and are safe for
// concurrent use.
type Converter[D, S any] interface {
	// ToSQL maps a domain value to its storage representation.
	// It is total over valid domain values and never returns an error.
	ToSQL(value D) S

	// FromSQL maps a stored value back to the domain type.
	// Returns an error wrapping ErrOutOfRange or ErrInvalidValue when raw
	// does not correspond to any domain value; the policy is
	// converter-specific.
	FromSQL(raw S) (D, error)
}

// Conversion errors. FromSQL failures wrap one of these sentinels; callers
// surface them unmodified, since a failed conversion signals corrupted or
// incompatible stored data rather than a recoverable condition.
var (
	ErrOutOfRange   = errors.New("stored value out of range")
	ErrInvalidValue = errors.New("stored value has no domain equivalent")
)
