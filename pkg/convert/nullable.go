package convert

// Nullable lifts a converter defined only for non-null values into one whose
// domain and storage sides both admit nil. The nil pointer maps to the nil
// pointer in both directions; every other value delegates unchanged to the
// inner converter, including its errors.
//
// The returned converter takes ownership of inner. Wrapping an already
// wrapped converter is harmless: nil still maps to nil and non-nil values
// still delegate all the way down.
func Nullable[D, S any](inner Converter[D, S]) Converter[*D, *S] {
	return nullable[D, S]{inner: inner}
}

type nullable[D, S any] struct {
	inner Converter[D, S]
}

func (n nullable[D, S]) ToSQL(value *D) *S {
	if value == nil {
		return nil
	}
	raw := n.inner.ToSQL(*value)
	return &raw
}

func (n nullable[D, S]) FromSQL(raw *S) (*D, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := n.inner.FromSQL(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
