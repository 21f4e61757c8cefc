package convert

import "fmt"

// EnumIndex converts enum members to their position in the member list.
// The list must be complete and in declaration order for the lifetime of the
// process; its ordering defines the only valid mapping. The slice is copied
// at construction.
//
// FromSQL fails with an error wrapping ErrOutOfRange when the stored index
// is negative or past the end of the list. ToSQL panics on a value missing
// from the list: the completeness invariant makes that a programming error,
// not a data error.
func EnumIndex[D comparable](members []D) Converter[D, int64] {
	e := enumIndex[D]{
		members: make([]D, len(members)),
		index:   make(map[D]int64, len(members)),
	}
	copy(e.members, members)
	for i, m := range e.members {
		e.index[m] = int64(i)
	}
	return e
}

type enumIndex[D comparable] struct {
	members []D
	index   map[D]int64
}

func (e enumIndex[D]) ToSQL(value D) int64 {
	i, ok := e.index[value]
	if !ok {
		panic(fmt.Sprintf("convert: %v is not a member of the enum", value))
	}
	return i
}

func (e enumIndex[D]) FromSQL(raw int64) (D, error) {
	if raw < 0 || raw >= int64(len(e.members)) {
		var zero D
		return zero, fmt.Errorf("%w: enum index %d not in [0, %d)", ErrOutOfRange, raw, len(e.members))
	}
	return e.members[raw], nil
}

// EnumName converts enum members to their names instead of their ordinals.
// Stored data survives reordering the member list at the cost of renames.
// The name function must be injective over the members.
func EnumName[D comparable](members []D, name func(D) string) Converter[D, string] {
	e := enumName[D]{
		names:  make(map[D]string, len(members)),
		byName: make(map[string]D, len(members)),
	}
	for _, m := range members {
		n := name(m)
		e.names[m] = n
		e.byName[n] = m
	}
	return e
}

type enumName[D comparable] struct {
	names  map[D]string
	byName map[string]D
}

func (e enumName[D]) ToSQL(value D) string {
	n, ok := e.names[value]
	if !ok {
		panic(fmt.Sprintf("convert: %v is not a member of the enum", value))
	}
	return n
}

func (e enumName[D]) FromSQL(raw string) (D, error) {
	m, ok := e.byName[raw]
	if !ok {
		var zero D
		return zero, fmt.Errorf("%w: unknown enum name %q", ErrInvalidValue, raw)
	}
	return m, nil
}
