package convert

import (
	"errors"
	"testing"
)

func TestNullableSentinelPassthrough(t *testing.T) {
	conv := Nullable(EnumIndex([]string{"red", "green", "blue"}))

	if got := conv.ToSQL(nil); got != nil {
		t.Errorf("ToSQL(nil) = %v, want nil", got)
	}
	got, err := conv.FromSQL(nil)
	if err != nil {
		t.Fatalf("FromSQL(nil): %v", err)
	}
	if got != nil {
		t.Errorf("FromSQL(nil) = %v, want nil", got)
	}
}

func TestNullableDelegatesNonSentinel(t *testing.T) {
	inner := EnumIndex([]string{"red", "green", "blue"})
	conv := Nullable(inner)

	value := "green"
	raw := conv.ToSQL(&value)
	if raw == nil {
		t.Fatal("ToSQL(&value) = nil")
	}
	if want := inner.ToSQL(value); *raw != want {
		t.Errorf("ToSQL(&%q) = %d, want %d", value, *raw, want)
	}

	idx := int64(2)
	back, err := conv.FromSQL(&idx)
	if err != nil {
		t.Fatalf("FromSQL(&%d): %v", idx, err)
	}
	innerBack, _ := inner.FromSQL(idx)
	if back == nil || *back != innerBack {
		t.Errorf("FromSQL(&%d) = %v, want %q", idx, back, innerBack)
	}
}

func TestNullablePropagatesInnerErrors(t *testing.T) {
	conv := Nullable(EnumIndex([]string{"red", "green", "blue"}))

	bad := int64(7)
	_, err := conv.FromSQL(&bad)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("FromSQL(&%d) error = %v, want %v", bad, err, ErrOutOfRange)
	}
}

func TestNullableDoubleWrap(t *testing.T) {
	conv := Nullable(Nullable(EnumIndex([]string{"red", "green", "blue"})))

	if got := conv.ToSQL(nil); got != nil {
		t.Errorf("ToSQL(nil) = %v, want nil", got)
	}
	got, err := conv.FromSQL(nil)
	if err != nil {
		t.Fatalf("FromSQL(nil): %v", err)
	}
	if got != nil {
		t.Errorf("FromSQL(nil) = %v, want nil", got)
	}

	value := "blue"
	ptr := &value
	raw := conv.ToSQL(&ptr)
	if raw == nil || *raw == nil || **raw != 2 {
		t.Errorf("ToSQL(&&%q) = %v, want 2", value, raw)
	}
	back, err := conv.FromSQL(raw)
	if err != nil {
		t.Fatalf("FromSQL after double wrap: %v", err)
	}
	if back == nil || *back == nil || **back != value {
		t.Errorf("round trip through double wrap = %v, want %q", back, value)
	}
}
