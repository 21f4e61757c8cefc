package sqlite

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/convert"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// jarStates is the enum used by the test schema.
var jarStates = []string{"sealed", "open", "empty"}

// jarsSchema exercises one converter-carrying column per interesting case:
// a plain text column, an enum-index column, a JSON-capable timestamp
// column, a boolean column, and a nullable enum column.
func jarsSchema() types.Schema {
	return types.Schema{
		Name: "jars",
		Columns: []types.Column{
			{Name: "label", Type: types.SQLText},
			{Name: "state", Type: types.SQLInteger,
				Codec: types.Bind(convert.EnumIndex(jarStates))},
			{Name: "sealed_at", Type: types.SQLInteger,
				Codec: types.Bind[time.Time, int64](convert.UnixMillis())},
			{Name: "fragile", Type: types.SQLBoolean,
				Codec: types.Bind(convert.BoolInt())},
			{Name: "grade", Type: types.SQLInteger, Nullable: true,
				Codec: types.Bind(convert.EnumIndex([]string{"A", "B", "C"}))},
		},
	}
}

func newTestShelf(t *testing.T) (types.Shelf, *Backend, string) {
	t.Helper()
	b, dir := newTestBackend(t)
	t.Cleanup(func() { b.Detach() })
	require.NoError(t, b.CreateShelf(jarsSchema()))
	sh, err := b.Shelf("jars")
	require.NoError(t, err)
	return sh, b, dir
}

func TestShelfPutGetRoundTrip(t *testing.T) {
	sh, _, _ := newTestShelf(t)

	sealedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	id, err := sh.Put("", types.Record{
		"label":     "plum preserve",
		"state":     "open",
		"sealed_at": sealedAt,
		"fragile":   true,
		"grade":     "B",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := sh.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec[types.IDColumn])
	assert.Equal(t, "plum preserve", rec["label"])
	assert.Equal(t, "open", rec["state"])
	assert.Equal(t, true, rec["fragile"])
	assert.Equal(t, "B", rec["grade"])
	got, ok := rec["sealed_at"].(time.Time)
	require.True(t, ok, "sealed_at decoded as %T", rec["sealed_at"])
	assert.True(t, got.Equal(sealedAt))
}

func TestShelfPutValidation(t *testing.T) {
	sh, _, _ := newTestShelf(t)

	t.Run("unknown column", func(t *testing.T) {
		_, err := sh.Put("", types.Record{
			"label": "quince", "state": "sealed", "sealed_at": time.Now(), "fragile": false,
			"lid_count": 3,
		})
		assert.ErrorIs(t, err, types.ErrUnknownColumn)
	})

	t.Run("null in non-nullable column", func(t *testing.T) {
		_, err := sh.Put("", types.Record{
			"label": "quince", "state": "sealed", "sealed_at": time.Now(),
		})
		assert.ErrorIs(t, err, types.ErrNullValue)
	})

	t.Run("wrong domain type surfaces ErrTypeMismatch", func(t *testing.T) {
		_, err := sh.Put("", types.Record{
			"label": "quince", "state": 7, "sealed_at": time.Now(), "fragile": false,
		})
		assert.ErrorIs(t, err, types.ErrTypeMismatch)
	})
}

func TestShelfNullableColumn(t *testing.T) {
	sh, _, _ := newTestShelf(t)

	id, err := sh.Put("", types.Record{
		"label": "honey", "state": "sealed", "sealed_at": time.Now().UTC(), "fragile": false,
	})
	require.NoError(t, err)

	rec, err := sh.Get(id)
	require.NoError(t, err)
	assert.Nil(t, rec["grade"])
}

func TestShelfDelete(t *testing.T) {
	sh, _, _ := newTestShelf(t)

	id, err := sh.Put("", types.Record{
		"label": "chutney", "state": "empty", "sealed_at": time.Now().UTC(), "fragile": false,
	})
	require.NoError(t, err)

	require.NoError(t, sh.Delete(id))
	_, err = sh.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, sh.Delete(id), types.ErrNotFound)
	assert.ErrorIs(t, sh.Delete(""), types.ErrInvalidID)
}

func TestShelfList(t *testing.T) {
	sh, _, _ := newTestShelf(t)

	for _, label := range []string{"one", "two", "three"} {
		_, err := sh.Put("", types.Record{
			"label": label, "state": "sealed", "sealed_at": time.Now().UTC(), "fragile": false,
		})
		require.NoError(t, err)
	}

	records, err := sh.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	// UUID v7 IDs are time-ordered, so insertion order survives the sort.
	assert.Equal(t, "one", records[0]["label"])
	assert.Equal(t, "three", records[2]["label"])
}

func TestJSONLMirrorUsesJSONCapability(t *testing.T) {
	sh, _, dir := newTestShelf(t)

	sealedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	id, err := sh.Put("", types.Record{
		"label": "plum preserve", "state": "open", "sealed_at": sealedAt, "fragile": true,
	})
	require.NoError(t, err)

	lines, err := readJSONL(mirrorPath(dir, "jars"))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, id, entry["id"])
	// JSON-capable codec: RFC 3339 text, not epoch milliseconds.
	assert.Equal(t, "2026-02-03T04:05:06Z", entry["sealed_at"])
	// Plain codecs: the raw storage primitive.
	assert.Equal(t, float64(1), entry["state"])
	assert.Equal(t, float64(1), entry["fragile"])
	assert.Nil(t, entry["grade"])
}

func TestJSONLMirrorSurvivesReattach(t *testing.T) {
	sh, b, dir := newTestShelf(t)

	sealedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	id, err := sh.Put("", types.Record{
		"label": "plum preserve", "state": "open", "sealed_at": sealedAt, "fragile": true, "grade": "A",
	})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	fresh := NewBackend()
	require.NoError(t, fresh.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer fresh.Detach()
	require.NoError(t, fresh.CreateShelf(jarsSchema()))
	sh2, err := fresh.Shelf("jars")
	require.NoError(t, err)

	rec, err := sh2.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "plum preserve", rec["label"])
	assert.Equal(t, "open", rec["state"])
	assert.Equal(t, true, rec["fragile"])
	assert.Equal(t, "A", rec["grade"])
	got, ok := rec["sealed_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(sealedAt))
}

func TestCorruptedEnumOrdinalSurfacesOutOfRange(t *testing.T) {
	_, b, dir := newTestShelf(t)
	require.NoError(t, b.Detach())

	// A mirrored ordinal past the end of the member list is corrupted data;
	// reading it back must fail with the converter's range error.
	line := `{"id":"0191-bad","label":"mystery","state":9,"sealed_at":"2026-02-03T04:05:06Z","fragile":0,"grade":null}`
	require.NoError(t, os.WriteFile(mirrorPath(dir, "jars"), []byte(line+"\n"), 0o644))

	fresh := NewBackend()
	require.NoError(t, fresh.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer fresh.Detach()
	require.NoError(t, fresh.CreateShelf(jarsSchema()))
	sh, err := fresh.Shelf("jars")
	require.NoError(t, err)

	_, err = sh.Get("0191-bad")
	assert.ErrorIs(t, err, convert.ErrOutOfRange)
}
