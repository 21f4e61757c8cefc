// DDL generation from shelf schemas.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// sqliteTypes maps the declared column types to SQLite column affinities.
// Booleans are stored as 0/1 integers, timestamps as RFC 3339 text.
var sqliteTypes = map[string]string{
	types.SQLText:      "TEXT",
	types.SQLInteger:   "INTEGER",
	types.SQLReal:      "REAL",
	types.SQLBlob:      "BLOB",
	types.SQLBoolean:   "INTEGER",
	types.SQLTimestamp: "TEXT",
}

// createTableSQL renders the CREATE TABLE statement for a schema. Every
// shelf carries an implicit id text primary key; the caller has already
// validated the schema, so the column types are known to be mapped.
func createTableSQL(schema types.Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %q (\n  id TEXT PRIMARY KEY", schema.Name)
	for _, col := range schema.Columns {
		fmt.Fprintf(&sb, ",\n  %q %s", col.Name, sqliteTypes[col.Type])
		if !col.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}
	sb.WriteString("\n)")
	return sb.String()
}

// columnList renders the quoted column names for SELECT and INSERT
// statements, id first, in schema order.
func columnList(schema types.Schema) string {
	names := make([]string, 0, len(schema.Columns)+1)
	names = append(names, `"id"`)
	for _, col := range schema.Columns {
		names = append(names, fmt.Sprintf("%q", col.Name))
	}
	return strings.Join(names, ", ")
}

// placeholders renders n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
