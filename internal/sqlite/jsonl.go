// JSONL mirror read/write with atomic persistence. Each shelf owns one
// <name>.jsonl file in the data directory, one record per line.
package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// mirrorPath returns the JSONL file path for a shelf.
func mirrorPath(dataDir, shelfName string) string {
	return filepath.Join(dataDir, shelfName+".jsonl")
}

// persistJSONL rewrites the shelf's JSONL mirror from the current SQLite
// contents. The caller must hold the backend lock.
func (s *shelf) persistJSONL() error {
	rows, err := s.queryRaw("")
	if err != nil {
		return err
	}

	lines := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		entry := map[string]any{types.IDColumn: row.id}
		for i, col := range s.schema.Columns {
			v, err := jsonValue(col, row.vals[i])
			if err != nil {
				return fmt.Errorf("mirroring column %q of record %s: %w", col.Name, row.id, err)
			}
			entry[col.Name] = v
		}
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", row.id, err)
		}
		lines = append(lines, line)
	}

	return writeJSONL(mirrorPath(s.backend.config.DataDir, s.schema.Name), lines)
}

// loadJSONL reloads the shelf's JSONL mirror into SQLite. A missing mirror
// file means an empty shelf. The caller must hold the backend lock.
func (s *shelf) loadJSONL() error {
	path := mirrorPath(s.backend.config.DataDir, s.schema.Name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	lines, err := readJSONL(path)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %q (%s) VALUES (%s)",
		s.schema.Name, columnList(s.schema), placeholders(len(s.schema.Columns)+1))

	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			// readJSONL already validated the line; treat a failure here
			// like any other malformed line and skip it.
			continue
		}
		id, _ := entry[types.IDColumn].(string)
		if id == "" {
			id = newRecordID()
		}

		args := make([]any, 0, len(s.schema.Columns)+1)
		args = append(args, id)
		for _, col := range s.schema.Columns {
			v, err := storageValue(col, entry[col.Name])
			if err != nil {
				return fmt.Errorf("restoring column %q of record %s: %w", col.Name, id, err)
			}
			args = append(args, v)
		}
		if _, err := s.backend.db.Exec(stmt, args...); err != nil {
			return fmt.Errorf("restoring record %s: %w", id, err)
		}
	}
	return nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line.
// Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return lines, nil
}

// writeJSONL atomically writes lines to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, lines []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
