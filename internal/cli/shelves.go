// Shelf inspection commands. These read the JSONL mirrors directly so they
// work without the schemas that created the shelves.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newShelvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "List the shelves in the data directory",
		RunE:  runShelves,
	}
}

func runShelves(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("load config: %s", err))
	}

	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		return exitError(exitUserError, fmt.Sprintf("read data directory: %s", err))
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".jsonl"))
	}
	sort.Strings(names)

	if flags.jsonMode {
		out, err := json.Marshal(names)
		if err != nil {
			return exitError(exitSysError, fmt.Sprintf("encode shelves: %s", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <shelf>",
		Short: "Print the records of a shelf",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitError(exitSysError, fmt.Sprintf("load config: %s", err))
	}

	path := filepath.Join(cfg.DataDir, args[0]+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		return exitError(exitUserError, fmt.Sprintf("read shelf %s: %s", args[0], err))
	}

	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		if flags.jsonMode {
			fmt.Fprintln(cmd.OutOrStdout(), line)
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		id, _ := rec["id"].(string)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d fields)\n", id, len(rec)-1)
	}
	return nil
}
