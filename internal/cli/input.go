package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// LoadExternal reads a JSON array of parsed statement lines.
func LoadExternal(path string) ([]transaction.ParsedExternal, error) {
	var lines []transaction.ParsedExternal
	if err := readJSON(path, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadInternal reads a JSON array of stored transactions.
func LoadInternal(path string) ([]transaction.Internal, error) {
	var txs []transaction.Internal
	if err := readJSON(path, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// StatementIDFromPath derives a statement ID from a file name,
// e.g. "statements/2025-11.json" -> "2025-11".
func StatementIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
