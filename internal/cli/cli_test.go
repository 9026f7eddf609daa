package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

const externalJSON = `[
	{"date": "06/11/2025", "concept": "SUBWAY MOMENTUM", "amount": "4.500", "is_debit": true}
]`

const internalJSON = `[
	{"id": "int-1", "merchant": "Subway Momentum", "amount": "4500", "timestamp": "2025-11-06T13:00:00Z"},
	{"id": "int-2", "merchant": "Uber Trip", "amount": "5000", "timestamp": "2025-11-07T09:00:00Z"},
	{"id": "int-3", "merchant": "Uber Trip", "amount": "5000", "timestamp": "2025-11-07T09:20:00Z"}
]`

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{DatabasePath: filepath.Join(t.TempDir(), "reconciler.db")},
	}
}

func TestParseReconcileFlags(t *testing.T) {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	flags, err := parseReconcileFlags(fs, []string{
		"-external", "nov.json", "-internal", "txs.json", "-currency", " clp ", "-save", "-duplicates",
	})

	require.NoError(t, err)
	assert.Equal(t, "nov.json", flags.ExternalPath)
	assert.True(t, flags.Save)
	assert.True(t, flags.Duplicates)
	assert.Equal(t, "config.yaml", flags.ConfigPath)
	assert.Empty(t, flags.Missing())
	assert.Equal(t, "CLP", flags.Metadata().Currency)
}

func TestReconcileFlags_Missing(t *testing.T) {
	assert.Equal(t, []string{"-external", "-internal"}, ReconcileFlags{}.Missing())
	assert.Equal(t, []string{"-internal"}, ReconcileFlags{ExternalPath: "a.json"}.Missing())
}

func TestStatementIDFromPath(t *testing.T) {
	assert.Equal(t, "2025-11", StatementIDFromPath("statements/2025-11.json"))
	assert.Equal(t, "nov", StatementIDFromPath("nov"))
}

func TestLoadInput_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadExternal(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadInternal(writeFile(t, dir, "bad.json", `{"not": "an array"}`))
	assert.Error(t, err)
}

func TestRunReconcile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "report.json")
	flags := ReconcileFlags{
		ExternalPath: writeFile(t, dir, "2025-11.json", externalJSON),
		InternalPath: writeFile(t, dir, "internal.json", internalJSON),
		Currency:     "CLP",
		OutPath:      outPath,
		Duplicates:   true,
	}
	var out bytes.Buffer

	err := RunReconcile(context.Background(), testConfig(t), flags, &out, discard)

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "statement-reconciler: 2025-11")
	assert.Contains(t, text, "Matched=1/1 (100.00%)")
	assert.Contains(t, text, "Missing in external:")
	assert.Contains(t, text, "Status: good")
	assert.Contains(t, text, "int-2|int-3")
	assert.NotContains(t, text, "Saved report")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "2025-11", rep.Metadata().StatementID)
	assert.Equal(t, 1, rep.Summary().Matched)
}

func TestRunReconcile_Save(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	flags := ReconcileFlags{
		ExternalPath: writeFile(t, dir, "ext.json", externalJSON),
		InternalPath: writeFile(t, dir, "int.json", internalJSON),
		StatementID:  "stmt-nov",
		Save:         true,
	}
	var out bytes.Buffer

	err := RunReconcile(context.Background(), cfg, flags, &out, discard)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Saved report")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := store.ListReports(ctx, storage.ReportFilters{StatementID: "stmt-nov"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRunReconcile_EmptyStatement(t *testing.T) {
	dir := t.TempDir()
	flags := ReconcileFlags{
		ExternalPath: writeFile(t, dir, "empty.json", `[]`),
		InternalPath: writeFile(t, dir, "int.json", `[]`),
	}
	var out bytes.Buffer

	err := RunReconcile(context.Background(), testConfig(t), flags, &out, discard)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "nothing to reconcile")
	assert.Contains(t, out.String(), "Status: perfect")
}

func TestRunReconcile_MissingFlags(t *testing.T) {
	err := RunReconcile(context.Background(), testConfig(t), ReconcileFlags{}, io.Discard, discard)
	assert.ErrorContains(t, err, "-external")
}

func TestAPIConfig(t *testing.T) {
	cfg := &config.Config{API: config.APIConfig{
		Port:               9000,
		AllowedOrigins:     []string{"https://example.com"},
		RateLimitPerSecond: 2,
		RateBurst:          4,
		ReportCacheTTL:     time.Minute,
	}}

	apiCfg := APIConfig(cfg, &ServeFlags{})
	assert.Equal(t, 9000, apiCfg.Port)
	assert.Equal(t, []string{"https://example.com"}, apiCfg.AllowedOrigins)
	assert.Equal(t, time.Minute, apiCfg.ReportCacheTTL)

	apiCfg = APIConfig(cfg, &ServeFlags{Port: 9100})
	assert.Equal(t, 9100, apiCfg.Port)
}
