package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage provides SQLite database access for reconciliation reports.
// It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	return NewStorageWithLogger(dbPath, nil)
}

// NewStorageWithLogger creates a storage instance that logs migrations to logger.
func NewStorageWithLogger(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", dbPath, ErrPersistence, err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db, logger: logger}

	// Run all pending migrations
	if err := s.runMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// runMigrations applies the embedded goose migrations
func (s *Storage) runMigrations(ctx context.Context) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveReport stores a report and returns its generated ID
func (s *Storage) SaveReport(ctx context.Context, r *report.Report) (string, error) {
	if r == nil {
		return "", errors.New("save report: nil report")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	meta := r.Metadata()
	summary := r.Summary()
	id := uuid.NewString()

	query := `
	INSERT INTO reconciliation_reports
	(id, statement_id, profile_id, bank, currency, period_start, period_end,
	 status, match_percentage, discrepancies, processed_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		meta.StatementID,
		meta.ProfileID,
		meta.Bank,
		meta.Currency,
		nullTime(meta.PeriodStart),
		nullTime(meta.PeriodEnd),
		string(summary.Status),
		summary.MatchPercentage,
		summary.Discrepancies,
		meta.ProcessedAt.UTC(),
		string(data),
	)
	if err != nil {
		return "", fmt.Errorf("save report: %w: %w", ErrPersistence, err)
	}

	return id, nil
}

// GetReport retrieves a report and its resolutions by ID
func (s *Storage) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM reconciliation_reports WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w: %w", id, ErrPersistence, err)
	}

	var r report.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w: %w", id, ErrPersistence, err)
	}

	resolved, err := s.ListResolved(ctx, id)
	if err != nil {
		return nil, err
	}

	return &StoredReport{ID: id, Report: &r, Resolved: resolved}, nil
}

// ListReports returns report summaries, newest first
func (s *Storage) ListReports(ctx context.Context, filters ReportFilters) ([]ReportSummaryRow, error) {
	var where []string
	var args []any
	if filters.StatementID != "" {
		where = append(where, "statement_id = ?")
		args = append(args, filters.StatementID)
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}

	query := `
	SELECT id, statement_id, profile_id, bank, currency, period_start, period_end,
	       status, match_percentage, discrepancies, processed_at
	FROM reconciliation_reports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY processed_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, filters.limit(), filters.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]ReportSummaryRow, 0)
	for rows.Next() {
		var row ReportSummaryRow
		var start, end sql.NullTime
		var status string
		if err := rows.Scan(
			&row.ID,
			&row.StatementID,
			&row.ProfileID,
			&row.Bank,
			&row.Currency,
			&start,
			&end,
			&status,
			&row.MatchPercentage,
			&row.Discrepancies,
			&row.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w: %w", ErrPersistence, err)
		}
		row.Status = report.Status(status)
		if start.Valid {
			row.PeriodStart = start.Time
		}
		if end.Valid {
			row.PeriodEnd = end.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w: %w", ErrPersistence, err)
	}

	return out, nil
}

// MarkResolved records a resolution for one result of a report
func (s *Storage) MarkResolved(ctx context.Context, res Resolution) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reconciliation_reports WHERE id = ?`, res.ReportID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("mark resolved: %w: %w", ErrPersistence, err)
	}
	if exists == 0 {
		return fmt.Errorf("report %s: %w", res.ReportID, ErrNotFound)
	}

	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO result_resolutions (report_id, external_id, internal_id, note, resolved_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (report_id, external_id, internal_id) DO UPDATE SET note = excluded.note
	`, res.ReportID, res.ExternalID, res.InternalID, res.Note, res.ResolvedAt)
	if err != nil {
		return fmt.Errorf("mark resolved: %w: %w", ErrPersistence, err)
	}
	return nil
}

// ListResolved returns resolved result keys for a report
func (s *Storage) ListResolved(ctx context.Context, reportID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT external_id, internal_id FROM result_resolutions WHERE report_id = ?`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	resolved := make(map[string]bool)
	for rows.Next() {
		var externalID, internalID string
		if err := rows.Scan(&externalID, &internalID); err != nil {
			return nil, fmt.Errorf("scan resolution: %w: %w", ErrPersistence, err)
		}
		resolved[ResultKey(externalID, internalID)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resolutions: %w: %w", ErrPersistence, err)
	}
	return resolved, nil
}

// SaveSuppression stores a "not a duplicate" marker
func (s *Storage) SaveSuppression(ctx context.Context, sup Suppression) error {
	first, second, err := sup.Key.IDs()
	if err != nil {
		return fmt.Errorf("save suppression: %w", err)
	}
	if sup.CreatedAt.IsZero() {
		sup.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO duplicate_suppressions (pair_key, first_id, second_id, note, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (pair_key) DO UPDATE SET note = excluded.note
	`, string(sup.Key), first, second, sup.Note, sup.CreatedAt)
	if err != nil {
		return fmt.Errorf("save suppression: %w: %w", ErrPersistence, err)
	}
	return nil
}

// LoadSuppressions returns all stored markers
func (s *Storage) LoadSuppressions(ctx context.Context) (duplicates.SuppressionSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pair_key FROM duplicate_suppressions`)
	if err != nil {
		return nil, fmt.Errorf("load suppressions: %w: %w", ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	set := duplicates.NewSuppressionSet()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan suppression: %w: %w", ErrPersistence, err)
		}
		set[duplicates.PairKey(key)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load suppressions: %w: %w", ErrPersistence, err)
	}
	return set, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
