package storage

import (
	"context"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	ReportRepository
	ResolutionRepository
	SuppressionRepository
	Close() error
}

// ReportRepository persists reconciliation reports
type ReportRepository interface {
	// SaveReport stores a built report in a single write and returns its new ID
	SaveReport(ctx context.Context, r *report.Report) (string, error)

	// GetReport retrieves a report by ID, or ErrNotFound
	GetReport(ctx context.Context, id string) (*StoredReport, error)

	// ListReports returns report summaries matching the filters, newest first
	ListReports(ctx context.Context, filters ReportFilters) ([]ReportSummaryRow, error)
}

// ResolutionRepository records the explicit action that moves a discrepancy
// or orphan to RESOLVED
type ResolutionRepository interface {
	// MarkResolved marks one result of a report as resolved. Either ID may be
	// empty for missing results. Marking twice is not an error.
	MarkResolved(ctx context.Context, res Resolution) error

	// ListResolved returns the resolved result keys for a report (see ResultKey)
	ListResolved(ctx context.Context, reportID string) (map[string]bool, error)
}

// SuppressionRepository stores "not a duplicate" markers
type SuppressionRepository interface {
	// SaveSuppression stores a marker; saving an existing pair updates its note
	SaveSuppression(ctx context.Context, s Suppression) error

	// LoadSuppressions returns every stored marker as a set
	LoadSuppressions(ctx context.Context) (duplicates.SuppressionSet, error)
}
