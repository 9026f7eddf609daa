package handlers

import (
	"context"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// ReconcileService is the application service behind the handlers.
// *reconcile.Service implements it.
type ReconcileService interface {
	RunReconciliation(ctx context.Context, in reconcile.Input) (*reconcile.RunResult, error)
	GetReport(ctx context.Context, id string) (*storage.StoredReport, error)
	ListReports(ctx context.Context, filters storage.ReportFilters) ([]storage.ReportSummaryRow, error)
	ResolveResult(ctx context.Context, reportID, externalID, internalID, note string) error
	DetectDuplicates(ctx context.Context, req reconcile.DuplicateRequest) (*duplicates.Result, error)
	ConfirmNotDuplicate(ctx context.Context, firstID, secondID, note string) (duplicates.PairKey, error)
}

var _ ReconcileService = (*reconcile.Service)(nil)
