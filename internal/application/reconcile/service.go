package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

var (
	// ErrResultNotFound is returned when a report holds no result for the given IDs.
	ErrResultNotFound = errors.New("result not found in report")

	// ErrNotResolvable is returned when resolving a result that is already matched.
	ErrNotResolvable = errors.New("only discrepancies and missing transactions can be resolved")

	// ErrInvalidRequest is returned for requests that fail basic validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// RunResult is a persisted reconciliation.
type RunResult struct {
	ReportID string         `json:"id"`
	Report   *report.Report `json:"report"`
}

// DuplicateRequest asks for duplicates among recorded transactions.
// Zero LookbackDays and Threshold use the service defaults. An empty Currency
// uses the configured run currency.
type DuplicateRequest struct {
	Transactions []transaction.Internal `json:"transactions"`
	Currency     string                 `json:"currency,omitempty"`
	LookbackDays int                    `json:"lookback_days,omitempty"`
	Threshold    float64                `json:"threshold,omitempty"`
	AsOf         time.Time              `json:"as_of,omitempty"`
}

// Service runs reconciliations and keeps their results in a repository.
type Service struct {
	engine    *Engine
	store     storage.Repository
	dupConfig duplicates.Config
	logger    *slog.Logger
}

// NewService creates a new service. A nil logger uses slog.Default().
func NewService(engine *Engine, store storage.Repository, dupConfig duplicates.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:    engine,
		store:     store,
		dupConfig: dupConfig,
		logger:    logger,
	}
}

// RunReconciliation reconciles the input and saves the report in one write.
func (s *Service) RunReconciliation(ctx context.Context, in Input) (*RunResult, error) {
	rep, err := s.engine.Reconcile(ctx, in)
	if err != nil {
		return nil, err
	}

	id, err := s.store.SaveReport(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	s.logger.Info("report saved", "id", id, "statement", rep.Metadata().StatementID, "status", rep.Summary().Status)
	return &RunResult{ReportID: id, Report: rep}, nil
}

// GetReport returns a stored report with its resolution state.
func (s *Service) GetReport(ctx context.Context, id string) (*storage.StoredReport, error) {
	return s.store.GetReport(ctx, id)
}

// ListReports returns stored report summaries.
func (s *Service) ListReports(ctx context.Context, filters storage.ReportFilters) ([]storage.ReportSummaryRow, error) {
	if filters.Status != "" && !report.Status(filters.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, filters.Status)
	}
	return s.store.ListReports(ctx, filters)
}

// DetectDuplicates runs duplicate detection, skipping every stored
// "not a duplicate" marker.
func (s *Service) DetectDuplicates(ctx context.Context, req DuplicateRequest) (*duplicates.Result, error) {
	cfg := s.dupConfig
	if req.LookbackDays != 0 {
		cfg.LookbackDays = req.LookbackDays
	}
	if req.Threshold != 0 {
		cfg.Threshold = req.Threshold
	}
	if !req.AsOf.IsZero() {
		cfg.AsOf = req.AsOf
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	suppressed, err := s.store.LoadSuppressions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load suppressions: %w", err)
	}

	return s.engine.DetectDuplicates(ctx, req.Currency, req.Transactions, suppressed, cfg)
}

// ConfirmNotDuplicate stores the marker that hides a pair from later runs.
func (s *Service) ConfirmNotDuplicate(ctx context.Context, firstID, secondID, note string) (duplicates.PairKey, error) {
	firstID, secondID = strings.TrimSpace(firstID), strings.TrimSpace(secondID)
	if firstID == "" || secondID == "" || firstID == secondID {
		return "", fmt.Errorf("%w: two distinct transaction IDs are required", ErrInvalidRequest)
	}
	if strings.Contains(firstID, transaction.IDSeparator) || strings.Contains(secondID, transaction.IDSeparator) {
		return "", fmt.Errorf("%w: transaction IDs must not contain %q", ErrInvalidRequest, transaction.IDSeparator)
	}

	key := duplicates.ConfirmNotDuplicate(firstID, secondID)
	if err := s.store.SaveSuppression(ctx, storage.Suppression{Key: key, Note: note}); err != nil {
		return "", fmt.Errorf("save suppression: %w", err)
	}

	s.logger.Info("pair marked as not duplicate", "pair", key)
	return key, nil
}

// ResolveResult marks a discrepancy or missing transaction of a stored
// report as resolved. Matched results cannot be resolved.
func (s *Service) ResolveResult(ctx context.Context, reportID, externalID, internalID, note string) error {
	stored, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return err
	}

	result, ok := stored.Report.FindResult(externalID, internalID)
	if !ok {
		return fmt.Errorf("report %s, external %q, internal %q: %w", reportID, externalID, internalID, ErrResultNotFound)
	}
	if result.Status == matcher.StatusMatched {
		return ErrNotResolvable
	}

	if err := s.store.MarkResolved(ctx, storage.Resolution{
		ReportID:   reportID,
		ExternalID: externalID,
		InternalID: internalID,
		Note:       note,
	}); err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}

	s.logger.Info("result resolved", "report", reportID, "external", externalID, "internal", internalID, "status", result.Status)
	return nil
}
