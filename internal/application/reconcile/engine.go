// Package reconcile runs a full reconciliation: it validates raw inputs,
// matches statement lines against recorded transactions and builds the
// report. It also runs duplicate detection over recorded transactions.
//
// An Engine is built per run and holds no shared state:
//
//	engine := reconcile.NewEngine(cfg.MatcherConfig(), logger)
//	rep, err := engine.Reconcile(ctx, reconcile.Input{
//		Meta:     report.Metadata{StatementID: "2025-11"},
//		External: lines,
//		Internal: txs,
//	})
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
	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
)

// ErrNoExternal marks a run whose statement had no usable lines. Reconcile
// never returns it; shells use it to word their output.
var ErrNoExternal = errors.New("statement has no usable lines")

// Input is one reconciliation request.
type Input struct {
	Meta     report.Metadata              `json:"metadata"`
	External []transaction.ParsedExternal `json:"external"`
	Internal []transaction.Internal       `json:"internal"`
}

// Engine reconciles statements with recorded transactions.
type Engine struct {
	config     matcher.Config
	matcher    *matcher.Matcher
	normalizer *merchant.Normalizer
	logger     *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(cfg matcher.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		config:     cfg,
		matcher:    matcher.NewMatcher(cfg),
		normalizer: merchant.NewNormalizer(cfg.NoiseTokens...),
		logger:     logger,
	}
}

// Config returns the matcher config of the engine.
func (e *Engine) Config() matcher.Config {
	return e.config
}

// Reconcile validates the raw inputs and reconciles them. Invalid records are
// listed in the report metadata instead of failing the run. It returns an
// error only for an invalid config or a cancelled context.
func (e *Engine) Reconcile(ctx context.Context, in Input) (*report.Report, error) {
	meta := in.Meta
	meta.Currency = e.runCurrency(meta.Currency)

	opts := validator.Options{Currency: meta.Currency, Normalizer: e.normalizer}
	externals, skippedExt := validator.ProjectExternal(in.External, opts)
	internals, skippedInt := validator.ProjectInternal(in.Internal, opts)

	skipped := make([]validator.InputValidationError, 0, len(meta.Skipped)+len(skippedExt)+len(skippedInt))
	skipped = append(skipped, meta.Skipped...)
	skipped = append(skipped, skippedExt...)
	skipped = append(skipped, skippedInt...)
	meta.Skipped = skipped

	for _, s := range skippedExt {
		e.logger.Debug("skipped statement line", "record", s.RecordID, "field", s.Field, "reason", s.Reason)
	}
	for _, s := range skippedInt {
		e.logger.Debug("skipped transaction", "record", s.RecordID, "field", s.Field, "reason", s.Reason)
	}

	return e.ReconcileRecords(ctx, meta, externals, internals)
}

// ReconcileRecords reconciles records that were already projected.
func (e *Engine) ReconcileRecords(ctx context.Context, meta report.Metadata, externals, internals []transaction.Record) (*report.Report, error) {
	start := time.Now()
	meta.Currency = e.runCurrency(meta.Currency)
	meta.Config = report.SnapshotOf(e.config)

	e.logger.Info("reconciliation started",
		"statement", meta.StatementID,
		"external", len(externals),
		"internal", len(internals),
		"skipped", len(meta.Skipped))

	results, err := e.matcher.Match(ctx, externals, internals)
	if err != nil {
		return nil, fmt.Errorf("reconcile statement %q: %w", meta.StatementID, err)
	}

	rep := report.Build(meta, externals, internals, results)
	summary := rep.Summary()

	e.logger.Info("reconciliation finished",
		"statement", meta.StatementID,
		"status", summary.Status,
		"matched", summary.Matched,
		"discrepancies", summary.Discrepancies,
		"missing_internal", summary.MissingInInternal,
		"missing_external", summary.MissingInExternal,
		"match_pct", summary.MatchPercentage,
		"difference", summary.Difference,
		"duration", time.Since(start))

	return rep, nil
}

// DetectDuplicates validates recorded transactions and returns likely
// duplicate pairs, skipping suppressed ones. currency selects the run currency
// the same way Reconcile does; empty falls back to the configured one.
func (e *Engine) DetectDuplicates(ctx context.Context, currency string, txs []transaction.Internal, suppressed duplicates.SuppressionSet, cfg duplicates.Config) (*duplicates.Result, error) {
	opts := validator.Options{Currency: e.runCurrency(currency), Normalizer: e.normalizer}
	records, skipped := validator.ProjectInternal(txs, opts)

	matches, suppressedCount, err := duplicates.NewDetector(cfg).Detect(ctx, records, suppressed)
	if err != nil {
		return nil, fmt.Errorf("detect duplicates: %w", err)
	}

	if skipped == nil {
		skipped = []validator.InputValidationError{}
	}

	e.logger.Info("duplicate detection finished",
		"records", len(records),
		"skipped", len(skipped),
		"matches", len(matches),
		"suppressed", suppressedCount)

	return &duplicates.Result{Matches: matches, Skipped: skipped, Suppressed: suppressedCount}, nil
}

// runCurrency prefers the currency named by the request over the configured one.
func (e *Engine) runCurrency(requested string) string {
	if c := strings.ToUpper(strings.TrimSpace(requested)); c != "" {
		return c
	}
	return strings.ToUpper(strings.TrimSpace(e.config.Currency))
}
