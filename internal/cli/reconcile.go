package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// RunReconcile reconciles one statement file against one transactions file
// and prints the outcome to w.
func RunReconcile(ctx context.Context, cfg *config.Config, flags ReconcileFlags, w io.Writer, logger *slog.Logger) error {
	if missing := flags.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required flags: %v", missing)
	}

	external, err := LoadExternal(flags.ExternalPath)
	if err != nil {
		return err
	}
	internal, err := LoadInternal(flags.InternalPath)
	if err != nil {
		return err
	}

	meta := flags.Metadata()
	if meta.StatementID == "" {
		meta.StatementID = StatementIDFromPath(flags.ExternalPath)
	}

	engine := reconcile.NewEngine(cfg.MatcherConfig(), logger)
	dupConfig := cfg.DuplicateConfig()
	in := reconcile.Input{Meta: meta, External: external, Internal: internal}

	PrintHeader(w, meta)
	PrintConfiguration(w, engine.Config())

	var (
		rep      *report.Report
		service  *reconcile.Service
		reportID string
	)
	if flags.Save {
		store, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		service = reconcile.NewService(engine, store, dupConfig, logger)
		result, err := service.RunReconciliation(ctx, in)
		if err != nil {
			return err
		}
		rep, reportID = result.Report, result.ReportID
	} else {
		rep, err = engine.Reconcile(ctx, in)
		if err != nil {
			return err
		}
	}

	PrintSummary(w, rep)
	if reportID != "" {
		fmt.Fprintf(w, "\nSaved report %s to %s\n", reportID, cfg.Storage.DatabasePath)
	}

	if flags.OutPath != "" {
		if err := WriteReport(flags.OutPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote report to %s\n", flags.OutPath)
	}

	if !flags.Duplicates {
		return nil
	}

	var result *duplicates.Result
	if service != nil {
		result, err = service.DetectDuplicates(ctx, reconcile.DuplicateRequest{Transactions: internal, Currency: meta.Currency})
	} else {
		if err := dupConfig.Validate(); err != nil {
			return fmt.Errorf("duplicates config: %w", err)
		}
		result, err = engine.DetectDuplicates(ctx, meta.Currency, internal, nil, dupConfig)
	}
	if err != nil {
		return err
	}
	PrintDuplicates(w, result)
	return nil
}
