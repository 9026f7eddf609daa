package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, meta report.Metadata) {
	fmt.Fprintf(w, "statement-reconciler: %s", meta.StatementID)
	if meta.Bank != "" {
		fmt.Fprintf(w, " (%s)", meta.Bank)
	}
	fmt.Fprintln(w)
}

// PrintConfiguration prints the scoring configuration of a run
func PrintConfiguration(w io.Writer, cfg matcher.Config) {
	p := cfg.Profile
	fmt.Fprintf(w, "Weights: merchant=%.0f amount=%.0f date=%.0f | Threshold: %.0f | Window: %d days",
		p.MerchantWeight, p.AmountWeight, p.DateWeight, cfg.MatchThreshold, p.WindowDays)
	if cfg.Currency != "" {
		fmt.Fprintf(w, " | Currency: %s", cfg.Currency)
	}
	fmt.Fprint(w, "\n\n")
}

// PrintSummary prints the report summary and every unresolved line
func PrintSummary(w io.Writer, rep *report.Report) {
	s := rep.Summary()
	meta := rep.Metadata()

	fmt.Fprintln(w, strings.Repeat("-", 60))
	if s.TotalExternal == 0 {
		fmt.Fprintf(w, "%s: nothing to reconcile\n", reconcile.ErrNoExternal)
	}
	fmt.Fprintf(w, "Summary: Matched=%d/%d (%.2f%%) High=%d Medium=%d Low=%d\n",
		s.Matched, s.TotalExternal, s.MatchPercentage, s.MatchedHigh, s.MatchedMedium, s.MatchedLow)
	fmt.Fprintf(w, "Missing: internal=%d external=%d | Discrepancies=%d | Skipped=%d\n",
		s.MissingInInternal, s.MissingInExternal, s.Discrepancies, s.Skipped)
	fmt.Fprintf(w, "Totals: external=%s internal=%s difference=%s %s\n",
		s.TotalExternalAmount.String(), s.TotalInternalAmount.String(), s.Difference.String(), meta.Currency)
	fmt.Fprintf(w, "Status: %s\n", s.Status)

	printResults(w, "Discrepancies", rep.Discrepancies())
	printResults(w, "Missing in internal", rep.MissingInInternal())
	printResults(w, "Missing in external", rep.MissingInExternal())

	if len(meta.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped:")
		for _, skip := range meta.Skipped {
			fmt.Fprintf(w, "  - %v\n", skip)
		}
	}
}

func printResults(w io.Writer, title string, results []matcher.MatchResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, res := range results {
		fmt.Fprintf(w, "  - %s\n", describe(res))
	}
}

func describe(res matcher.MatchResult) string {
	var parts []string
	if res.External != nil {
		parts = append(parts, fmt.Sprintf("%s %s %s %s",
			res.External.ID(), res.External.Day().Format("2006-01-02"), res.External.MerchantRaw(), res.External.Amount()))
	}
	if res.Internal != nil {
		parts = append(parts, fmt.Sprintf("%s %s %s %s",
			res.Internal.ID(), res.Internal.Day().Format("2006-01-02"), res.Internal.MerchantRaw(), res.Internal.Amount()))
	}
	line := strings.Join(parts, " <-> ")
	if res.Discrepancy != nil {
		line += fmt.Sprintf(" [%s: %s]", res.Discrepancy.Type, res.Discrepancy.Description)
	}
	if res.Score > 0 {
		line += fmt.Sprintf(" (score %.1f)", res.Score)
	}
	return line
}

// PrintDuplicates prints a duplicate detection result
func PrintDuplicates(w io.Writer, result *duplicates.Result) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Duplicates: found=%d suppressed=%d skipped=%d\n",
		len(result.Matches), result.Suppressed, len(result.Skipped))
	for _, m := range result.Matches {
		fmt.Fprintf(w, "  - %s (score %.1f): %s\n", m.Key, m.SimilarityScore, strings.Join(m.Reasons, ", "))
	}
}

// WriteReport writes the full report as indented JSON.
func WriteReport(path string, rep *report.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
