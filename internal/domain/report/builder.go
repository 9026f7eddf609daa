package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
)

// Thresholds for the "good" status.
const (
	GoodMatchPercentage  = 90.0
	GoodMaxDiscrepancies = 2
)

// Build aggregates resolved results into a Report.
//
// A zero ProcessedAt is set to the current time, and a zero period defaults
// to the earliest and latest external dates.
func Build(meta Metadata, externals, internals []transaction.Record, results []matcher.MatchResult) *Report {
	r := &Report{}

	if meta.ProcessedAt.IsZero() {
		meta.ProcessedAt = time.Now().UTC()
	}
	if meta.PeriodStart.IsZero() && meta.PeriodEnd.IsZero() {
		meta.PeriodStart, meta.PeriodEnd = period(externals)
	}
	meta.Skipped = append(make([]validator.InputValidationError, 0, len(meta.Skipped)), meta.Skipped...)
	r.metadata = meta

	s := Summary{
		TotalExternal:       len(externals),
		TotalInternal:       len(internals),
		Skipped:             len(meta.Skipped),
		TotalExternalAmount: signedTotal(externals),
		TotalInternalAmount: signedTotal(internals),
	}
	s.Difference = s.TotalExternalAmount.Sub(s.TotalInternalAmount)

	for _, res := range results {
		switch res.Status {
		case matcher.StatusMatched:
			r.matched = append(r.matched, res)
		case matcher.StatusDiscrepancy:
			r.discrepancies = append(r.discrepancies, res)
		case matcher.StatusMissingInInternal:
			r.missingInInternal = append(r.missingInInternal, res)
		case matcher.StatusMissingInExternal:
			r.missingInExternal = append(r.missingInExternal, res)
		}

		if !res.Status.IsMatch() {
			continue
		}
		s.Matched++
		switch res.Confidence {
		case matcher.ConfidenceHigh:
			s.MatchedHigh++
		case matcher.ConfidenceMedium:
			s.MatchedMedium++
		case matcher.ConfidenceLow:
			s.MatchedLow++
		}
	}
	s.Discrepancies = len(r.discrepancies)
	s.MissingInInternal = len(r.missingInInternal)
	s.MissingInExternal = len(r.missingInExternal)

	s.MatchPercentage = MatchPercentage(s.Matched, s.TotalExternal)
	s.Status = overallStatus(s, transaction.MinorUnit(meta.Currency))
	r.summary = s

	return r
}

// MatchPercentage returns matched/totalExternal*100 rounded to two decimals.
// An empty statement counts as fully matched.
func MatchPercentage(matched, totalExternal int) float64 {
	if totalExternal == 0 {
		return 100
	}
	pct := float64(matched) / float64(totalExternal) * 100
	return math.Round(pct*100) / 100
}

func overallStatus(s Summary, minorUnit decimal.Decimal) Status {
	switch {
	case s.MatchPercentage == 100 && s.Discrepancies == 0 && s.Difference.Abs().LessThan(minorUnit):
		return StatusPerfect
	case s.MatchPercentage >= GoodMatchPercentage && s.Discrepancies <= GoodMaxDiscrepancies:
		return StatusGood
	default:
		return StatusNeedsReview
	}
}

func signedTotal(records []transaction.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.SignedAmount())
	}
	return total
}

func period(externals []transaction.Record) (time.Time, time.Time) {
	var start, end time.Time
	for i, rec := range externals {
		day := rec.Day()
		if i == 0 || day.Before(start) {
			start = day
		}
		if i == 0 || day.After(end) {
			end = day
		}
	}
	return start, end
}

func resultID(rec *transaction.Record) string {
	if rec == nil {
		return ""
	}
	return rec.ID()
}
