// Package report aggregates resolved matches into a reconciliation report.
//
// A Report is immutable once built: its fields are unexported and every
// accessor returns a copy. It round-trips through JSON so a caller can
// persist it and read it back.
package report

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
)

// Status is the overall outcome of a reconciliation run.
type Status string

const (
	StatusPerfect     Status = "perfect"
	StatusGood        Status = "good"
	StatusNeedsReview Status = "needs_review"
)

// Valid reports whether s is a known report status.
func (s Status) Valid() bool {
	switch s {
	case StatusPerfect, StatusGood, StatusNeedsReview:
		return true
	}
	return false
}

// Summary holds the counts and totals of a run.
type Summary struct {
	TotalExternal     int `json:"total_external"`
	TotalInternal     int `json:"total_internal"`
	Matched           int `json:"matched"`
	MatchedHigh       int `json:"matched_high"`
	MatchedMedium     int `json:"matched_medium"`
	MatchedLow        int `json:"matched_low"`
	MissingInInternal int `json:"missing_in_internal"`
	MissingInExternal int `json:"missing_in_external"`
	Discrepancies     int `json:"discrepancies"`
	Skipped           int `json:"skipped"`

	TotalExternalAmount decimal.Decimal `json:"total_external_amount"`
	TotalInternalAmount decimal.Decimal `json:"total_internal_amount"`
	Difference          decimal.Decimal `json:"difference"`

	MatchPercentage float64 `json:"match_percentage"`
	Status          Status  `json:"status"`
}

// Weights is the scoring weight part of a config snapshot.
type Weights struct {
	Merchant       float64 `json:"merchant"`
	Amount         float64 `json:"amount"`
	Date           float64 `json:"date"`
	AccountBonus   float64 `json:"account_bonus"`
	ReferenceBonus float64 `json:"reference_bonus"`
}

// ConfigSnapshot records the matcher settings a report was produced with.
type ConfigSnapshot struct {
	MatchThreshold            float64 `json:"match_threshold"`
	HighConfidenceThreshold   float64 `json:"high_confidence_threshold"`
	MediumConfidenceThreshold float64 `json:"medium_confidence_threshold"`
	WindowDays                int     `json:"window_days"`
	AmountNearPct             string  `json:"amount_near_pct"`
	AmountMaxPct              string  `json:"amount_max_pct"`
	Weights                   Weights `json:"weights"`
}

// SnapshotOf captures the parts of cfg that change results.
func SnapshotOf(cfg matcher.Config) ConfigSnapshot {
	p := cfg.Profile
	return ConfigSnapshot{
		MatchThreshold:            cfg.MatchThreshold,
		HighConfidenceThreshold:   cfg.HighConfidenceThreshold,
		MediumConfidenceThreshold: cfg.MediumConfidenceThreshold,
		WindowDays:                p.WindowDays,
		AmountNearPct:             p.AmountNearPct.String(),
		AmountMaxPct:              p.AmountMaxPct.String(),
		Weights: Weights{
			Merchant:       p.MerchantWeight,
			Amount:         p.AmountWeight,
			Date:           p.DateWeight,
			AccountBonus:   p.AccountBonus,
			ReferenceBonus: p.ReferenceBonus,
		},
	}
}

// Metadata describes the run that produced a report.
type Metadata struct {
	StatementID string         `json:"statement_id"`
	ProfileID   string         `json:"profile_id"`
	Bank        string         `json:"bank"`
	Currency    string         `json:"currency"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	ProcessedAt time.Time      `json:"processed_at"`
	Config      ConfigSnapshot `json:"config"`

	Skipped []validator.InputValidationError `json:"skipped"`
}

// Report is a built reconciliation report.
type Report struct {
	metadata          Metadata
	summary           Summary
	matched           []matcher.MatchResult
	discrepancies     []matcher.MatchResult
	missingInInternal []matcher.MatchResult
	missingInExternal []matcher.MatchResult
}

// Metadata returns a copy of the run metadata.
func (r *Report) Metadata() Metadata {
	m := r.metadata
	m.Skipped = append(make([]validator.InputValidationError, 0, len(r.metadata.Skipped)), r.metadata.Skipped...)
	return m
}

func (r *Report) Summary() Summary { return r.summary }

func (r *Report) Matched() []matcher.MatchResult       { return cloneResults(r.matched) }
func (r *Report) Discrepancies() []matcher.MatchResult { return cloneResults(r.discrepancies) }

func (r *Report) MissingInInternal() []matcher.MatchResult {
	return cloneResults(r.missingInInternal)
}

func (r *Report) MissingInExternal() []matcher.MatchResult {
	return cloneResults(r.missingInExternal)
}

// Results returns every result: matched, discrepancies, then both missing lists.
func (r *Report) Results() []matcher.MatchResult {
	out := make([]matcher.MatchResult, 0,
		len(r.matched)+len(r.discrepancies)+len(r.missingInInternal)+len(r.missingInExternal))
	out = append(out, r.Matched()...)
	out = append(out, r.Discrepancies()...)
	out = append(out, r.MissingInInternal()...)
	out = append(out, r.MissingInExternal()...)
	return out
}

// FindResult returns the result pairing the given external and internal IDs.
// Either ID may be empty for missing results.
func (r *Report) FindResult(externalID, internalID string) (matcher.MatchResult, bool) {
	for _, res := range r.Results() {
		if resultID(res.External) == externalID && resultID(res.Internal) == internalID {
			return res, true
		}
	}
	return matcher.MatchResult{}, false
}

func cloneResults(in []matcher.MatchResult) []matcher.MatchResult {
	out := make([]matcher.MatchResult, len(in))
	for i, res := range in {
		res.Reasons = append([]string(nil), res.Reasons...)
		if res.Discrepancy != nil {
			d := *res.Discrepancy
			res.Discrepancy = &d
		}
		if res.External != nil {
			e := *res.External
			res.External = &e
		}
		if res.Internal != nil {
			in := *res.Internal
			res.Internal = &in
		}
		out[i] = res
	}
	return out
}

type reportJSON struct {
	Metadata          Metadata              `json:"metadata"`
	Summary           Summary               `json:"summary"`
	Matched           []matcher.MatchResult `json:"matched"`
	Discrepancies     []matcher.MatchResult `json:"discrepancies"`
	MissingInInternal []matcher.MatchResult `json:"missing_in_internal"`
	MissingInExternal []matcher.MatchResult `json:"missing_in_external"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Metadata:          r.metadata,
		Summary:           r.summary,
		Matched:           nonNil(r.matched),
		Discrepancies:     nonNil(r.discrepancies),
		MissingInInternal: nonNil(r.missingInInternal),
		MissingInExternal: nonNil(r.missingInExternal),
	})
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var v reportJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Report{
		metadata:          v.Metadata,
		summary:           v.Summary,
		matched:           v.Matched,
		discrepancies:     v.Discrepancies,
		missingInInternal: v.MissingInInternal,
		missingInExternal: v.MissingInExternal,
	}
	return nil
}

func nonNil(in []matcher.MatchResult) []matcher.MatchResult {
	if in == nil {
		return []matcher.MatchResult{}
	}
	return in
}
