package storage

import (
	"errors"
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps every database failure. Callers may retry.
	ErrPersistence = errors.New("persistence error")
)

// StoredReport is a persisted report with its resolution state.
type StoredReport struct {
	ID       string          `json:"id"`
	Report   *report.Report  `json:"report"`
	Resolved map[string]bool `json:"resolved"` // keyed by ResultKey
}

// IsResolved reports whether the result pairing the given IDs was resolved.
func (s *StoredReport) IsResolved(externalID, internalID string) bool {
	return s.Resolved[ResultKey(externalID, internalID)]
}

// ReportSummaryRow is the list view of a stored report.
type ReportSummaryRow struct {
	ID              string        `json:"id"`
	StatementID     string        `json:"statement_id"`
	ProfileID       string        `json:"profile_id"`
	Bank            string        `json:"bank"`
	Currency        string        `json:"currency"`
	PeriodStart     time.Time     `json:"period_start"`
	PeriodEnd       time.Time     `json:"period_end"`
	Status          report.Status `json:"status"`
	MatchPercentage float64       `json:"match_percentage"`
	Discrepancies   int           `json:"discrepancies"`
	ProcessedAt     time.Time     `json:"processed_at"`
}

// ReportFilters defines filters for listing reports
type ReportFilters struct {
	StatementID string // Filter by statement (empty = all)
	Status      string // Filter by report status (empty = all)
	Limit       int    // Max results (0 = default 50)
	Offset      int    // Pagination offset
}

// DefaultListLimit applies when ReportFilters.Limit is zero.
const DefaultListLimit = 50

func (f ReportFilters) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Resolution marks one report result as resolved.
type Resolution struct {
	ReportID   string    `json:"report_id"`
	ExternalID string    `json:"external_id"`
	InternalID string    `json:"internal_id"`
	Note       string    `json:"note,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// ResultKey identifies a result within a report.
func ResultKey(externalID, internalID string) string {
	return externalID + "|" + internalID
}

// Suppression is a stored "not a duplicate" marker.
type Suppression struct {
	Key       duplicates.PairKey `json:"pair_key"`
	Note      string             `json:"note,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
