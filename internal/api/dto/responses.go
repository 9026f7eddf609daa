package dto

import (
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReportResponse carries one report with its ID.
type ReportResponse struct {
	ID       string         `json:"id"`
	Report   *report.Report `json:"report"`
	Resolved []string       `json:"resolved"`
}

// ReportListResponse is returned when listing reports.
type ReportListResponse struct {
	Reports []storage.ReportSummaryRow `json:"reports"`
	Count   int                        `json:"count"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}

// ResolutionResponse confirms a resolved result.
type ResolutionResponse struct {
	ReportID   string `json:"report_id"`
	ExternalID string `json:"external_id"`
	InternalID string `json:"internal_id"`
	Status     string `json:"status"`
}

// DuplicatesResponse is returned by duplicate detection.
type DuplicatesResponse struct {
	Matches    []duplicates.Match               `json:"matches"`
	Count      int                              `json:"count"`
	Suppressed int                              `json:"suppressed"`
	Skipped    []validator.InputValidationError `json:"skipped"`
}

// SuppressionResponse confirms a stored "not a duplicate" marker.
type SuppressionResponse struct {
	PairKey duplicates.PairKey `json:"pair_key"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewDuplicatesResponse wraps a detection result.
func NewDuplicatesResponse(r *duplicates.Result) DuplicatesResponse {
	matches := r.Matches
	if matches == nil {
		matches = []duplicates.Match{}
	}
	skipped := r.Skipped
	if skipped == nil {
		skipped = []validator.InputValidationError{}
	}
	return DuplicatesResponse{
		Matches:    matches,
		Count:      len(matches),
		Suppressed: r.Suppressed,
		Skipped:    skipped,
	}
}
