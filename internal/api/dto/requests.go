package dto

import (
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// ReconcileRequest is the body of POST /api/reconciliations.
type ReconcileRequest struct {
	Metadata ReconcileMetadata            `json:"metadata"`
	External []transaction.ParsedExternal `json:"external"`
	Internal []transaction.Internal       `json:"internal"`
}

// ReconcileMetadata describes the statement being reconciled.
type ReconcileMetadata struct {
	StatementID string    `json:"statement_id"`
	ProfileID   string    `json:"profile_id"`
	Bank        string    `json:"bank"`
	Currency    string    `json:"currency"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// ToMetadata converts the request metadata into report metadata.
func (m ReconcileMetadata) ToMetadata() report.Metadata {
	return report.Metadata{
		StatementID: m.StatementID,
		ProfileID:   m.ProfileID,
		Bank:        m.Bank,
		Currency:    m.Currency,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
	}
}

// ResolveRequest is the body of POST /api/reconciliations/:id/resolutions.
// One of the IDs may be empty for missing transactions.
type ResolveRequest struct {
	ExternalID string `json:"external_id"`
	InternalID string `json:"internal_id"`
	Note       string `json:"note"`
}

// DetectDuplicatesRequest is the body of POST /api/duplicates/detect.
type DetectDuplicatesRequest struct {
	Transactions []transaction.Internal `json:"transactions"`
	Currency     string                 `json:"currency"`
	LookbackDays int                    `json:"lookback_days"`
	Threshold    float64                `json:"threshold"`
	AsOf         time.Time              `json:"as_of"`
}

// SuppressionRequest is the body of POST /api/duplicates/suppressions.
type SuppressionRequest struct {
	FirstID  string `json:"first_id" binding:"required"`
	SecondID string `json:"second_id" binding:"required"`
	Note     string `json:"note"`
}

// ReportListParams represents query parameters for listing reports.
type ReportListParams struct {
	StatementID string `form:"statement_id"`
	Status      string `form:"status"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// DefaultReportListParams returns default values for report list params.
func DefaultReportListParams() ReportListParams {
	return ReportListParams{
		Limit: 50,
	}
}
