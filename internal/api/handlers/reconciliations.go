package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// ReconciliationsHandler handles reconciliation report requests.
type ReconciliationsHandler struct {
	*Base
	cache *cache.Cache
}

// NewReconciliationsHandler creates a new reconciliations handler. Reports
// read through GET are kept in reportCache; a nil cache disables caching.
func NewReconciliationsHandler(service ReconcileService, reportCache *cache.Cache, logger *slog.Logger) *ReconciliationsHandler {
	return &ReconciliationsHandler{
		Base:  NewBase(service, logger),
		cache: reportCache,
	}
}

func reportCacheKey(id string) string {
	return "report:" + id
}

// Create handles POST /api/reconciliations - runs and stores a reconciliation.
func (h *ReconciliationsHandler) Create(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if len(req.External) == 0 && len(req.Internal) == 0 {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("external or internal transactions are required"))
		return
	}

	result, err := h.service.RunReconciliation(c.Request.Context(), reconcile.Input{
		Meta:     req.Metadata.ToMetadata(),
		External: req.External,
		Internal: req.Internal,
	})
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.ReportResponse{
		ID:       result.ReportID,
		Report:   result.Report,
		Resolved: []string{},
	})
}

// List handles GET /api/reconciliations - returns stored report summaries.
func (h *ReconciliationsHandler) List(c *gin.Context) {
	params := dto.DefaultReportListParams()
	params.Limit = ParseIntParam(c, "limit", params.Limit)
	params.Offset = ParseIntParam(c, "offset", 0)
	params.Status = c.Query("status")
	params.StatementID = c.Query("statement_id")

	if params.Limit <= 0 || params.Limit > 500 {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("limit must be between 1 and 500"))
		return
	}
	if params.Offset < 0 {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("offset must not be negative"))
		return
	}

	rows, err := h.service.ListReports(c.Request.Context(), storage.ReportFilters{
		StatementID: params.StatementID,
		Status:      params.Status,
		Limit:       params.Limit,
		Offset:      params.Offset,
	})
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	if rows == nil {
		rows = []storage.ReportSummaryRow{}
	}

	h.WriteJSON(c, http.StatusOK, dto.ReportListResponse{
		Reports: rows,
		Count:   len(rows),
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
}

// Get handles GET /api/reconciliations/:id - returns a single report.
func (h *ReconciliationsHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("report ID is required"))
		return
	}

	if h.cache != nil {
		if cached, ok := h.cache.Get(reportCacheKey(id)); ok {
			c.Header("X-Cache", "HIT")
			h.WriteJSON(c, http.StatusOK, cached)
			return
		}
	}

	stored, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	response := toReportResponse(stored)
	if h.cache != nil {
		h.cache.SetDefault(reportCacheKey(id), response)
		c.Header("X-Cache", "MISS")
	}
	h.WriteJSON(c, http.StatusOK, response)
}

// Resolve handles POST /api/reconciliations/:id/resolutions - marks a
// discrepancy or missing transaction as resolved.
func (h *ReconciliationsHandler) Resolve(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}
	if req.ExternalID == "" && req.InternalID == "" {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("external_id or internal_id is required"))
		return
	}

	if err := h.service.ResolveResult(c.Request.Context(), id, req.ExternalID, req.InternalID, req.Note); err != nil {
		h.WriteServiceError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.Delete(reportCacheKey(id))
	}

	h.WriteJSON(c, http.StatusOK, dto.ResolutionResponse{
		ReportID:   id,
		ExternalID: req.ExternalID,
		InternalID: req.InternalID,
		Status:     "resolved",
	})
}

func toReportResponse(stored *storage.StoredReport) dto.ReportResponse {
	resolved := make([]string, 0, len(stored.Resolved))
	for key, ok := range stored.Resolved {
		if ok {
			resolved = append(resolved, key)
		}
	}
	sort.Strings(resolved)

	return dto.ReportResponse{
		ID:       stored.ID,
		Report:   stored.Report,
		Resolved: resolved,
	}
}
