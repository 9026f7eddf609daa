package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
)

// DuplicatesHandler handles duplicate detection requests.
type DuplicatesHandler struct {
	*Base
}

// NewDuplicatesHandler creates a new duplicates handler.
func NewDuplicatesHandler(service ReconcileService, logger *slog.Logger) *DuplicatesHandler {
	return &DuplicatesHandler{
		Base: NewBase(service, logger),
	}
}

// Detect handles POST /api/duplicates/detect.
func (h *DuplicatesHandler) Detect(c *gin.Context) {
	var req dto.DetectDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	result, err := h.service.DetectDuplicates(c.Request.Context(), reconcile.DuplicateRequest{
		Transactions: req.Transactions,
		Currency:     req.Currency,
		LookbackDays: req.LookbackDays,
		Threshold:    req.Threshold,
		AsOf:         req.AsOf,
	})
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.NewDuplicatesResponse(result))
}

// Suppress handles POST /api/duplicates/suppressions - stores a confirmed
// "not a duplicate" pair.
func (h *DuplicatesHandler) Suppress(c *gin.Context) {
	var req dto.SuppressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("first_id and second_id are required"))
		return
	}

	key, err := h.service.ConfirmNotDuplicate(c.Request.Context(), req.FirstID, req.SecondID, req.Note)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.SuppressionResponse{PairKey: key})
}
