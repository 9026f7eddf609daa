package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/dto"
	"github.com/eshaffer321/statement-reconciler/internal/application/reconcile"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	service ReconcileService
	logger  *slog.Logger
}

// NewBase creates a new base handler with the given service.
func NewBase(service ReconcileService, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{service: service, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// WriteServiceError maps a service error onto a status code and error body.
func (b *Base) WriteServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("report"))
	case errors.Is(err, reconcile.ErrResultNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("result"))
	case errors.Is(err, reconcile.ErrNotResolvable):
		b.WriteError(c, http.StatusConflict, dto.ConflictError(err.Error()))
	case errors.Is(err, reconcile.ErrInvalidRequest):
		b.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, storage.ErrPersistence):
		b.logger.Error("storage failure", "path", c.Request.URL.Path, "error", err)
		b.WriteError(c, http.StatusServiceUnavailable, dto.UnavailableError())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		b.WriteError(c, http.StatusGatewayTimeout, dto.NewAPIError(dto.ErrCodeRequestTimeout, "request cancelled before completion"))
	default:
		b.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
