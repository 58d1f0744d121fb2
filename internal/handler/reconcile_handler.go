package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/middleware"
	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/reconcile"
	"github.com/jengzang/visits-backend-go/internal/service"
	"github.com/jengzang/visits-backend-go/pkg/response"
)

// ReconcileHandler handles HTTP requests for visit reconciliation
type ReconcileHandler struct {
	service *service.ReconcileService
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(service *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{service: service}
}

// Preview handles POST /api/v1/trips/:id/visits/preview
func (h *ReconcileHandler) Preview(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	// The date range body is optional
	var window models.DateRange
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&window); err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	report, err := h.service.Preview(c.Request.Context(), middleware.UserID(c), tripID, window)
	if err != nil {
		respondServiceError(c, "Failed to build reconciliation preview", err)
		return
	}

	response.Success(c, report)
}

// Apply handles POST /api/v1/trips/:id/visits/apply
func (h *ReconcileHandler) Apply(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	var req models.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.Apply(c.Request.Context(), middleware.UserID(c), tripID, req)
	if err != nil {
		respondServiceError(c, "Failed to apply reconciliation", err)
		return
	}

	response.Success(c, result)
}

// ListVisits handles GET /api/v1/trips/:id/visits
func (h *ReconcileHandler) ListVisits(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	visits, err := h.service.ListVisits(c.Request.Context(), middleware.UserID(c), tripID)
	if err != nil {
		respondServiceError(c, "Failed to list visits", err)
		return
	}

	response.Success(c, gin.H{
		"data":  visits,
		"total": len(visits),
	})
}

// ClearVisits handles DELETE /api/v1/trips/:id/visits
func (h *ReconcileHandler) ClearVisits(c *gin.Context) {
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.service.ClearVisits(c.Request.Context(), middleware.UserID(c), tripID)
	if err != nil {
		respondServiceError(c, "Failed to clear visits", err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted})
}

func tripIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid trip ID", err)
		return 0, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, message string, err error) {
	if errors.Is(err, reconcile.ErrTripNotFound) {
		response.Error(c, http.StatusNotFound, "Trip not found", nil)
		return
	}
	response.Error(c, http.StatusInternalServerError, message, err)
}
