package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"energiebroker_backend/internal/comparison/service"
	"energiebroker_backend/internal/comparison/transport"
	"energiebroker_backend/internal/exports"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/httpkit"
	"energiebroker_backend/platform/validator"
)

// Archiver stores rendered exports and returns a download link.
type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context, f exports.File, cmp transport.Comparison) (transport.ExportArchiveResponse, error)
}

// Handler handles HTTP requests for calculations and comparisons.
type Handler struct {
	svc      *service.Service
	val      *validator.Validator
	archiver Archiver
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new comparison handler. A nil archiver disables archived exports.
func New(svc *service.Service, val *validator.Validator, archiver Archiver) *Handler {
	return &Handler{svc: svc, val: val, archiver: archiver}
}

// Calculate prices one inline contract.
// POST /api/v1/calculations
func (h *Handler) Calculate(c *gin.Context) {
	var req transport.CalculationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Calculate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Compare prices and ranks the active catalog.
// POST /api/v1/comparisons
func (h *Handler) Compare(c *gin.Context) {
	var req transport.CompareRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Compare(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToComparisonResponse(result))
}

// Export renders a comparison as PDF or XLSX. With archive=true the document is stored and a
// download link is returned instead of the file.
// POST /api/v1/comparisons/export?format=pdf
func (h *Handler) Export(c *gin.Context) {
	var query transport.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if query.Archive && (h.archiver == nil || !h.archiver.Enabled()) {
		httpkit.HandleError(c, apperr.Unavailable("export archive is not configured"))
		return
	}

	var req transport.CompareRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cmp, err := h.svc.Compare(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	file, err := exports.Render(query.Format, cmp)
	if httpkit.HandleError(c, err) {
		return
	}

	if query.Archive {
		result, err := h.archiver.Archive(c.Request.Context(), file, cmp)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Created(c, result)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// EstimateUsage suggests annual consumption for a household.
// POST /api/v1/estimates/usage
func (h *Handler) EstimateUsage(c *gin.Context) {
	var req transport.UsageEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.EstimateUsage(req))
}

// EstimateCapacity suggests connection capacities.
// POST /api/v1/estimates/capacity
func (h *Handler) EstimateCapacity(c *gin.Context) {
	var req transport.CapacityEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.EstimateCapacity(req))
}

// Tariffs returns the active tax brackets, network fees, VAT rate and defaults.
// GET /api/v1/tariffs
func (h *Handler) Tariffs(c *gin.Context) {
	httpkit.OK(c, h.svc.Tariffs())
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
