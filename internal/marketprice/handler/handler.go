package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"energiebroker_backend/internal/marketprice/service"
	"energiebroker_backend/internal/marketprice/transport"
	"energiebroker_backend/platform/httpkit"
	"energiebroker_backend/platform/validator"
)

// Handler handles HTTP requests for market prices.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new market price handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Current returns today's reference price.
// GET /api/v1/market-prices/current
func (h *Handler) Current(c *gin.Context) {
	result, err := h.svc.Current(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// History returns stored snapshots.
// GET /api/v1/market-prices/history?days=30
func (h *Handler) History(c *gin.Context) {
	var req transport.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.History(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Refresh forces a fetch from the feed.
// POST /api/v1/admin/market-prices/refresh
func (h *Handler) Refresh(c *gin.Context) {
	result, err := h.svc.Refresh(c.Request.Context(), time.Time{})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
