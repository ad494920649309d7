package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"energiebroker_backend/internal/contracts/service"
	"energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/platform/httpkit"
	"energiebroker_backend/platform/validator"
)

// Handler handles HTTP requests for the contract catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid contract id"
)

// New creates a new contracts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the active catalog.
// GET /api/v1/contracts
func (h *Handler) List(c *gin.Context) {
	h.list(c, false)
}

// AdminList returns the full catalog including inactive contracts.
// GET /api/v1/admin/contracts
func (h *Handler) AdminList(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, includeInactive bool) {
	var req transport.ListContractsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req, includeInactive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID returns one active contract.
// GET /api/v1/contracts/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id, false)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create adds a contract.
// POST /api/v1/admin/contracts
func (h *Handler) Create(c *gin.Context) {
	req, ok := h.bindContract(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req, httpkit.GetIdentity(c).Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update replaces a contract.
// PUT /api/v1/admin/contracts/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := h.bindContract(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req, httpkit.GetIdentity(c).Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetActive shows or hides a contract.
// PATCH /api/v1/admin/contracts/:id/active
func (h *Handler) SetActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.SetActive(c.Request.Context(), id, *req.Active, httpkit.GetIdentity(c).Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindContract(c *gin.Context) (transport.ContractRequest, bool) {
	var req transport.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return req, false
	}
	return req, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
