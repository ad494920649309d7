package exports

import (
	"net/http"
	"strconv"

	"energiebroker_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handler serves the archive of exported comparisons.
type Handler struct {
	archiver *Archiver
}

// NewHandler creates a new exports handler.
func NewHandler(archiver *Archiver) *Handler {
	return &Handler{archiver: archiver}
}

// List returns the most recent archived exports.
// GET /api/v1/admin/exports?limit=50
func (h *Handler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			httpkit.Error(c, http.StatusBadRequest, "limit must be between 1 and 200", nil)
			return
		}
		limit = n
	}

	records, err := h.archiver.List(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": records, "total": len(records)})
}

// Download returns a fresh presigned link for one archived export.
// GET /api/v1/admin/exports/:id/download
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid export id", nil)
		return
	}

	link, err := h.archiver.DownloadURL(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, link)
}
