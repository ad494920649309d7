package exports

import (
	"energiebroker_backend/internal/adapters/storage"
	"energiebroker_backend/internal/events"
	apphttp "energiebroker_backend/internal/http"
	"energiebroker_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	archiver *Archiver
}

// NewModule creates and initializes the exports module. A nil storage service keeps the
// module mounted but answers archive requests with 503.
func NewModule(pool *pgxpool.Pool, svc storage.StorageService, bucket string, bus events.Bus, log *logger.Logger) *Module {
	archiver := NewArchiver(svc, NewRepository(pool), bucket, bus, log)
	return &Module{handler: NewHandler(archiver), archiver: archiver}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// Archiver returns the archiver for the comparison module.
func (m *Module) Archiver() *Archiver {
	return m.archiver
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/exports")
	adminGroup.GET("", m.handler.List)
	adminGroup.GET("/:id/download", m.handler.Download)
}

var _ apphttp.Module = (*Module)(nil)
