package admin

import (
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger       *log.Logger
	storeService application.StoreService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger       *log.Logger
	StoreService application.StoreService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:       cfg.Logger,
		storeService: cfg.StoreService,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stores", h.storeListHandler())
	r.Get("/stores/{id}", h.storeDetailHandler())
	r.Post("/stores", h.storeCreateHandler())
	r.Patch("/stores/{id}/status", h.storeStatusHandler())
	r.Post("/stores/{id}/reset", h.storeResetHandler())
	r.Post("/stores/recompute", h.storeRecomputeHandler())
}
