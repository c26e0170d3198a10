package public

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/field-audit-services/api/internal/audit/application"
	"github.com/sngm3741/field-audit-services/api/internal/infrastructure/media"
)

// Handler wires field-user HTTP endpoints to application services.
type Handler struct {
	logger   *log.Logger
	audits   application.AuditService
	stores   application.StoreService
	uploader media.Uploader
	location *time.Location
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   *log.Logger
	Audits   application.AuditService
	Stores   application.StoreService
	Uploader media.Uploader
	Location *time.Location
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &Handler{
		logger:   cfg.Logger,
		audits:   cfg.Audits,
		stores:   cfg.Stores,
		uploader: cfg.Uploader,
		location: location,
	}
}

// Register mounts all field-user routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/stores", h.storeListHandler())
	r.With(authMiddleware).Get("/stores/{id}", h.storeDetailHandler())
	r.With(authMiddleware).Put("/stores/{id}", h.storeLocationHandler())
	r.With(authMiddleware).Post("/audits", h.auditCreateHandler())
	r.With(authMiddleware).Post("/audits/{id}/finalize", h.auditFinalizeHandler())
	r.With(authMiddleware).Post("/images/upload", h.imageUploadHandler())
}
