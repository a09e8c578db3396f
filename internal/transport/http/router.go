// Package httptransport wires the certificate handlers, platform middleware
// and observability endpoints into the service's single HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certifica/internal/certificate/handler"
	"certifica/internal/platform/health"
	"certifica/internal/platform/middleware"
)

// Config carries the guards for the non-public route groups.
type Config struct {
	// TokenValidator authenticates operator tokens on issuance routes.
	TokenValidator middleware.TokenValidator

	// AdminTokenHash guards the ledger routes. Empty rejects every request.
	AdminTokenHash string
}

// NewRouter wires all endpoints with middleware. Verification stays outside
// the guarded groups: anyone holding a printed code may check it.
func NewRouter(certificates *handler.Handler, healthHandler *health.Handler, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	certificates.RegisterPublic(r)

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireOperator(cfg.TokenValidator, logger))
		certificates.RegisterIssuance(gr)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireAdminToken(cfg.AdminTokenHash, logger))
		certificates.RegisterAdmin(gr)
	})

	return r
}
