package http

import (
	"net/http"

	"go-pharmacy-reservation/internal/delivery/http/handler"
	"go-pharmacy-reservation/internal/delivery/http/middleware"
	"go-pharmacy-reservation/pkg/response"

	"github.com/gorilla/mux"
)

// Router serves the operational HTTP endpoints next to the protocol
// listener: health, stats, cached stock and the audit trail.
type Router struct {
	router          *mux.Router
	healthHandler   *handler.HealthHandler
	stockHandler    *handler.StockHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

// NewRouter wires the handlers. auditLogHandler may be nil when no
// database is configured.
func NewRouter(
	healthHandler *handler.HealthHandler,
	stockHandler *handler.StockHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		healthHandler:   healthHandler,
		stockHandler:    stockHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// OPTIONS is matched on every route so the CORS preflight is answered
	// before authentication.

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet, http.MethodOptions)

	// Any logged-in account
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/medicines/{id:[0-9]+}/stock", r.stockHandler.GetMedicineStock).Methods(http.MethodGet, http.MethodOptions)

	// Admin only
	admin := api.PathPrefix("").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/stats", r.healthHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
	if r.auditLogHandler != nil {
		admin.HandleFunc("/audit-logs", r.auditLogHandler.GetRecentAuditLogs).Methods(http.MethodGet, http.MethodOptions)
	}

	r.router.Use(r.corsMiddleware.Handle)

	// Unmatched requests keep the JSON envelope
	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r.router
}
