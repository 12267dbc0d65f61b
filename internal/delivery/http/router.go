package http

import (
	"net/http"

	"clinical-records-api/internal/delivery/http/handler"
	"clinical-records-api/internal/delivery/http/middleware"
	"clinical-records-api/internal/domain/entity"

	"github.com/gorilla/mux"
)

// EntityRoute mounts an entity handler under /api/{Path}.
type EntityRoute struct {
	Path    string
	Handler handler.EntityRoutes
}

type Router struct {
	router            *mux.Router
	entityRoutes      []EntityRoute
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
	metricsPath       string
}

// NewRouter wires the HTTP surface. metricsMiddleware may be nil to disable
// metrics collection and the metrics endpoint.
func NewRouter(
	entityRoutes []EntityRoute,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	metricsPath string,
) *Router {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Router{
		router:            mux.NewRouter(),
		entityRoutes:      entityRoutes,
		auditLogHandler:   auditLogHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
		metricsMiddleware: metricsMiddleware,
		metricsPath:       metricsPath,
	}
}

func (r *Router) Setup() http.Handler {
	r.router.Use(r.loggingMiddleware.Handle)
	if r.metricsMiddleware != nil {
		r.router.Use(r.metricsMiddleware.Handle)
		r.router.Handle(r.metricsPath, r.metricsMiddleware.Handler()).Methods(http.MethodGet)
	}

	// Health check
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Entity routes (protected)
	api := r.router.PathPrefix("/api").Subrouter()
	api.Use(r.authMiddleware.Authenticate)

	for _, route := range r.entityRoutes {
		r.mountEntity(api, route)
	}

	if r.auditLogHandler != nil {
		api.Handle("/auditlogs",
			middleware.RequireEntitlement(entity.EntityAuditLogs, entity.EntitlementRead)(http.HandlerFunc(r.auditLogHandler.GetAuditLogs)),
		).Methods(http.MethodGet)
	}

	// CORS wraps the router so preflight requests never reach route matching
	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) mountEntity(api *mux.Router, route EntityRoute) {
	name := route.Handler.Entity()
	guard := func(e entity.Entitlement, fn http.HandlerFunc) http.Handler {
		return middleware.RequireEntitlement(name, e)(fn)
	}

	collection := "/" + route.Path
	item := collection + "/{id}"

	api.Handle(collection, guard(entity.EntitlementCreate, route.Handler.Create)).Methods(http.MethodPost)
	api.Handle(collection, guard(entity.EntitlementRead, route.Handler.List)).Methods(http.MethodGet)
	api.Handle(item, guard(entity.EntitlementRead, route.Handler.GetByID)).Methods(http.MethodGet)
	api.Handle(item, guard(entity.EntitlementUpdate, route.Handler.Update)).Methods(http.MethodPut)
	api.Handle(item, guard(entity.EntitlementUpdate, route.Handler.Patch)).Methods(http.MethodPatch)
	api.Handle(item, guard(entity.EntitlementDelete, route.Handler.Delete)).Methods(http.MethodDelete)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
