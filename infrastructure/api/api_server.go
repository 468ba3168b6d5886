// Package api serves the segment allocation HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/segalloc"
	apimiddleware "github.com/helixml/segalloc/infrastructure/api/middleware"
	v1 "github.com/helixml/segalloc/infrastructure/api/v1"
)

// RequestTimeout bounds every /api/v1 request.
const RequestTimeout = 60 * time.Second

// APIServer provides an HTTP API backed by a segalloc Client.
type APIServer struct {
	client       *segalloc.Client
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// corsOrigins lists the origins allowed to call the API from a browser;
// empty disables CORS headers.
func NewAPIServer(client *segalloc.Client, corsOrigins []string) *APIServer {
	return &APIServer{
		client:      client,
		corsOrigins: corsOrigins,
		logger:      client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	documentsRouter := v1.NewDocumentsRouter(c)
	sessionsRouter := v1.NewSessionsRouter(c)

	router.Get("/health", a.health)

	router.Route("/api/v1", func(r chi.Router) {
		if len(a.corsOrigins) > 0 {
			r.Use(apimiddleware.CORS(a.corsOrigins))
		}
		r.Use(chimiddleware.Timeout(RequestTimeout))

		r.Mount("/documents", documentsRouter.Routes())
		r.Mount("/sessions", sessionsRouter.Routes())
	})
}

func (a *APIServer) health(w http.ResponseWriter, r *http.Request) {
	if err := a.client.Ping(r.Context()); err != nil {
		a.logger.Warn("health check failed", slog.Any("error", err))
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": a.client.Sessions.Len(),
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
