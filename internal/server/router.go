// Package server exposes the service's own HTTP surface: the status
// endpoint the startup reconciler gates on, a plain health check and
// read passthroughs for the apps registered on the hub.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"apphub/internal/config"
	"apphub/internal/constants"
	"apphub/internal/hub"

	"github.com/go-chi/chi/v5"
)

type Router struct {
	router    *chi.Mux
	cfg       *config.Config
	hub       *hub.Client
	logger    *slog.Logger
	startedAt time.Time
}

// NewRouter creates the chi router with all routes configured.
func NewRouter(cfg *config.Config, hubClient *hub.Client, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	router := &Router{
		router:    r,
		cfg:       cfg,
		hub:       hubClient,
		logger:    log,
		startedAt: time.Now(),
	}

	r.Use(router.requestIDMiddleware)
	r.Use(setContentTypeJSONMiddleware)
	r.Use(router.requestLoggingMiddleware)

	r.Get("/health", router.handleHealth)
	r.Route("/services/"+constants.ServiceName, func(r chi.Router) {
		r.Get("/status", router.handleStatus)
		r.Get("/apps", router.handleListApps)
	})

	return router
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Handler returns an http.Handler for the router.
func (r *Router) Handler() http.Handler {
	return r.router
}
