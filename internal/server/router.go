// Package server assembles the gateway's HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/files"
	appMiddleware "github.com/inkpad/service/internal/middleware"
)

// Deps are the handlers and settings the router is built from.
type Deps struct {
	Files          *files.Handler
	Blobs          http.Handler // nil unless the store serves its own objects
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter returns the gateway router: /api, /health, /swagger and, when
// configured, /blobs.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appMiddleware.EscapedRoutePath)
	r.Use(appMiddleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if d.Blobs != nil {
		r.Method(http.MethodGet, "/blobs/*", d.Blobs)
		r.Method(http.MethodHead, "/blobs/*", d.Blobs)
	}

	r.Route("/api", d.Files.Routes)
	return r
}
