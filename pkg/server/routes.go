package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/mindfuljournal/analyzer/internal"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

var log = internal.GetLogger()

const ReadHeaderTimeout = 5 * time.Second

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) *http.Server {
	cfg := appState.Config.Server
	router := setupRouter(appState)
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(appState *models.AppState) *chi.Mux {
	cfg := appState.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	if cfg.Tracing.Enabled {
		router.Use(otelchi.Middleware(cfg.Tracing.ServiceName, otelchi.WithChiRoutes(router)))
	}
	router.Use(SendVersion)
	router.Use(middleware.Heartbeat("/healthz"))
	if cfg.Server.MaxRequestSize > 0 {
		router.Use(middleware.RequestSize(cfg.Server.MaxRequestSize))
	}

	router.Post("/analyze", AnalyzeHandler(appState))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", AnalyzeHandler(appState))
		r.Get("/analyzers", ListAnalyzersHandler(appState))
	})

	return router
}
