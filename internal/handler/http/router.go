package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type RouterConfig struct {
	AllowedOrigins []string
	// FilesDir is served read-only under /files. Empty disables the route.
	FilesDir       string
}

func NewRouter(
	logger *slog.Logger,
	cfg RouterConfig,
	tokens jwt.Service,
	workspaceHandler WorkspaceHandler,
	eventHandler EventHandler,
	metricsHandler http.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	if cfg.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", noDirListing(http.FileServer(http.Dir(cfg.FilesDir)))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", workspaceHandler.Create)

			// Requires the token issued for this session
			r.Route("/{"+middleware.SessionURLParam+"}", func(r chi.Router) {
				r.Use(middleware.Verifier(tokens))
				r.Use(middleware.SessionRequired(tokens))

				r.Get("/", workspaceHandler.Get)
				r.Delete("/", workspaceHandler.Delete)

				r.Route("/imports", func(r chi.Router) {
					r.Post("/replace", workspaceHandler.ImportReplace)
					r.Post("/append", workspaceHandler.ImportAppend)
				})
				r.Post("/reset", workspaceHandler.Reset)

				r.Post("/ranking", workspaceHandler.Rank)
				r.Post("/suggestions", workspaceHandler.Suggest)
				r.Post("/insights", workspaceHandler.Insights)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", workspaceHandler.ListEmployees)
					r.Get("/{name}", workspaceHandler.GetEmployee)
				})
				r.Get("/summary", workspaceHandler.Summary)
				r.Get("/charts", workspaceHandler.Charts)

				r.Get("/export.csv", workspaceHandler.ExportCSV)
				r.Post("/exports", workspaceHandler.ArchiveExport)

				r.Get("/events", eventHandler.Stream)
			})
		})
	})
	return r
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			response.NotFound(w, "File not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
