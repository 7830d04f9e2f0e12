package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/content"
	custommw "finitefield.org/dex-web/internal/httpserver/middleware"
	"finitefield.org/dex-web/internal/httpserver/ui"
	"finitefield.org/dex-web/internal/platform/observability"
	"finitefield.org/dex-web/internal/widget"
	"finitefield.org/dex-web/public"
)

const defaultHandlerTimeout = 60 * time.Second

// Config holds runtime options for the widget HTTP server.
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
	Logger         *zap.Logger
	// TracerProvider defaults to the global provider when nil.
	TracerProvider trace.TracerProvider
	Widgets        *widget.Store
	Page           *content.Page
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger.Named("http")))
	router.Use(observability.TraceMiddleware(cfg.TracerProvider))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(durationOr(cfg.HandlerTimeout, defaultHandlerTimeout)))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	staticContent, err := public.StaticFS()
	if err != nil {
		log.Fatalf("embed static: %v", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	handlers := ui.NewHandlers(ui.Dependencies{
		Widgets: cfg.Widgets,
		Page:    cfg.Page,
	})
	mountWidgetRoutes(router, handlers)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}
}

func mountWidgetRoutes(router chi.Router, h *ui.Handlers) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())

		r.Get("/", h.Launch)
		r.Post("/", h.Mount)
		r.Route("/w/{widgetID}", func(r chi.Router) {
			r.Use(h.LoadWidget)
			r.Get("/", h.Widget)
			r.Delete("/", h.Unmount)
			r.Post("/category", h.SelectCategory)
			r.Post("/clear", h.ClearCategory)
			r.Post("/cards/{creatureID}/toggle", h.ToggleCard)
		})
	})
}

func durationOr(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
