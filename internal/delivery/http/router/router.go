package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/fathom-scraper/internal/delivery/http/handler"
	"github.com/user/fathom-scraper/internal/delivery/http/middleware"
	"github.com/user/fathom-scraper/pkg/logger"
	"github.com/user/fathom-scraper/pkg/metrics"
)

// New builds the service router. gatherer backs /metrics and should be the
// registry m was built on.
func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger.OrDefault(log)))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS)

	r.Get("/", h.HandleLiveness)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if h.ServesMetadata() {
		r.Post("/scrape-metadata", h.HandleScrapeMetadata)
	}
	if h.ServesTranscript() {
		r.Post("/scrape-transcript", h.HandleScrapeTranscript)
	}

	return r
}
