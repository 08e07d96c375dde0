package http

import (
	_ "github.com/DRSN-tech/fashion-search/docs" // регистрация swagger-документа
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

type Deps struct {
	ImageProcessor       usecase.ImageProcessorUC
	SearchResults        usecase.SearchResultUC
	Catalog              usecase.CatalogUC
	HealthChecks         map[string]HealthChecker
	Gatherer             prometheus.Gatherer
	MaxUploadSize        int64
	MaxRequestsPerMinute int
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(deps Deps) {
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		searchHandler := NewSearchHandler(deps.ImageProcessor, deps.SearchResults, r.logger, deps.MaxUploadSize)
		limiter := NewRateLimiter(deps.MaxRequestsPerMinute, r.logger)
		registerSearchRoutes(v1, searchHandler, limiter)

		prHandler := NewProductHandler(deps.Catalog, r.logger, deps.MaxUploadSize)
		registerProductRoutes(v1, prHandler)

		v1.Get("/health", NewHealthHandler(deps.HealthChecks, r.logger).health)
	})
}

func registerSearchRoutes(router chi.Router, h *SearchHandler, limiter *RateLimiter) {
	router.With(limiter.Middleware).Post("/identify", h.identify)
	router.Get("/search/{query_id}", h.getSearchResult)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.registerProduct)
	})
}
