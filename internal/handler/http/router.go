package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masumislambadsha/zavisoft/internal/service"
	"github.com/masumislambadsha/zavisoft/pkg/health"
	"github.com/masumislambadsha/zavisoft/pkg/middleware"
)

const maxRequestBody = 64 << 10

// Services are the business services the router exposes.
type Services struct {
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Catalog  *service.CatalogService
}

// RouterOptions tunes the router's outer middleware.
type RouterOptions struct {
	ServiceName string
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	// CatalogMaxAge is the Cache-Control max-age, in seconds, for catalog reads.
	CatalogMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
	opts RouterOptions,
) http.Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = "storefront"
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(opts.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(opts.ServiceName))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, opts.PprofCIDRs, logger)

	cartHandler := NewCartHandler(svcs.Cart, logger)
	wishlistHandler := NewWishlistHandler(svcs.Wishlist, logger)
	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(MaxBodyBytes(maxRequestBody))

		r.With(middleware.NoStore).Post("/sessions", CreateSession(logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession())
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}/{size}/{color}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}/{size}/{color}", cartHandler.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.List)
				r.Delete("/", wishlistHandler.Clear)

				r.Post("/items", wishlistHandler.Add)
				r.Get("/items/{productId}", wishlistHandler.Contains)
				r.Delete("/items/{productId}", wishlistHandler.Remove)
				r.Post("/items/{productId}/toggle", wishlistHandler.Toggle)
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Use(middleware.OptionalSession())
			r.Use(middleware.CacheControl(opts.CatalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/new-drops", catalogHandler.NewDrops)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/products/{id}/related", catalogHandler.Related)
			r.Get("/categories", catalogHandler.Categories)
		})
	})

	return r
}
