package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keepsake-app/keepsake-backend/api/controllers"
	"github.com/keepsake-app/keepsake-backend/api/middleware"
	"github.com/keepsake-app/keepsake-backend/internal/auth"
	"github.com/keepsake-app/keepsake-backend/internal/photos"
	"github.com/keepsake-app/keepsake-backend/internal/wishlist"
	"github.com/keepsake-app/keepsake-backend/pkg/config"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/metrics"
)

// RateLimitStore backs the admin verify limiter. A nil store disables it.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps groups everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Gate            *auth.Gate
	Photos          photos.Service
	Wishlist        wishlist.Service
	RateLimiter     RateLimitStore
	Gatherer        prometheus.Gatherer
	HTTPMetrics     *metrics.HTTPMetrics
	ReadinessChecks []controllers.ReadinessCheck
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	if cfg.App.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	verifyPolicy := middleware.NewRateLimitPolicy(
		"admin_verify",
		cfg.RateLimit.AdminVerifyWindow,
		cfg.RateLimit.AdminVerifyIPLimit,
	)
	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, deps.ReadinessChecks...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(verifyPolicy, deps.RateLimiter, logg)).
			Post("/admin/verify", controllers.AdminVerify(deps.Gate, logg))

		r.Route("/photos", func(r chi.Router) {
			r.Get("/", controllers.PhotosList(deps.Photos, logg))
			r.Post("/", controllers.PhotosCreate(deps.Photos, deps.Gate, logg))
			r.Post("/reorder", controllers.PhotosReorder(deps.Photos, deps.Gate, logg))
			r.Post("/upload", controllers.PhotosUpload(deps.Photos, deps.Gate, maxUpload, logg))
			r.Get("/serve/*", controllers.PhotosServe(deps.Photos, logg))
			r.Put("/{id}", controllers.PhotosUpdate(deps.Photos, deps.Gate, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/", controllers.WishlistCreate(deps.Wishlist, deps.Gate, logg))
			r.Post("/reorder", controllers.WishlistReorder(deps.Wishlist, deps.Gate, logg))
			r.Post("/upload-image", controllers.WishlistUploadImage(deps.Wishlist, deps.Gate, maxUpload, logg))
			r.Put("/{id}", controllers.WishlistUpdate(deps.Wishlist, deps.Gate, logg))
			r.Delete("/{id}", controllers.WishlistDelete(deps.Wishlist, deps.Gate, logg))
			r.Post("/{id}/purchase", controllers.WishlistPurchase(deps.Wishlist, logg))
		})

		r.Post("/product-info", controllers.ProductInfo(logg))
	})

	return r
}
