package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/access"
	"github.com/angelmondragon/storefront-backend/internal/favorites"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Services groups the domain services the router dispatches to. Gate guards
// the signed-in and admin routes before their bodies are parsed.
type Services struct {
	Products  products.Service
	Favorites favorites.Service
	Gate      access.Gate
}

// Observability carries the readiness checks and metric sinks exposed by the router.
type Observability struct {
	Checks   map[string]controllers.Pinger
	Gatherer prometheus.Gatherer
	Actions  *metrics.ActionMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	verifier auth.Verifier,
	svc Services,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.BodyLimit(cfg.Media.MaxUploadBytes()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, obs.Checks))
	})

	if obs.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	m := obs.Actions
	signedIn := middleware.RequireUser(svc.Gate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(verifier, cfg.Auth.SessionCookie, logg))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(svc.Products, logg, m))
				r.With(signedIn).Post("/", controllers.CreateProduct(svc.Products, logg, m))
				r.Get("/featured", controllers.FeaturedProducts(svc.Products, logg, m))
				r.Get("/{productId}", controllers.GetProduct(svc.Products, logg, m))
				r.With(signedIn).Get("/{productId}/favorite", controllers.ProductFavorite(svc.Favorites, logg, m))
			})
			r.Route("/favorites", func(r chi.Router) {
				r.Use(signedIn)
				r.Get("/", controllers.ListFavorites(svc.Favorites, logg, m))
				r.Post("/toggle", controllers.ToggleFavorite(svc.Favorites, logg, m))
			})
		})

		r.Route("/api/admin/v1/products", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(svc.Gate))
			r.Get("/", controllers.AdminListProducts(svc.Products, logg, m))
			r.Get("/{productId}", controllers.AdminGetProduct(svc.Products, logg, m))
			r.Put("/{productId}", controllers.AdminUpdateProduct(svc.Products, logg, m))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(svc.Products, logg, m))
			r.Put("/{productId}/image", controllers.AdminUpdateProductImage(svc.Products, logg, m))
		})
	})

	return r
}
