package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexriley/storefront-sync/api/controllers"
	cartcontrollers "github.com/alexriley/storefront-sync/api/controllers/cart"
	"github.com/alexriley/storefront-sync/api/middleware"
	cartcore "github.com/alexriley/storefront-sync/internal/cart"
	"github.com/alexriley/storefront-sync/internal/catalog"
	"github.com/alexriley/storefront-sync/internal/currency"
	pkgAuth "github.com/alexriley/storefront-sync/pkg/auth"
	"github.com/alexriley/storefront-sync/pkg/config"
	"github.com/alexriley/storefront-sync/pkg/logger"
	"github.com/alexriley/storefront-sync/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	verifier pkgAuth.TokenVerifier,
	cartManager *cartcore.Manager,
	catalogService catalog.Service,
	currencyService currency.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var store controllers.Pinger
	if redisClient != nil {
		store = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, store))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(catalogService, logg))
			r.Get("/products/{productID}", controllers.CatalogGet(catalogService, logg))
		})

		r.Get("/currency/rates", controllers.CurrencyRates(currencyService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(verifier, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.Fetch(cartManager, logg))
				r.Get("/stream", cartcontrollers.Stream(cartManager, logg))
				r.Delete("/", cartcontrollers.Forget(cartManager, logg))

				cartLimit := func(next http.Handler) http.Handler { return next }
				if redisClient != nil {
					cartLimit = middleware.CartRateLimit(cfg.RateLimit, redisClient, logg)
				}
				r.Group(func(r chi.Router) {
					r.Use(cartLimit)
					r.Post("/items", cartcontrollers.AddItem(cartManager, logg))
					r.Patch("/items/{lineID}", cartcontrollers.ChangeQuantity(cartManager, logg))
					r.Delete("/items/{lineID}", cartcontrollers.RemoveItem(cartManager, logg))
					r.Post("/discount", cartcontrollers.ApplyDiscount(cartManager, logg))
					r.Post("/clear", cartcontrollers.Clear(cartManager, logg))
				})
			})

			r.Post("/checkout/complete", cartcontrollers.CompleteCheckout(cartManager, logg))
		})
	})

	return r
}
