package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-backend/api/controllers"
	"storefront-backend/api/middleware"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/ledger"
	"storefront-backend/pkg/config"
	"storefront-backend/pkg/db"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	catalogService catalog.Service,
	ledgerService ledger.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(catalogService, logg))
			r.Post("/", controllers.CreateCategory(catalogService, logg))
			r.Delete("/", controllers.DeleteAllCategories(catalogService, logg))
			r.Get("/{categoryId}", controllers.GetCategory(catalogService, logg))
			r.Get("/{categoryId}/products", controllers.ListCategoryProducts(catalogService, logg))
			r.Put("/{categoryId}", controllers.UpdateCategory(catalogService, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(catalogService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Delete("/", controllers.DeleteAllProducts(catalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(catalogService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(catalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ledgerService, logg))
			r.Get("/active", controllers.GetActiveOrder(ledgerService, logg))
			r.Get("/{orderId}", controllers.GetOrder(ledgerService, logg))
			r.Post("/{orderId}/finalize", controllers.FinalizeOrder(ledgerService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ledgerService, logg))
		})

		r.Route("/order-items", func(r chi.Router) {
			r.Post("/", controllers.AddOrderItem(ledgerService, logg))
			r.Put("/{itemId}", controllers.UpdateOrderItem(ledgerService, logg))
			r.Delete("/{itemId}", controllers.RemoveOrderItem(ledgerService, logg))
		})

		r.Get("/sales", controllers.ListSales(ledgerService, logg))
	})

	return r
}
