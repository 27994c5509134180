package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/repairpos/api/controllers"
	"github.com/angelmondragon/repairpos/api/middleware"
	"github.com/angelmondragon/repairpos/pkg/config"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

// NewRouter wires every HTTP endpoint. redisP may be nil when the terminal
// runs without redis.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	gatherer prometheus.Gatherer,
	terminal controllers.CartTerminal,
	rateSource controllers.RateSource,
	rateHistory controllers.RateHistory,
	productSearch controllers.ProductSearcher,
	repairLookup controllers.CollectableRepairs,
	sales controllers.SaleFinder,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(terminal, logg))
			r.Delete("/", controllers.CartClear(terminal, logg))

			r.Post("/products", controllers.CartAddProduct(terminal, logg))
			r.Patch("/products/{productId}", controllers.CartUpdateQuantity(terminal, logg))
			r.Delete("/products/{productId}", controllers.CartRemoveProduct(terminal, logg))

			r.Post("/repairs", controllers.CartAddRepair(terminal, logg))
			r.Delete("/repairs/{repairId}", controllers.CartRemoveRepair(terminal, logg))

			r.Put("/currency", controllers.CartSetCurrency(terminal, logg))
			r.Put("/customer", controllers.CartSetCustomer(terminal, logg))
			r.Post("/checkout", controllers.CartCheckout(terminal, logg))
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.RatesCurrent(rateSource, logg))
			r.Put("/", controllers.RatesSetManual(rateSource, logg))
			r.Post("/sync", controllers.RatesSync(rateSource, logg))
			r.Get("/history", controllers.RatesHistory(rateHistory, logg))
		})

		r.Get("/products", controllers.ProductsSearch(productSearch, logg))
		r.Get("/customers/{customerId}/repairs", controllers.CustomerRepairs(repairLookup, logg))
		r.Get("/sales/{number}", controllers.SaleFetch(sales, logg))
	})

	return r
}
