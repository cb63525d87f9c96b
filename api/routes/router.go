package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praveensri2018/sivanyaAPI/api/controllers"
	"github.com/praveensri2018/sivanyaAPI/api/middleware"
	"github.com/praveensri2018/sivanyaAPI/internal/cart"
	"github.com/praveensri2018/sivanyaAPI/internal/favorites"
	"github.com/praveensri2018/sivanyaAPI/internal/orders"
	"github.com/praveensri2018/sivanyaAPI/internal/payments"
	"github.com/praveensri2018/sivanyaAPI/internal/pricing"
	"github.com/praveensri2018/sivanyaAPI/internal/products"
	"github.com/praveensri2018/sivanyaAPI/internal/stock"
	"github.com/praveensri2018/sivanyaAPI/internal/users"
	"github.com/praveensri2018/sivanyaAPI/pkg/config"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
	"github.com/praveensri2018/sivanyaAPI/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Users     users.Service
	Products  products.Service
	Stock     stock.Service
	Pricing   pricing.Service
	Cart      cart.Service
	Favorites favorites.Service
	Orders    orders.Service
	Payments  payments.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.Users, logg))
		r.Post("/login", controllers.Login(deps.Users, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.Profile(deps.Users, logg))
			r.Put("/", controllers.UpdateProfile(deps.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{productID}", controllers.ProductGet(deps.Products, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.ProductCreate(deps.Products, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/{productID}", controllers.StockByProduct(deps.Stock, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.StockRecord(deps.Stock, logg))
				r.Put("/{stockID}", controllers.StockUpdate(deps.Stock, logg))
				r.Delete("/{stockID}", controllers.StockDelete(deps.Stock, logg))
			})
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Get("/{productID}", controllers.PricesByProduct(deps.Pricing, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.PriceUpsert(deps.Pricing, logg))
				r.Put("/{priceID}", controllers.PriceUpdate(deps.Pricing, logg))
				r.Delete("/{priceID}", controllers.PriceDelete(deps.Pricing, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Put("/{cartID}", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/{cartID}", controllers.CartRemove(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(deps.Favorites, logg))
			r.Post("/", controllers.FavoriteAdd(deps.Favorites, logg))
			r.Delete("/{productID}", controllers.FavoriteRemove(deps.Favorites, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.With(middleware.RequireAdmin(logg)).Get("/all", controllers.OrderListAll(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
			r.Delete("/{orderID}", controllers.OrderCancel(deps.Orders, logg))
			r.With(middleware.RequireAdmin(logg)).Put("/{orderID}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
			r.Get("/{orderID}/payments", controllers.PaymentsByOrder(deps.Payments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.PaymentRecord(deps.Payments, logg))
			r.Get("/", controllers.PaymentListMine(deps.Payments, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/all", controllers.PaymentListAll(deps.Payments, logg))
				r.Put("/{paymentID}/status", controllers.PaymentUpdateStatus(deps.Payments, logg))
				r.Post("/{paymentID}/refund", controllers.PaymentRefund(deps.Payments, logg))
			})
		})
	})

	return r
}
