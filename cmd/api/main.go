package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/praveensri2018/sivanyaAPI/api/routes"
	"github.com/praveensri2018/sivanyaAPI/internal/cart"
	"github.com/praveensri2018/sivanyaAPI/internal/favorites"
	"github.com/praveensri2018/sivanyaAPI/internal/orders"
	"github.com/praveensri2018/sivanyaAPI/internal/payments"
	"github.com/praveensri2018/sivanyaAPI/internal/pricing"
	"github.com/praveensri2018/sivanyaAPI/internal/products"
	"github.com/praveensri2018/sivanyaAPI/internal/stock"
	"github.com/praveensri2018/sivanyaAPI/internal/users"
	"github.com/praveensri2018/sivanyaAPI/pkg/config"
	"github.com/praveensri2018/sivanyaAPI/pkg/db"
	"github.com/praveensri2018/sivanyaAPI/pkg/logger"
	"github.com/praveensri2018/sivanyaAPI/pkg/metrics"
	"github.com/praveensri2018/sivanyaAPI/pkg/migrate"
	"github.com/praveensri2018/sivanyaAPI/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	deps, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Config = cfg
	deps.Logger = logg
	deps.Registry = registry
	deps.Metrics = httpMetrics
	deps.DBPinger = dbClient
	deps.RedisPinger = redisClient

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	select {
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}

// buildServices wires every repository and service the router needs.
func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Deps, error) {
	conn := dbClient.DB()

	usersRepo := users.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	stockRepo := stock.NewRepository(conn)
	pricingRepo := pricing.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	favoritesRepo := favorites.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	paymentsRepo := payments.NewRepository(conn)

	usersSvc, err := users.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		return routes.Deps{}, err
	}
	stockSvc, err := stock.NewService(stockRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	pricingSvc, err := pricing.NewService(pricingRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	productsSvc, err := products.NewService(productsRepo, stockRepo, pricingRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	cartSvc, err := cart.NewService(cartRepo, stockSvc)
	if err != nil {
		return routes.Deps{}, err
	}
	favoritesSvc, err := favorites.NewService(favoritesRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	paymentsSvc, err := payments.NewService(paymentsRepo, ordersRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	reconciler, err := payments.NewReconciler(paymentsRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	locker := redis.NewCheckoutLock(redisClient, cfg.Redis.CheckoutLockTTL)
	ordersSvc, err := orders.NewService(
		ordersRepo,
		cartRepo,
		stockRepo,
		paymentsRepo,
		pricingSvc,
		reconciler,
		locker,
		dbClient,
		logg,
	)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Users:     usersSvc,
		Products:  productsSvc,
		Stock:     stockSvc,
		Pricing:   pricingSvc,
		Cart:      cartSvc,
		Favorites: favoritesSvc,
		Orders:    ordersSvc,
		Payments:  paymentsSvc,
	}, nil
}
