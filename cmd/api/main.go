package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soukplace/soukplace-backend/api/routes"
	"github.com/soukplace/soukplace-backend/internal/cart"
	"github.com/soukplace/soukplace-backend/internal/checkout"
	"github.com/soukplace/soukplace-backend/internal/marketplace"
	"github.com/soukplace/soukplace-backend/internal/notifications"
	"github.com/soukplace/soukplace-backend/internal/orders"
	"github.com/soukplace/soukplace-backend/internal/shops"
	"github.com/soukplace/soukplace-backend/pkg/config"
	"github.com/soukplace/soukplace-backend/pkg/db"
	"github.com/soukplace/soukplace-backend/pkg/logger"
	"github.com/soukplace/soukplace-backend/pkg/metrics"
	"github.com/soukplace/soukplace-backend/pkg/migrate"
	"github.com/soukplace/soukplace-backend/pkg/outbox"
	"github.com/soukplace/soukplace-backend/pkg/redis"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outboxRepo, logg)

	cartRepo := cart.NewRepository(dbClient.DB())
	shopsRepo := shops.NewRepository(dbClient.DB())
	marketRepo := marketplace.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	shopsSvc, err := shops.NewService(shopsRepo, dbClient, outboxSvc)
	requireService(logg, "shops", err)

	marketSvc, err := marketplace.NewService(marketRepo)
	requireService(logg, "marketplace", err)

	cartSvc, err := cart.NewService(cartRepo, dbClient, shopsRepo)
	requireService(logg, "cart", err)

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, checkoutMetrics)
	requireService(logg, "orders", err)

	checkoutSvc, err := checkout.NewService(cartRepo, shopsRepo, marketSvc, ordersRepo, dbClient, outboxSvc, checkoutMetrics)
	requireService(logg, "checkout", err)

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	requireService(logg, "notifications", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			RedisPinger:   redisClient,
			Idempotency:   redisClient,
			CartService:   cartSvc,
			Checkout:      checkoutSvc,
			Shops:         shopsSvc,
			Marketplace:   marketSvc,
			OrdersRepo:    ordersRepo,
			Orders:        ordersSvc,
			Notifications: notificationsSvc,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
