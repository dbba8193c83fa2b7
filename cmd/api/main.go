package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scrapmandi/scrapmandi-backend/api/routes"
	"github.com/scrapmandi/scrapmandi-backend/internal/audit"
	"github.com/scrapmandi/scrapmandi-backend/internal/listings"
	"github.com/scrapmandi/scrapmandi-backend/internal/orders"
	"github.com/scrapmandi/scrapmandi-backend/internal/payments"
	"github.com/scrapmandi/scrapmandi-backend/internal/pickups"
	"github.com/scrapmandi/scrapmandi-backend/internal/users"
	razorpaywebhook "github.com/scrapmandi/scrapmandi-backend/internal/webhooks/razorpay"
	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	"github.com/scrapmandi/scrapmandi-backend/pkg/db"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
	"github.com/scrapmandi/scrapmandi-backend/pkg/metrics"
	"github.com/scrapmandi/scrapmandi-backend/pkg/migrate"
	"github.com/scrapmandi/scrapmandi-backend/pkg/razorpay"
	"github.com/scrapmandi/scrapmandi-backend/pkg/redis"
)

const webhookIdempotencyScope = "webhook:razorpay"

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

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpay client", err)
		os.Exit(1)
	}

	recorder, err := audit.NewRecorder(dbClient.DB(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	pickupsRepo := pickups.NewRepository(dbClient.DB())

	usersService, err := users.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	listingsService, err := listings.NewService(listingsRepo, usersRepo, recorder, cfg.Listings)
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, listingsRepo, usersRepo, razorpayClient, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	pickupsService, err := pickups.NewService(pickupsRepo, ordersService, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create pickups service", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	resolver, err := payments.NewResolver(ordersRepo, listingsService, recorder, paymentMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment resolver", err)
		os.Exit(1)
	}

	webhookService, err := razorpaywebhook.NewService(resolver, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := razorpaywebhook.NewIdempotencyGuard(redisClient, cfg.Razorpay.WebhookEventTTL, webhookIdempotencyScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Users:          usersService,
			Listings:       listingsService,
			ListingsRepo:   listingsRepo,
			Orders:         ordersService,
			OrdersRepo:     ordersRepo,
			Pickups:        pickupsService,
			Resolver:       resolver,
			Razorpay:       razorpayClient,
			WebhookService: webhookService,
			WebhookGuard:   webhookGuard,
			PaymentMetrics: paymentMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
