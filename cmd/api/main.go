package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afkahka/kfccfk/api/routes"
	addresssvc "github.com/afkahka/kfccfk/internal/address"
	catalogsvc "github.com/afkahka/kfccfk/internal/catalog"
	discountsvc "github.com/afkahka/kfccfk/internal/discount"
	membershipsvc "github.com/afkahka/kfccfk/internal/membership"
	userssvc "github.com/afkahka/kfccfk/internal/users"
	"github.com/afkahka/kfccfk/pkg/config"
	"github.com/afkahka/kfccfk/pkg/db"
	"github.com/afkahka/kfccfk/pkg/logger"
	"github.com/afkahka/kfccfk/pkg/metrics"
	"github.com/afkahka/kfccfk/pkg/migrate"
	pkgredis "github.com/afkahka/kfccfk/pkg/redis"
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

	// Redis only backs settlement idempotency; the API starts without it.
	var redisClient *pkgredis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, settlement idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	loyaltyMetrics := metrics.NewLoyaltyMetrics(registry)

	accountRepo := membershipsvc.NewAccountRepository(dbClient.DB())
	levelRepo := membershipsvc.NewLevelRepository(dbClient.DB())

	membershipService, err := membershipsvc.NewService(membershipsvc.ServiceParams{
		Accounts: accountRepo,
		Levels:   levelRepo,
		Metrics:  loyaltyMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create membership service", err)
		os.Exit(1)
	}

	rightsService, err := membershipsvc.NewRightsService(membershipsvc.RightsServiceParams{
		Repo: membershipsvc.NewRightsRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rights service", err)
		os.Exit(1)
	}

	discountService, err := discountsvc.NewService(discountsvc.ServiceParams{
		Rules:   discountsvc.NewRuleRepository(dbClient.DB()),
		Coupons: discountsvc.NewCouponRepository(dbClient.DB()),
		Metrics: loyaltyMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	userService, err := userssvc.NewService(userssvc.ServiceParams{
		Repo:   userssvc.NewRepository(dbClient.DB()),
		Levels: levelRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	addressService, err := addresssvc.NewService(addresssvc.ServiceParams{
		Repo: addresssvc.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogsvc.ServiceParams{
		Repo: catalogsvc.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			Redis:       redisClient,
			Membership:  membershipService,
			Rights:      rightsService,
			Discount:    discountService,
			Users:       userService,
			Addresses:   addressService,
			Catalog:     catalogService,
			MetricsPath: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
