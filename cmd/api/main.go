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
	"go.uber.org/multierr"

	"github.com/alexriley/storefront-sync/api/routes"
	cartcore "github.com/alexriley/storefront-sync/internal/cart"
	"github.com/alexriley/storefront-sync/internal/catalog"
	"github.com/alexriley/storefront-sync/internal/currency"
	"github.com/alexriley/storefront-sync/internal/session"
	pkgAuth "github.com/alexriley/storefront-sync/pkg/auth"
	"github.com/alexriley/storefront-sync/pkg/commerce"
	"github.com/alexriley/storefront-sync/pkg/config"
	"github.com/alexriley/storefront-sync/pkg/firebase"
	"github.com/alexriley/storefront-sync/pkg/logger"
	"github.com/alexriley/storefront-sync/pkg/metrics"
	"github.com/alexriley/storefront-sync/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	verifier, err := newTokenVerifier(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create token verifier", err)
		os.Exit(1)
	}

	commerceClient, err := commerce.NewClient(
		cfg.Commerce.Endpoint,
		cfg.Commerce.StorefrontKey,
		commerce.WithHTTPClient(&http.Client{Timeout: cfg.Commerce.RequestTimeout}),
		commerce.WithLinePageSize(cfg.Commerce.LinePageSize),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create commerce client", err)
		os.Exit(1)
	}

	gateway, err := cartcore.NewCommerceGateway(commerceClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart gateway", err)
		os.Exit(1)
	}

	sessionStore, err := session.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}
	sessionProvider, err := session.NewProvider(sessionStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create session provider", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartSyncMetrics(registry)

	cartManager, err := cartcore.NewManager(gateway, sessionProvider, cfg.Cart.CacheTTL, cartMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(commerceClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	currencyClient, err := currency.NewClient(cfg.Currency.BaseURL)
	if err != nil {
		logg.Error(context.Background(), "failed to create currency client", err)
		os.Exit(1)
	}
	currencyService, err := currency.NewService(currencyClient, redisClient, cfg.Currency, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create currency service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, verifier, cartManager, catalogService, currencyService, registry),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	closeErr := server.Shutdown(shutdownCtx)
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// newTokenVerifier picks the identity backend: Firebase in production, the
// HS256 verifier everywhere else.
func newTokenVerifier(cfg *config.Config, logg *logger.Logger) (pkgAuth.TokenVerifier, error) {
	if cfg.App.IsProd() || cfg.Firebase.ProjectID != "" {
		client, err := firebase.New(context.Background(), cfg.Firebase)
		if err != nil {
			return nil, err
		}
		logg.Info(context.Background(), "using firebase token verifier")
		return client, nil
	}
	return pkgAuth.NewHMACVerifier(cfg.JWT)
}
