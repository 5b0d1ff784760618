package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/catalogapi"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/migrate"
	cartrepo "storefront/internal/repository/cart"
	anonymoussvc "storefront/internal/service/anonymous"
	catalogsvc "storefront/internal/service/catalog"
)

func main() {
	cfg := config.FromEnv()
	base, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = base.Sync() }()
	logger := base.Sugar().Named("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		dbpool *pgxpool.Pool
		carts  cartrepo.Repository
	)
	switch cfg.CartStore {
	case "postgres":
		dbpool, err = db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		carts = cartrepo.NewPostgres(dbpool, logger.Named("cartrepo"))
	case "memory":
		carts = cartrepo.NewMemory()
	default:
		logger.Fatalf("unknown CART_STORE %q (want memory or postgres)", cfg.CartStore)
	}

	client := catalogapi.New(cfg.CatalogBaseURL, catalogapi.Options{
		Timeout:       cfg.CatalogTimeout,
		RatePerSecond: cfg.CatalogRatePerSecond,
		Retries:       cfg.CatalogRetries,
	}, logger.Named("catalogapi"))
	catalogService := catalogsvc.New(client, logger.Named("catalog"))
	go catalogService.Run(ctx, cfg.CatalogRefresh)

	var publisher checkout.Publisher = checkout.NewLogPublisher(logger.Named("checkout"))
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := checkout.DialKafka(cfg.KafkaBrokers, cfg.CheckoutTopic, logger.Named("checkout"))
		if err != nil {
			logger.Fatalf("init checkout publisher: %v", err)
		}
		defer kafka.Close()
		publisher = kafka
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), dbpool, httpserver.Deps{
		Catalog:   catalogService,
		Carts:     carts,
		Sessions:  anonymoussvc.New(),
		Publisher: publisher,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("starting http server", "addr", cfg.HTTPAddr, "cart_store", cfg.CartStore, "catalog", cfg.CatalogBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Infow("received signal, shutting down")
	case err := <-serverErr:
		logger.Errorw("server error", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("graceful shutdown failed", "error", err)
	} else {
		logger.Infow("server stopped")
	}
}
