package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/seed"
)

// seed serves a demo catalog API so the storefront can run without the real backend.
func main() {
	var (
		addr     string
		filePath string
		logoURL  string
	)
	flag.StringVar(&addr, "addr", ":8000", "Listen address")
	flag.StringVar(&filePath, "file", "", "Optional product CSV to serve instead of the built-in demo catalog")
	flag.StringVar(&logoURL, "logo", "", "Optional logo image URL")
	flag.Parse()

	base, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = base.Sync() }()
	logger := base.Sugar().Named("seed")

	catalog := seed.Demo()
	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			logger.Fatalf("open file: %v", err)
		}
		start := time.Now()
		products, categories, err := importer.NewCSVImporter(f).Run()
		f.Close()
		if err != nil {
			logger.Fatalf("import failed: %v", err)
		}
		catalog.Products, catalog.Categories = products, categories
		logger.Infow("imported catalog", "products", len(products), "categories", len(categories), "took", time.Since(start).Truncate(time.Millisecond))
	}
	if logoURL != "" {
		catalog.Logo.ImageURL = logoURL
		catalog.Logo.Fallback = false
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           seed.Handler(catalog, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("serving demo catalog", "addr", addr, "products", len(catalog.Products))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}
