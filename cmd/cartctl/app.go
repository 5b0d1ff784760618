package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefront/internal/catalogapi"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/notify"
	cartrepo "storefront/internal/repository/cart"
	catalogsvc "storefront/internal/service/catalog"
	cartsvc "storefront/internal/service/cart"
)

// localCartKey is the single cart record kept by the terminal client.
const localCartKey = "local"

// app holds what the commands share. Everything is built lazily so commands only touch
// the network or the disk when they need to.
type app struct {
	cfg     config.Config
	verbose bool

	logger  *zap.SugaredLogger
	catalog *catalogsvc.Service
	db      *cartrepo.LevelDB
	store   *cartsvc.Store
}

func newApp() *app {
	return &app{cfg: config.FromEnv()}
}

func (a *app) init() error {
	base, err := logging.Console(a.verbose)
	if err != nil {
		return err
	}
	a.logger = base.Sugar().Named("cartctl")
	client := catalogapi.New(a.cfg.CatalogBaseURL, catalogapi.Options{
		Timeout:       a.cfg.CatalogTimeout,
		RatePerSecond: a.cfg.CatalogRatePerSecond,
		Retries:       a.cfg.CatalogRetries,
	}, a.logger.Named("catalogapi"))
	a.catalog = catalogsvc.New(client, a.logger.Named("catalog"))
	return nil
}

// loadCatalog fetches products and categories. Fetch failures show as an empty catalog
// and are logged, like in the web storefront.
func (a *app) loadCatalog(ctx context.Context) error {
	if _, err := a.catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return nil
}

// openCart opens the on-disk cart and loads it. Notifications go to out.
func (a *app) openCart(ctx context.Context, out io.Writer) (*cartsvc.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	db, err := cartrepo.OpenLevelDB(a.cfg.CartDBPath)
	if err != nil {
		return nil, fmt.Errorf("open cart at %s: %w", a.cfg.CartDBPath, err)
	}
	a.db = db
	a.store = cartsvc.New(cartrepo.Bind(db, localCartKey), notify.Printer{W: out}, a.logger.Named("cart"))
	a.store.Load(ctx)
	return a.store, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil && a.logger != nil {
			a.logger.Warnf("close cart db error=%v", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
