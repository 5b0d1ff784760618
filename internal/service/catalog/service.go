package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

// Source is the remote catalog.
type Source interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
	FetchLogo(ctx context.Context) (domain.Logo, error)
}

// Service holds the last fetched catalog and answers view queries from it. Until the
// first refresh completes every view is empty.
type Service struct {
	src    Source
	logger *zap.SugaredLogger

	// seq issues refresh tokens; only the newest token's result is applied.
	seq atomic.Uint64

	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
	logo       domain.Logo
	refreshed  time.Time
}

func New(src Source, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{src: src, logger: logger, logo: domain.Logo{Fallback: true}}
}

// Refresh fetches products and categories together and swaps them in. A failed or
// malformed fetch degrades that list to empty. If a newer Refresh started while this
// one was in flight, the result is discarded and applied reports false.
func (s *Service) Refresh(ctx context.Context) (applied bool, err error) {
	token := s.seq.Add(1)

	var (
		products   []domain.Product
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.src.FetchProducts(gctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warnf("catalog service: fetch products failed, showing none error=%v", err)
			list = nil
		}
		products = list
		return nil
	})
	g.Go(func() error {
		list, err := s.src.FetchCategories(gctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warnf("catalog service: fetch categories failed, showing none error=%v", err)
			list = nil
		}
		categories = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq.Load() {
		s.logger.Debugf("catalog service: discarding stale refresh token=%d latest=%d", token, s.seq.Load())
		return false, nil
	}
	s.products = products
	s.categories = categories
	s.refreshed = time.Now()
	s.logger.Infof("catalog service: refreshed products=%d categories=%d", len(products), len(categories))
	return true, nil
}

// RefreshLogo fetches the logo; any failure keeps the fallback mark.
func (s *Service) RefreshLogo(ctx context.Context) domain.Logo {
	logo, err := s.src.FetchLogo(ctx)
	if err != nil {
		s.logger.Warnf("catalog service: fetch logo failed, using fallback error=%v", err)
		logo = domain.Logo{Fallback: true}
	}
	s.mu.Lock()
	s.logo = logo
	s.mu.Unlock()
	return logo
}

// Run refreshes the catalog and logo immediately and then every interval until ctx ends.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.refreshAll(ctx)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

func (s *Service) refreshAll(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warnf("catalog service: refresh error=%v", err)
	}
	s.RefreshLogo(ctx)
}

func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Service) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

func (s *Service) Logo() domain.Logo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logo
}

// RefreshedAt is the time of the last applied refresh, zero before the first one.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}

// Product looks up a product by id in the last fetched catalog.
func (s *Service) Product(id string) (domain.Product, error) {
	for _, p := range s.Products() {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// List applies q to the current catalog.
func (s *Service) List(q catalog.Query) []domain.Product {
	return catalog.Collect(s.Products(), q)
}

// Groups returns the all-categories view for term.
func (s *Service) Groups(term string) []catalog.Group {
	s.mu.RLock()
	products, categories := s.products, s.categories
	s.mu.RUnlock()
	return catalog.GroupByCategory(products, categories, term)
}
