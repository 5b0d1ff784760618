package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	"storefront/internal/stock"
)

// Persistence is the durable record a Store is loaded from and written to.
// Read returns domain.ErrNotFound when nothing has been stored yet.
type Persistence interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
}

// Store owns one shopper's cart. Every successful mutation is written through to
// Persistence before the method returns. A Store assumes it is the only writer of
// its record; two stores bound to the same record overwrite each other.
type Store struct {
	mu       sync.Mutex
	items    []domain.CartItem
	persist  Persistence
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func New(persist Persistence, notifier notify.Notifier, logger *zap.SugaredLogger) *Store {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{persist: persist, notifier: notifier, logger: logger}
}

// Load replaces the in-memory cart with the persisted one. A missing, unreadable or
// malformed record leaves the store with an empty cart.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	payload, err := s.persist.Read(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("cart store: read failed, starting empty error=%v", err)
		}
		return
	}
	var items []domain.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		s.logger.Warnf("cart store: malformed record, starting empty error=%v", err)
		return
	}
	s.items = sanitize(items)
}

// sanitize drops entries that cannot have come from a valid mutation, so a hand-edited
// or truncated record cannot break the one-item-per-product invariant.
func sanitize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if idx, ok := seen[item.ProductID]; ok {
			out[idx].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out
}

// Add puts quantity units of p into the cart. A product already in the cart has its
// quantity increased and keeps the prices captured when it was first added. The
// returned decision reports a stock rejection; err is only set for invalid input or
// a failed write.
func (s *Store) Add(ctx context.Context, p domain.Product, quantity int) (stock.Decision, error) {
	if quantity < 1 {
		return stock.Decision{}, domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(p.ID)
	inCart := 0
	if idx >= 0 {
		inCart = s.items[idx].Quantity
	}

	decision := stock.Check(p, inCart, quantity)
	if !decision.Accepted() {
		s.logger.Infof("cart store: add rejected product_id=%s in_cart=%d requested=%d decision=%s", p.ID, inCart, quantity, decision)
		s.notifier.Notify(decision.Message(), notify.Error)
		return decision, nil
	}

	next := s.snapshot()
	if idx >= 0 {
		next[idx].Quantity += quantity
		next[idx].StockQuantity = p.StockQuantity
		next[idx].IsInStock = p.IsInStock
	} else {
		next = append(next, newItem(p, quantity))
	}

	if err := s.commit(ctx, next); err != nil {
		return decision, err
	}
	s.notifier.Notify(fmt.Sprintf("Added %d x %s to the cart", quantity, p.Name), notify.Success)
	return decision, nil
}

func newItem(p domain.Product, quantity int) domain.CartItem {
	quote := pricing.Resolve(p)
	return domain.CartItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		CategoryName:  p.CategoryName,
		Image:         p.Image,
		StockQuantity: p.StockQuantity,
		IsInStock:     p.IsInStock,
		Price:         quote.Effective,
		OriginalPrice: quote.Original,
		Quantity:      quantity,
	}
}

// UpdateQuantity sets the absolute quantity of a cart line. The new quantity is checked
// against the stock snapshot of the line; zero or less removes the line. Unknown ids
// are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (stock.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(productID)
	if idx < 0 {
		return stock.Decision{}, nil
	}

	next := s.snapshot()
	if quantity <= 0 {
		next = append(next[:idx], next[idx+1:]...)
		return stock.Decision{}, s.commit(ctx, next)
	}

	decision := stock.CheckItem(next[idx], quantity)
	if !decision.Accepted() {
		s.logger.Infof("cart store: update rejected product_id=%s quantity=%d decision=%s", productID, quantity, decision)
		s.notifier.Notify(decision.Message(), notify.Error)
		return decision, nil
	}
	next[idx].Quantity = quantity
	return decision, s.commit(ctx, next)
}

// Remove deletes the line for productID if present.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(productID)
	if idx < 0 {
		return nil
	}
	next := s.snapshot()
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next)
}

// Clear empties the cart and deletes the persisted record. The checkout flow calls it
// once an order has been placed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.Delete(ctx); err != nil {
		s.logger.Errorf("cart store: delete record error=%v", err)
		return fmt.Errorf("delete cart record: %w", err)
	}
	s.items = nil
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Cart() domain.Cart {
	return domain.Cart{Items: s.Items()}
}

func (s *Store) TotalItemCount() int {
	return s.Cart().TotalItems()
}

func (s *Store) TotalPrice() decimal.Decimal {
	return s.Cart().TotalPrice()
}

func (s *Store) index(productID string) int {
	return domain.Cart{Items: s.items}.Index(productID)
}

func (s *Store) snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// commit writes next and only then makes it the current cart, so a failed write
// leaves memory and storage in agreement.
func (s *Store) commit(ctx context.Context, next []domain.CartItem) error {
	if next == nil {
		next = []domain.CartItem{}
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.persist.Write(ctx, payload); err != nil {
		s.logger.Errorf("cart store: write record error=%v", err)
		return fmt.Errorf("write cart record: %w", err)
	}
	s.items = next
	return nil
}
