package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Handoff is the cart snapshot passed to the external checkout.
type Handoff struct {
	SessionID  string            `json:"session_id"`
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewHandoff snapshots cart for session. An empty cart cannot be handed off.
func NewHandoff(sessionID string, cart domain.Cart, now time.Time) (Handoff, error) {
	if len(cart.Items) == 0 {
		return Handoff{}, domain.ErrEmptyCart
	}
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	return Handoff{
		SessionID:  sessionID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
		CreatedAt:  now.UTC(),
	}, nil
}

// Publisher delivers handoffs to the checkout system.
type Publisher interface {
	Publish(ctx context.Context, h Handoff) error
}

// LogPublisher only logs handoffs; used when no broker is configured.
type LogPublisher struct {
	logger *zap.SugaredLogger
}

func NewLogPublisher(logger *zap.SugaredLogger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, h Handoff) error {
	p.logger.Infow("checkout: handoff (no broker configured)",
		"session", h.SessionID, "items", h.TotalItems, "total", h.TotalPrice.StringFixed(2))
	return nil
}

func encode(h Handoff) ([]byte, error) {
	payload, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("encode handoff: %w", err)
	}
	return payload, nil
}
