package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func sampleCart() domain.Cart {
	return domain.Cart{Items: []domain.CartItem{
		{ProductID: "1", Name: "Laptop X", Price: decimal.RequireFromString("59.99"), OriginalPrice: decimal.RequireFromString("79.99"), Quantity: 3},
		{ProductID: "2", Name: "Cable", Price: decimal.RequireFromString("5.00"), OriginalPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}}
}

func TestNewHandoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	h, err := NewHandoff("sess-1", sampleCart(), now)
	if err != nil {
		t.Fatalf("NewHandoff: %v", err)
	}
	if h.TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", h.TotalItems)
	}
	if !h.TotalPrice.Equal(decimal.RequireFromString("184.97")) {
		t.Fatalf("unexpected total %s", h.TotalPrice)
	}
	if h.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %s", h.CreatedAt)
	}
}

func TestNewHandoffEmptyCart(t *testing.T) {
	if _, err := NewHandoff("sess-1", domain.Cart{}, time.Now()); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestNewHandoffCopiesItems(t *testing.T) {
	cart := sampleCart()
	h, err := NewHandoff("sess-1", cart, time.Now())
	if err != nil {
		t.Fatalf("NewHandoff: %v", err)
	}
	cart.Items[0].Quantity = 99
	if h.Items[0].Quantity != 3 {
		t.Fatalf("handoff shares item storage with the cart")
	}
}

func TestKafkaPublisherSendsHandoff(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Handoff
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.SessionID != "sess-1" || got.TotalItems != 4 {
			return errors.New("unexpected handoff payload")
		}
		return nil
	})

	pub := NewKafkaPublisher(producer, "storefront.checkout", nil)
	h, _ := NewHandoff("sess-1", sampleCart(), time.Now())
	if err := pub.Publish(context.Background(), h); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafkaPublisherFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisher(producer, "storefront.checkout", nil)
	h, _ := NewHandoff("sess-1", sampleCart(), time.Now())
	err := pub.Publish(context.Background(), h)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected wrapped ErrOutOfBrokers, got %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafkaPublisherCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisher(producer, "storefront.checkout", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, _ := NewHandoff("sess-1", sampleCart(), time.Now())
	if err := pub.Publish(ctx, h); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	_ = pub.Close()
}

func TestProducerConfigReturnsSuccesses(t *testing.T) {
	cfg := ProducerConfig("storefront")
	if !cfg.Producer.Return.Successes {
		t.Fatalf("sync producer requires Return.Successes")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
}

func TestLogPublisher(t *testing.T) {
	h, _ := NewHandoff("sess-1", sampleCart(), time.Now())
	if err := NewLogPublisher(nil).Publish(context.Background(), h); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
