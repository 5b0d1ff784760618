package stock

import (
	"testing"

	"storefront/internal/domain"
)

func intPtr(v int) *int {
	return &v
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		want    int
	}{
		{"quantity wins over flag", domain.Product{StockQuantity: intPtr(7), IsInStock: false}, 7},
		{"zero quantity", domain.Product{StockQuantity: intPtr(0), IsInStock: true}, 0},
		{"negative quantity", domain.Product{StockQuantity: intPtr(-2)}, 0},
		{"flag in stock", domain.Product{IsInStock: true}, 1},
		{"flag out of stock", domain.Product{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Available(tt.product); got != tt.want {
				t.Fatalf("Available = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	three := domain.Product{StockQuantity: intPtr(3)}
	tests := []struct {
		name      string
		product   domain.Product
		inCart    int
		requested int
		want      string
	}{
		{"fits", three, 0, 2, "ACCEPT"},
		{"exactly at ceiling", three, 1, 2, "ACCEPT"},
		{"over ceiling", three, 2, 2, "EXCEEDS_STOCK(3)"},
		{"single request over ceiling", three, 0, 4, "EXCEEDS_STOCK(3)"},
		{"out of stock", domain.Product{StockQuantity: intPtr(0)}, 0, 1, "OUT_OF_STOCK"},
		{"flag fallback allows one", domain.Product{IsInStock: true}, 0, 1, "ACCEPT"},
		{"flag fallback rejects second", domain.Product{IsInStock: true}, 1, 1, "EXCEEDS_STOCK(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.product, tt.inCart, tt.requested)
			if got.String() != tt.want {
				t.Fatalf("Check = %s, want %s", got, tt.want)
			}
			if got.Accepted() != (tt.want == "ACCEPT") {
				t.Fatalf("Accepted mismatch for %s", got)
			}
		})
	}
}

func TestCheckItemUsesAbsoluteQuantity(t *testing.T) {
	item := domain.CartItem{ProductID: "p1", StockQuantity: intPtr(4), Quantity: 3}
	if d := CheckItem(item, 4); !d.Accepted() {
		t.Fatalf("expected accept, got %s", d)
	}
	if d := CheckItem(item, 5); d.String() != "EXCEEDS_STOCK(4)" {
		t.Fatalf("expected EXCEEDS_STOCK(4), got %s", d)
	}
}

func TestDecisionMessage(t *testing.T) {
	if msg := (Decision{Reason: ExceedsStock, Available: 3}).Message(); msg != "Sorry, only 3 left in stock" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := (Decision{Reason: OutOfStock}).Message(); msg != "Sorry, this product is out of stock" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := (Decision{}).Message(); msg != "" {
		t.Fatalf("accepted decision should have no message, got %q", msg)
	}
}
