// Package stock decides whether a cart quantity fits under a product's stock ceiling.
//
// The ceiling is the stock level seen in the last catalog fetch. The guard never
// re-checks with the catalog, so a decision can be stale by up to one refresh interval.
package stock

import (
	"fmt"

	"storefront/internal/domain"
)

type Reason int

const (
	Accepted Reason = iota
	OutOfStock
	ExceedsStock
)

// Decision is the result of a stock check. Available is the ceiling that was applied.
type Decision struct {
	Reason    Reason
	Available int
}

func (d Decision) Accepted() bool {
	return d.Reason == Accepted
}

func (d Decision) String() string {
	switch d.Reason {
	case OutOfStock:
		return "OUT_OF_STOCK"
	case ExceedsStock:
		return fmt.Sprintf("EXCEEDS_STOCK(%d)", d.Available)
	default:
		return "ACCEPT"
	}
}

// Message is the text shown to the shopper for a rejected decision.
func (d Decision) Message() string {
	switch d.Reason {
	case OutOfStock:
		return "Sorry, this product is out of stock"
	case ExceedsStock:
		return fmt.Sprintf("Sorry, only %d left in stock", d.Available)
	default:
		return ""
	}
}

// Available returns the stock ceiling of p: stock_quantity when the catalog sent one,
// otherwise 1 or 0 from is_in_stock.
func Available(p domain.Product) int {
	return available(p.StockQuantity, p.IsInStock)
}

// AvailableForItem is Available for the stock snapshot held by a cart item.
func AvailableForItem(item domain.CartItem) int {
	return available(item.StockQuantity, item.IsInStock)
}

func available(quantity *int, inStock bool) int {
	if quantity != nil {
		if *quantity < 0 {
			return 0
		}
		return *quantity
	}
	if inStock {
		return 1
	}
	return 0
}

// Check validates inCart+requested against the ceiling of p.
func Check(p domain.Product, inCart, requested int) Decision {
	return decide(Available(p), inCart, requested)
}

// CheckItem validates an absolute quantity against the stock snapshot of a cart item.
func CheckItem(item domain.CartItem, quantity int) Decision {
	return decide(AvailableForItem(item), 0, quantity)
}

func decide(avail, inCart, requested int) Decision {
	if avail == 0 {
		return Decision{Reason: OutOfStock}
	}
	if inCart+requested > avail {
		return Decision{Reason: ExceedsStock, Available: avail}
	}
	return Decision{Reason: Accepted, Available: avail}
}
