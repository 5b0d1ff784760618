// Package pricing resolves the single price a product is sold at.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Quote is the outcome of resolving a product's price.
type Quote struct {
	Effective   decimal.Decimal
	Original    decimal.Decimal
	HasDiscount bool
}

// Saving returns Original - Effective.
func (q Quote) Saving() decimal.Decimal {
	return q.Original.Sub(q.Effective)
}

// Resolve picks the effective unit price of p. The discount encodings are consulted in a
// fixed order and the first applicable one wins:
//
//	discounted_price, discount_amount > 0, discount_percentage > 0, plain price.
//
// HasDiscount is derived from the result rather than from any single field, since the
// catalog can carry a stale or zero field next to a meaningful one.
func Resolve(p domain.Product) Quote {
	original := p.Price
	if original.IsNegative() {
		original = decimal.Zero
	}

	var effective decimal.Decimal
	switch {
	case p.DiscountedPrice != nil:
		effective = *p.DiscountedPrice
	case p.DiscountAmount.IsPositive():
		effective = original.Sub(p.DiscountAmount)
	case p.DiscountPercentage.IsPositive():
		factor := hundred.Sub(p.DiscountPercentage).Div(hundred)
		effective = original.Mul(factor).Round(2)
	default:
		effective = original
	}

	if effective.IsNegative() {
		effective = decimal.Zero
	}
	if effective.GreaterThan(original) {
		effective = original
	}

	return Quote{
		Effective:   effective,
		Original:    original,
		HasDiscount: effective.LessThan(original),
	}
}
