package domain

import "github.com/shopspring/decimal"

// Product is the canonical catalog record. Raw API payloads are normalized into this
// shape by the catalog client before any pricing, stock or filtering logic sees them.
type Product struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	Category           string           `json:"category,omitempty"`
	CategoryName       string           `json:"category_name,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price,omitempty"`
	DiscountAmount     decimal.Decimal  `json:"discount_amount"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
	StockQuantity      *int             `json:"stock_quantity,omitempty"`
	IsInStock          bool             `json:"is_in_stock"`
	ShowOnHomepage     bool             `json:"show_on_homepage"`
	IsActive           bool             `json:"is_active"`
	Image              string           `json:"image,omitempty"`
}
