package domain

import "github.com/shopspring/decimal"

// CartItem is a product snapshot taken when the product was first added. Price and
// OriginalPrice are frozen at that moment and are not re-resolved on later adds.
type CartItem struct {
	ProductID     string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	Image         string          `json:"image,omitempty"`
	StockQuantity *int            `json:"stock_quantity,omitempty"`
	IsInStock     bool            `json:"is_in_stock"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Quantity      int             `json:"quantity"`
}

// LineTotal returns Price * Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered sequence of items in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Index returns the position of the item for productID, or -1.
func (c Cart) Index(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
