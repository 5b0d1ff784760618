package main

import (
	"fmt"
	"io"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	"storefront/internal/stock"
)

func formatPrice(p domain.Product) string {
	q := pricing.Resolve(p)
	line := q.Effective.StringFixed(2)
	if q.HasDiscount {
		line += fmt.Sprintf("  (was %s, save %s)", q.Original.StringFixed(2), q.Saving().StringFixed(2))
	}
	return line
}

func formatStock(p domain.Product) string {
	n := stock.Available(p)
	switch {
	case n == 0:
		return "out of stock"
	case p.StockQuantity == nil:
		return "in stock"
	default:
		return fmt.Sprintf("%d in stock", n)
	}
}

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for i, p := range products {
		fmt.Fprintf(w, " %2d. [%s] %s\n", i+1, p.ID, p.Name)
		fmt.Fprintf(w, "     Price: %s  |  %s", formatPrice(p), formatStock(p))
		if p.CategoryName != "" {
			fmt.Fprintf(w, "  |  %s", p.CategoryName)
		}
		fmt.Fprintln(w)
	}
}

func printProduct(w io.Writer, p domain.Product) {
	fmt.Fprintf(w, "%s [%s]\n", p.Name, p.ID)
	if p.CategoryName != "" {
		fmt.Fprintf(w, "Category: %s\n", p.CategoryName)
	}
	fmt.Fprintf(w, "Price: %s\n", formatPrice(p))
	fmt.Fprintf(w, "Stock: %s\n", formatStock(p))
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	if p.Image != "" {
		fmt.Fprintf(w, "Image: %s\n", p.Image)
	}
}

func printGroups(w io.Writer, categories []domain.Category, groups []catalog.Group) {
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories found.")
		return
	}
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Category.ID] = len(g.Products)
	}
	for _, c := range categories {
		fmt.Fprintf(w, " [%s] %-30s (%d products)\n", c.ID, c.Name, counts[c.ID])
	}
}

func printSummary(w io.Writer, cart domain.Cart) {
	fmt.Fprintf(w, "Cart: %d items, total %s\n", cart.TotalItems(), cart.TotalPrice().StringFixed(2))
}

func printCart(w io.Writer, cart domain.Cart) {
	if len(cart.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	for _, item := range cart.Items {
		line := fmt.Sprintf(" %3d x %-30s %10s", item.Quantity, item.Name, item.LineTotal().StringFixed(2))
		if item.Price.LessThan(item.OriginalPrice) {
			line += fmt.Sprintf("  (%s each, was %s)", item.Price.StringFixed(2), item.OriginalPrice.StringFixed(2))
		}
		fmt.Fprintln(w, line)
	}
	printSummary(w, cart)
}
