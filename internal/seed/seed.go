// Package seed serves a demo catalog API for local development. It speaks the same
// wire format as the real catalog: products in a {"results": [...]} envelope, categories
// as a bare array, prices as decimal strings.
package seed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Catalog is the data a demo server answers with.
type Catalog struct {
	Products   []domain.Product
	Categories []domain.Category
	Logo       domain.Logo
}

// Demo returns a small catalog covering every discount encoding and stock shape.
func Demo() Catalog {
	stock := func(n int) *int { return &n }
	price := decimal.RequireFromString
	discounted := price("14.99")
	return Catalog{
		Categories: []domain.Category{
			{ID: "1", Name: "Apparel"},
			{ID: "2", Name: "Kitchen"},
			{ID: "3", Name: "Electronics"},
		},
		Products: []domain.Product{
			{ID: "101", Name: "Demo T-Shirt", Description: "Soft cotton tee", Category: "1", CategoryName: "Apparel",
				Price: price("19.99"), DiscountedPrice: &discounted, StockQuantity: stock(12), IsInStock: true, ShowOnHomepage: true, IsActive: true},
			{ID: "102", Name: "Demo Hoodie", Description: "Fleece hoodie", Category: "1", CategoryName: "Apparel",
				Price: price("49.00"), DiscountAmount: price("10"), StockQuantity: stock(2), IsInStock: true, ShowOnHomepage: true, IsActive: true},
			{ID: "201", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Category: "2", CategoryName: "Kitchen",
				Price: price("12.99"), DiscountPercentage: price("33"), IsInStock: true, ShowOnHomepage: true, IsActive: true},
			{ID: "202", Name: "Demo Kettle", Description: "Steel kettle", Category: "2", CategoryName: "Kitchen",
				Price: price("35.00"), StockQuantity: stock(0), ShowOnHomepage: false, IsActive: true},
			{ID: "301", Name: "Demo Laptop", Description: "Fast laptop", Category: "3", CategoryName: "Electronics",
				Price: price("79.99"), DiscountPercentage: price("25"), StockQuantity: stock(3), IsInStock: true, ShowOnHomepage: true, IsActive: true},
			{ID: "302", Name: "Retired Cable", Description: "USB-A cable", Category: "3", CategoryName: "Electronics",
				Price: price("5.00"), IsInStock: true, ShowOnHomepage: true, IsActive: false},
		},
		Logo: domain.Logo{Fallback: true},
	}
}

// Handler builds a gin engine serving c under the catalog API paths.
func Handler(c Catalog, logger *zap.SugaredLogger) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	products := make([]gin.H, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, wireProduct(p))
	}
	categories := make([]gin.H, 0, len(c.Categories))
	for _, cat := range c.Categories {
		categories = append(categories, gin.H{"id": cat.ID, "name": cat.Name})
	}

	router.GET("/products/", func(ctx *gin.Context) {
		logger.Debugw("seed: serve products", "count", len(products))
		ctx.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
	})
	router.GET("/categories/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, categories)
	})
	router.GET("/products/logo/", func(ctx *gin.Context) {
		if c.Logo.Fallback || c.Logo.ImageURL == "" {
			ctx.JSON(http.StatusNotFound, gin.H{"detail": "no active logo"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"image_url": c.Logo.ImageURL})
	})
	return router
}

func wireProduct(p domain.Product) gin.H {
	out := gin.H{
		"id":                  p.ID,
		"name":                p.Name,
		"description":         p.Description,
		"category":            p.Category,
		"category_name":       p.CategoryName,
		"price":               p.Price.StringFixed(2),
		"discount_amount":     p.DiscountAmount.StringFixed(2),
		"discount_percentage": p.DiscountPercentage.String(),
		"is_in_stock":         p.IsInStock,
		"show_on_homepage":    p.ShowOnHomepage,
		"is_active":           p.IsActive,
		"main_image_url":      p.Image,
	}
	if p.DiscountedPrice != nil {
		out["discounted_price"] = p.DiscountedPrice.StringFixed(2)
	} else {
		out["discounted_price"] = nil
	}
	if p.StockQuantity != nil {
		out["stock_quantity"] = *p.StockQuantity
	}
	return out
}
