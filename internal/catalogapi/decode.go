package catalogapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// ErrUnexpectedShape is returned when a list endpoint answers with neither a JSON
// array nor an object carrying a "results" array.
var ErrUnexpectedShape = errors.New("unexpected catalog response shape")

type rawProduct struct {
	ID                 flexString  `json:"id"`
	Name               flexString  `json:"name"`
	Description        flexString  `json:"description"`
	Category           flexString  `json:"category"`
	CategoryName       flexString  `json:"category_name"`
	Price              flexDecimal `json:"price"`
	DiscountedPrice    flexDecimal `json:"discounted_price"`
	DiscountAmount     flexDecimal `json:"discount_amount"`
	DiscountPercentage flexDecimal `json:"discount_percentage"`
	StockQuantity      flexInt     `json:"stock_quantity"`
	IsInStock          flexBool    `json:"is_in_stock"`
	ShowOnHomepage     flexBool    `json:"show_on_homepage"`
	IsActive           flexBool    `json:"is_active"`
	Image              flexString  `json:"image"`
	MainImageURL       flexString  `json:"main_image_url"`
	MainImage          flexString  `json:"main_image"`
}

type rawCategory struct {
	ID   flexString `json:"id"`
	Name flexString `json:"name"`
}

type rawLogo struct {
	ImageURL flexString `json:"image_url"`
}

// listElements accepts both list shapes the catalog uses: a bare array, or an
// envelope whose "results" field holds the array. A missing or null "results"
// is an empty list.
func listElements(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}
	switch body[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return list, nil
	case '{':
		var env struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if len(env.Results) == 0 || bytes.Equal(bytes.TrimSpace(env.Results), null) {
			return nil, nil
		}
		var list []json.RawMessage
		if err := json.Unmarshal(env.Results, &list); err != nil {
			return nil, fmt.Errorf("%w: results: %v", ErrUnexpectedShape, err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: starts with %q", ErrUnexpectedShape, body[0])
	}
}

// DecodeProducts turns a products response into canonical products. Elements that
// are not JSON objects or have no id are skipped and counted in skipped.
func DecodeProducts(body []byte) (products []domain.Product, skipped int, err error) {
	elems, err := listElements(body)
	if err != nil {
		return nil, 0, err
	}
	products = make([]domain.Product, 0, len(elems))
	for _, elem := range elems {
		var raw rawProduct
		if err := json.Unmarshal(elem, &raw); err != nil || raw.ID == "" {
			skipped++
			continue
		}
		products = append(products, raw.normalize())
	}
	return products, skipped, nil
}

// DecodeCategories turns a categories response into categories.
func DecodeCategories(body []byte) (categories []domain.Category, skipped int, err error) {
	elems, err := listElements(body)
	if err != nil {
		return nil, 0, err
	}
	categories = make([]domain.Category, 0, len(elems))
	for _, elem := range elems {
		var raw rawCategory
		if err := json.Unmarshal(elem, &raw); err != nil || raw.ID == "" {
			skipped++
			continue
		}
		categories = append(categories, domain.Category{ID: string(raw.ID), Name: string(raw.Name)})
	}
	return categories, skipped, nil
}

// DecodeLogo reads a logo response. Anything without an image_url is the fallback mark.
func DecodeLogo(body []byte) domain.Logo {
	var raw rawLogo
	if err := json.Unmarshal(body, &raw); err != nil || raw.ImageURL == "" {
		return domain.Logo{Fallback: true}
	}
	return domain.Logo{ImageURL: string(raw.ImageURL)}
}

func (r rawProduct) normalize() domain.Product {
	p := domain.Product{
		ID:                 string(r.ID),
		Name:               string(r.Name),
		Description:        string(r.Description),
		Category:           string(r.Category),
		CategoryName:       string(r.CategoryName),
		Price:              r.Price.OrZero(),
		DiscountAmount:     r.DiscountAmount.OrZero(),
		DiscountPercentage: r.DiscountPercentage.OrZero(),
		IsInStock:          r.IsInStock.Or(false),
		ShowOnHomepage:     r.ShowOnHomepage.Or(true),
		IsActive:           r.IsActive.Or(true),
		Image:              firstNonEmpty(string(r.Image), string(r.MainImageURL), string(r.MainImage)),
	}
	if r.DiscountedPrice.Valid {
		v := r.DiscountedPrice.Value
		p.DiscountedPrice = &v
	}
	if r.StockQuantity.Valid {
		v := r.StockQuantity.Value
		p.StockQuantity = &v
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
