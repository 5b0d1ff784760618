package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CSVImporter reads a product sheet exported from the shop admin into catalog records.
// Categories are derived from the category and category_name columns in first-seen order.
type CSVImporter struct {
	reader *csv.Reader
}

func NewCSVImporter(r io.Reader) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr}
}

// Run parses every row. Rows without an id are skipped; a row with an unparseable
// numeric column is an error naming the product.
func (i *CSVImporter) Run() ([]domain.Product, []domain.Category, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return nil, nil, errors.New("read headers: missing id column")
	}

	var (
		products   []domain.Product
		categories []domain.Category
		seen       = map[string]bool{}
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return products, categories, fmt.Errorf("read row: %w", err)
		}

		p, ok, err := parseRow(record, index)
		if err != nil {
			return products, categories, err
		}
		if !ok {
			continue
		}
		products = append(products, p)
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, domain.Category{ID: p.Category, Name: p.CategoryName})
		}
	}
	return products, categories, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, bool, error) {
	id := pick(record, index, "id")
	if id == "" {
		return domain.Product{}, false, nil
	}
	p := domain.Product{
		ID:             id,
		Name:           pick(record, index, "name"),
		Description:    pick(record, index, "description"),
		Category:       pick(record, index, "category"),
		CategoryName:   pick(record, index, "category_name"),
		Image:          pick(record, index, "image"),
		ShowOnHomepage: true,
		IsActive:       true,
	}

	var err error
	if p.Price, err = decimalColumn(record, index, "price"); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	if p.DiscountAmount, err = decimalColumn(record, index, "discount_amount"); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	if p.DiscountPercentage, err = decimalColumn(record, index, "discount_percentage"); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	if raw := pick(record, index, "discounted_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return p, false, fmt.Errorf("product %q: discounted_price: %w", id, err)
		}
		p.DiscountedPrice = &d
	}
	if raw := pick(record, index, "stock_quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, false, fmt.Errorf("product %q: stock_quantity: %w", id, err)
		}
		p.StockQuantity = &n
	}
	if p.IsInStock, err = boolColumn(record, index, "is_in_stock", p.StockQuantity != nil && *p.StockQuantity > 0); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	if p.ShowOnHomepage, err = boolColumn(record, index, "show_on_homepage", true); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	if p.IsActive, err = boolColumn(record, index, "is_active", true); err != nil {
		return p, false, fmt.Errorf("product %q: %w", id, err)
	}
	return p, true, nil
}

func decimalColumn(record []string, index map[string]int, key string) (decimal.Decimal, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolColumn(record []string, index map[string]int, key string, def bool) (bool, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
