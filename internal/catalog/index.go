// Package catalog filters an in-memory product list for the storefront views.
//
// Three gates decide what a view shows:
//   - text: case-insensitive substring of name, category name or description
//   - category: exact category id when one is selected
//   - homepage: on the home view (no category selected) only products flagged for it
//
// Category browsing is exhaustive, so the homepage gate never applies once a category
// is selected. The active gate applies only when grouping products per category.
package catalog

import (
	"iter"
	"strings"

	"storefront/internal/domain"
)

// Query holds the filter inputs of one view.
type Query struct {
	SearchTerm string
	CategoryID string
	// HomepageOnly enables the homepage gate. It has no effect while CategoryID is set.
	HomepageOnly bool
}

// HomeView is the query of the curated home feed for a search term.
func HomeView(term string) Query {
	return Query{SearchTerm: term, HomepageOnly: true}
}

// CategoryView is the query of a selected category for a search term.
func CategoryView(categoryID, term string) Query {
	return Query{SearchTerm: term, CategoryID: categoryID}
}

// Filter yields the products matching q in catalog order. The sequence re-reads
// products on every iteration, so it can be ranged over repeatedly.
func Filter(products []domain.Product, q Query) iter.Seq[domain.Product] {
	term := normalize(q.SearchTerm)
	return func(yield func(domain.Product) bool) {
		for _, p := range products {
			if !matches(p, q, term) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Collect is Filter materialized into a slice. It never returns nil.
func Collect(products []domain.Product, q Query) []domain.Product {
	out := []domain.Product{}
	for p := range Filter(products, q) {
		out = append(out, p)
	}
	return out
}

// Matches reports whether a single product passes every gate of q.
func Matches(p domain.Product, q Query) bool {
	return matches(p, q, normalize(q.SearchTerm))
}

func matches(p domain.Product, q Query, term string) bool {
	if q.CategoryID != "" {
		if p.Category != q.CategoryID {
			return false
		}
	} else if q.HomepageOnly && !p.ShowOnHomepage {
		return false
	}
	return matchesText(p, term)
}

// MatchesText reports whether term occurs in the product's name, category name or
// description, ignoring case. A blank term matches everything.
func MatchesText(p domain.Product, term string) bool {
	return matchesText(p, normalize(term))
}

func matchesText(p domain.Product, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.CategoryName), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Group is one category row of the all-categories view.
type Group struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

// GroupByCategory buckets active products matching term under their category, in
// category order. Categories without a matching product are omitted.
func GroupByCategory(products []domain.Product, categories []domain.Category, term string) []Group {
	norm := normalize(term)
	groups := []Group{}
	for _, c := range categories {
		var members []domain.Product
		for _, p := range products {
			if p.Category != c.ID || !p.IsActive || !matchesText(p, norm) {
				continue
			}
			members = append(members, p)
		}
		if len(members) > 0 {
			groups = append(groups, Group{Category: c, Products: members})
		}
	}
	return groups
}
