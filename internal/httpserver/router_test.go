package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/service/anonymous"
)

type stubCatalog struct {
	products   []domain.Product
	categories []domain.Category
	logo       domain.Logo
	refreshed  time.Time
	refreshErr error
}

func (s *stubCatalog) Products() []domain.Product { return s.products }
func (s *stubCatalog) Categories() []domain.Category { return s.categories }
func (s *stubCatalog) Logo() domain.Logo { return s.logo }
func (s *stubCatalog) RefreshedAt() time.Time { return s.refreshed }
func (s *stubCatalog) List(q catalog.Query) []domain.Product {
	return catalog.Collect(s.products, q)
}
func (s *stubCatalog) Groups(term string) []catalog.Group {
	return catalog.GroupByCategory(s.products, s.categories, term)
}

func (s *stubCatalog) Product(id string) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (s *stubCatalog) Refresh(_ context.Context) (bool, error) {
	if s.refreshErr != nil {
		return false, s.refreshErr
	}
	s.refreshed = time.Now()
	return true, nil
}

type stubPublisher struct {
	mu       sync.Mutex
	handoffs []checkout.Handoff
	err      error
}

func (s *stubPublisher) Publish(_ context.Context, h checkout.Handoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.handoffs = append(s.handoffs, h)
	return nil
}

type failingRepo struct{}

func (failingRepo) Read(context.Context, string) ([]byte, error) { return nil, domain.ErrNotFound }
func (failingRepo) Write(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingRepo) Delete(context.Context, string) error { return errors.New("disk full") }

func intPtr(v int) *int { return &v }

func testCatalog() *stubCatalog {
	return &stubCatalog{
		products: []domain.Product{
			{ID: "1", Name: "Laptop X", Category: "c1", CategoryName: "Electronics", Price: decimal.RequireFromString("79.99"),
				DiscountPercentage: decimal.NewFromInt(25), StockQuantity: intPtr(3), IsInStock: true, ShowOnHomepage: true, IsActive: true},
			{ID: "2", Name: "Cable", Category: "c1", CategoryName: "Electronics", Price: decimal.RequireFromString("5"),
				StockQuantity: intPtr(0), ShowOnHomepage: false, IsActive: true},
			{ID: "3", Name: "Kettle", Category: "c2", CategoryName: "Kitchen", Price: decimal.RequireFromString("20"),
				IsInStock: true, ShowOnHomepage: true, IsActive: true},
		},
		categories: []domain.Category{{ID: "c1", Name: "Electronics"}, {ID: "c2", Name: "Kitchen"}},
		logo:       domain.Logo{Fallback: true},
	}
}

type testEnv struct {
	router    *gin.Engine
	catalog   *stubCatalog
	publisher *stubPublisher
}

func newTestEnv(t *testing.T, repo cartrepo.Repository) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{catalog: testCatalog(), publisher: &stubPublisher{}}
	if repo == nil {
		repo = cartrepo.NewMemory()
	}
	router, err := buildRouter(nil, nil, Deps{
		Catalog:   env.catalog,
		Carts:     repo,
		Sessions:  anonymous.New(),
		Publisher: env.publisher,
	}, []string{"http://localhost:5173"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	env.router = router
	return env
}

func (e *testEnv) do(t *testing.T, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cart response: %v body=%s", err, rec.Body.String())
	}
	return resp
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	if _, err := buildRouter(nil, nil, Deps{}, nil); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before refresh: expected 503, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/catalog/refresh", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz after refresh: expected 200, got %d", rec.Code)
	}
}

func TestCatalogRefreshFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.catalog.refreshErr = errors.New("boom")
	rec := env.do(t, http.MethodPost, "/catalog/refresh", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestCatalogProductsViews(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct {
		name string
		path string
		want []string
		code int
	}{
		{"home view hides non-homepage", "/catalog/products", []string{"1", "3"}, http.StatusOK},
		{"category view ignores homepage gate", "/catalog/products?category=c1", []string{"1", "2"}, http.StatusOK},
		{"search", "/catalog/products?search=KITCH", []string{"3"}, http.StatusOK},
		{"gate disabled", "/catalog/products?homepage=false", []string{"1", "2", "3"}, http.StatusOK},
		{"bad flag", "/catalog/products?homepage=maybe", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tc.path, "", "")
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if tc.code != http.StatusOK {
				return
			}
			var resp struct {
				Results []domain.Product `json:"results"`
				Count   int              `json:"count"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Count != len(tc.want) || len(resp.Results) != len(tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, resp.Results)
			}
			for i, id := range tc.want {
				if resp.Results[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, resp.Results[i].ID)
				}
			}
		})
	}
}

func TestCatalogProductByID(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/catalog/products/3", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/catalog/products/404", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCatalogGroupsAndLogo(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/catalog/groups?search=cable", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("groups: expected 200, got %d", rec.Code)
	}
	var groups struct {
		Results []struct {
			Category domain.Category  `json:"category"`
			Products []domain.Product `json:"products"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups.Results) != 1 || groups.Results[0].Category.ID != "c1" || len(groups.Results[0].Products) != 1 {
		t.Fatalf("unexpected groups %+v", groups.Results)
	}

	rec = env.do(t, http.MethodGet, "/catalog/logo", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"fallback":true`) {
		t.Fatalf("unexpected logo response %d %s", rec.Code, rec.Body.String())
	}
}

func TestCartIssuesSession(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/cart", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	session := rec.Header().Get(sessionHeader)
	if session == "" {
		t.Fatalf("expected session header")
	}
	resp := decodeCart(t, rec)
	if resp.Session != session || resp.Items == nil || len(resp.Items) != 0 || resp.TotalItems != 0 {
		t.Fatalf("unexpected empty cart %+v", resp)
	}
}

func TestCartRejectsInvalidSession(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/cart", "nope", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartAddMergeAndStockCeiling(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)

	rec := env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeCart(t, rec)
	if resp.Decision != "ACCEPT" || len(resp.Items) != 1 || resp.Items[0].Quantity != 1 {
		t.Fatalf("unexpected add response %+v", resp)
	}
	if !resp.Items[0].Price.Equal(decimal.RequireFromString("59.99")) {
		t.Fatalf("expected resolved price 59.99, got %s", resp.Items[0].Price)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Message != "Added 1 x Laptop X to the cart" {
		t.Fatalf("unexpected notices %+v", resp.Notices)
	}

	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"1","quantity":2}`))
	if resp.TotalItems != 3 || len(resp.Items) != 1 {
		t.Fatalf("expected merged line of 3, got %+v", resp)
	}
	if !resp.TotalPrice.Equal(decimal.RequireFromString("179.97")) {
		t.Fatalf("unexpected total %s", resp.TotalPrice)
	}

	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"1"}`))
	if resp.Decision != "EXCEEDS_STOCK(3)" || resp.TotalItems != 3 {
		t.Fatalf("expected stock rejection, got %+v", resp)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Message != "Sorry, only 3 left in stock" {
		t.Fatalf("unexpected notices %+v", resp.Notices)
	}

	resp = decodeCart(t, env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"2"}`))
	if resp.Decision != "OUT_OF_STOCK" || len(resp.Items) != 1 {
		t.Fatalf("expected out of stock, got %+v", resp)
	}
}

func TestCartAddErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct {
		name string
		body string
		code int
	}{
		{"unknown product", `{"product_id":"missing"}`, http.StatusNotFound},
		{"zero quantity", `{"product_id":"1","quantity":0}`, http.StatusBadRequest},
		{"missing product", `{"quantity":1}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPost, "/cart/items", "", tc.body); rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestCartUpdateRemoveClear(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)
	env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"1"}`)
	env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"3","quantity":2}`)

	resp := decodeCart(t, env.do(t, http.MethodPatch, "/cart/items/1", session, `{"quantity":3}`))
	if resp.TotalItems != 5 {
		t.Fatalf("expected 5 items after update, got %+v", resp)
	}
	resp = decodeCart(t, env.do(t, http.MethodPatch, "/cart/items/1", session, `{"quantity":4}`))
	if resp.Decision != "EXCEEDS_STOCK(3)" || resp.TotalItems != 5 {
		t.Fatalf("expected update rejection, got %+v", resp)
	}
	if rec := env.do(t, http.MethodPatch, "/cart/items/1", session, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity, got %d", rec.Code)
	}

	resp = decodeCart(t, env.do(t, http.MethodDelete, "/cart/items/3", session, ""))
	if len(resp.Items) != 1 || resp.Items[0].ProductID != "1" {
		t.Fatalf("unexpected items after remove %+v", resp.Items)
	}

	resp = decodeCart(t, env.do(t, http.MethodDelete, "/cart", session, ""))
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", resp.Items)
	}
}

func TestCartSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)
	b := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)
	env.do(t, http.MethodPost, "/cart/items", a, `{"product_id":"3"}`)

	if resp := decodeCart(t, env.do(t, http.MethodGet, "/cart", b, "")); len(resp.Items) != 0 {
		t.Fatalf("session b sees session a's cart: %+v", resp.Items)
	}
	if resp := decodeCart(t, env.do(t, http.MethodGet, "/cart", a, "")); len(resp.Items) != 1 {
		t.Fatalf("session a lost its cart: %+v", resp.Items)
	}
}

func TestCartCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)

	if rec := env.do(t, http.MethodPost, "/cart/checkout", session, ""); rec.Code != http.StatusConflict {
		t.Fatalf("empty checkout: expected 409, got %d", rec.Code)
	}

	env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"3","quantity":2}`)
	rec := env.do(t, http.MethodPost, "/cart/checkout", session, "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("checkout: expected 202, got %d", rec.Code)
	}
	if len(env.publisher.handoffs) != 1 || env.publisher.handoffs[0].SessionID != session || env.publisher.handoffs[0].TotalItems != 2 {
		t.Fatalf("unexpected handoffs %+v", env.publisher.handoffs)
	}
	if resp := decodeCart(t, env.do(t, http.MethodGet, "/cart", session, "")); len(resp.Items) != 1 {
		t.Fatalf("cart must survive until checkout completes")
	}

	resp := decodeCart(t, env.do(t, http.MethodPost, "/cart/checkout/complete", session, ""))
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart after completion, got %+v", resp.Items)
	}
}

func TestCartCheckoutPublishFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.publisher.err = errors.New("broker down")
	session := env.do(t, http.MethodGet, "/cart", "", "").Header().Get(sessionHeader)
	env.do(t, http.MethodPost, "/cart/items", session, `{"product_id":"3"}`)
	if rec := env.do(t, http.MethodPost, "/cart/checkout", session, ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCartWriteFailure(t *testing.T) {
	env := newTestEnv(t, failingRepo{})
	if rec := env.do(t, http.MethodPost, "/cart/items", "", `{"product_id":"3"}`); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on write failure, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/cart", "", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on delete failure, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", sessionHeader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
