package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository/memory"
	"github.com/mamadbah2/shopms/internal/server/handlers"
	"github.com/mamadbah2/shopms/internal/service/auth"
	"github.com/mamadbah2/shopms/internal/service/expenses"
	"github.com/mamadbah2/shopms/internal/service/inventory"
	"github.com/mamadbah2/shopms/internal/service/ledger"
	"github.com/mamadbah2/shopms/internal/service/receipt"
	"github.com/mamadbah2/shopms/internal/service/reporting"
)

type testServer struct {
	t      *testing.T
	store  *memory.Store
	engine http.Handler
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()

	authSvc := auth.NewService(store.Users(), "router-test-secret", time.Hour, nil)
	ledgerSvc := ledger.NewService(store.Products(), store.Sales(), store.Transactor(), nil)
	reportingSvc := reporting.NewService(store.Sales(), store.Expenses(), store.Reports(), time.UTC, "PKR", nil)

	engine := New(Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, false, nil),
		Products:  handlers.NewProductHandler(inventory.NewService(store.Products(), nil), nil),
		Sales:     handlers.NewSaleHandler(ledgerSvc, receipt.Shop{Name: "Test Shop", Currency: "PKR", Location: time.UTC}, nil),
		Expenses:  handlers.NewExpenseHandler(expenses.NewService(store.Expenses(), nil), time.UTC, nil),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, nil),
	}, []string{"http://localhost:3000"}, nil)

	return &testServer{t: t, store: store, engine: engine}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/setup", nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			s.cookie = c
		}
	}
	require.NotNil(s.t, s.cookie, "login must set auth_token")
	assert.True(s.t, s.cookie.HttpOnly)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireCookie(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body["request_id"])

	s.cookie = &http.Cookie{Name: "auth_token", Value: "forged"}
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/products", nil).Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	status := decode[map[string]any](t, s.do(http.MethodGet, "/api/auth/check", nil))
	assert.Equal(t, false, status["adminExists"])

	s.login()
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/auth/setup", nil).Code)

	rec := s.do(http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "nope", "newPassword": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPut, "/api/auth/password", map[string]string{"currentPassword": "admin123", "newPassword": "s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/create-admin", map[string]string{"username": "admin", "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			assert.Empty(t, c.Value)
			assert.Less(t, c.MaxAge, 0)
		}
	}
}

func TestSaleLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/api/products", `{"name":"Widget","stock":"10","price":100}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)

	rec = s.do(http.MethodPost, "/api/sales", map[string]any{
		"buyerName": "Ali",
		"items":     []map[string]any{{"productId": product.ID, "quantity": "4", "salePrice": "150"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[models.Sale](t, rec)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, sale.TotalProfit.Equal(decimal.NewFromInt(200)))

	got, err := s.store.Products().Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)

	rec = s.do(http.MethodPost, "/api/sales", map[string]any{
		"buyerName": "Sara",
		"items":     []map[string]any{{"productId": product.ID, "quantity": 7, "salePrice": 150}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[map[string]string](t, rec)["code"])

	rec = s.do(http.MethodPost, "/api/sales", map[string]any{
		"buyerName": "Sara",
		"items":     []map[string]any{{"productId": product.ID, "quantity": "18446744073709551619", "salePrice": 150}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[map[string]string](t, rec)["code"])
	got, err = s.store.Products().Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)

	rec = s.do(http.MethodPost, "/api/products", `{"name":"Huge","stock":"9223372036854775808","price":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/sales/"+sale.ID+"/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-"+sale.ID+".pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(http.MethodPut, "/api/sales/"+sale.ID, map[string]any{
		"buyerName": "Ali",
		"items":     []map[string]any{{"productId": product.ID, "quantity": 5, "salePrice": 150}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[reporting.Dashboard](t, rec)
	assert.True(t, dash.Today.TotalSales.Equal(decimal.NewFromInt(750)))
	require.Len(t, dash.RecentSales, 1)

	rec = s.do(http.MethodDelete, "/api/sales/"+sale.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err = s.store.Products().Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/sales/"+sale.ID, nil).Code)
}

func TestSaleValidationMessages(t *testing.T) {
	s := newTestServer(t)
	s.login()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing buyer", `{"items":[{"productId":"x"}]}`, "Buyer name is required."},
		{"no items", `{"buyerName":"Ali","items":[]}`, "At least one sale item is required."},
		{"incomplete item", `{"buyerName":"Ali","items":[{"productId":"x","quantity":1}]}`, "Each item must include productId, quantity, and salePrice."},
		{"fractional quantity", `{"buyerName":"Ali","items":[{"productId":"x","quantity":1.5,"salePrice":3}]}`, "Item quantity must be a whole number."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/sales", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[map[string]string](t, rec)["error"])
		})
	}

	rec := s.do(http.MethodPost, "/api/sales", `{"buyerName":"Ali","items":[{"productId":"x","quantity":"two","salePrice":3}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[map[string]string](t, rec)["code"])

	rec = s.do(http.MethodPost, "/api/sales", `{"buyerName":"Ali","items":[{"productId":"missing","quantity":1,"salePrice":3}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpensesWithRange(t *testing.T) {
	s := newTestServer(t)
	s.login()

	for _, day := range []string{"2026-03-01", "2026-03-05", "2026-03-09"} {
		rec := s.do(http.MethodPost, "/api/expenses", map[string]any{"type": "Rent", "amount": "100", "expenseDate": day})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/api/expenses?from=2026-03-05&to=2026-03-09", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Expense](t, rec), 2)

	rec = s.do(http.MethodGet, "/api/expenses?from=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/expenses", map[string]any{"type": "Snacks", "amount": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[[]models.Expense](t, s.do(http.MethodGet, "/api/expenses", nil))
	require.Len(t, list, 3)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/expenses/"+list[0].ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/expenses/"+list[0].ID, nil).Code)
}

func TestDashboardTrend(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodGet, "/api/dashboard/trend?period=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Period string                 `json:"period"`
		Points []reporting.TrendPoint `json:"points"`
	}](t, rec)
	assert.Equal(t, "month", body.Period)
	assert.Len(t, body.Points, 30)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/dashboard/trend?period=year", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/sales", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
