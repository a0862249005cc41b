package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/config"
	"moduscap-be/internal/metrics"
	"moduscap-be/internal/order"
	"moduscap-be/internal/payment"
	"moduscap-be/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetProduct(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) UpdateOptionPrice(ctx context.Context, code, price string) (string, error) {
	args := m.Called(ctx, code, price)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogService) DeleteOption(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) orderResult(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CreateQuote(ctx context.Context, in order.QuoteInput) (*order.QuoteResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.QuoteResult), args.Error(1)
}

func (m *MockOrderService) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, number))
}

func (m *MockOrderService) GetStatus(ctx context.Context, number string) (*order.StatusInfo, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.StatusInfo), args.Error(1)
}

func (m *MockOrderService) AttachPaymentProof(ctx context.Context, number, proof string) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, number, proof))
}

func (m *MockOrderService) Approve(ctx context.Context, id, adminID int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id, adminID))
}

func (m *MockOrderService) Reject(ctx context.Context, id, adminID int64, reason string) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id, adminID, reason))
}

func (m *MockOrderService) MarkPaid(ctx context.Context, id int64) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id int64, to order.Status) (*order.Order, error) {
	return m.orderResult(m.Called(ctx, id, to))
}

func (m *MockOrderService) BulkAction(ctx context.Context, in order.BulkActionInput) (*order.BulkResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.BulkResult), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter order.ListFilter) (*order.OrderPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderPage), args.Error(1)
}

func (m *MockOrderService) ListPendingPayment(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) Statistics(ctx context.Context) (*order.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Statistics), args.Error(1)
}

func (m *MockOrderService) Export(ctx context.Context, filter order.ListFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// optionTable serves options to the calculator from memory.
type optionTable map[string]*catalog.ProductOption

func (t optionTable) FindOptionByCode(_ context.Context, code string) (*catalog.ProductOption, error) {
	return t[code], nil
}

type testEnv struct {
	router  http.Handler
	catalog *MockCatalogService
	orders  *MockOrderService
	metrics *metrics.Registry
	product *catalog.Product
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	walls := &catalog.ProductOptionGroup{ID: 1, Code: "murs", InputType: catalog.InputSingleSelect,
		Translations: catalog.Translations{{Locale: "fr", Name: "Murs"}, {Locale: "en", Name: "Walls"}}}
	bois := &catalog.ProductOption{ID: 1, Code: "bardage-bois", Price: "50.00", IsActive: true, Group: walls,
		Translations: catalog.Translations{{Locale: "fr", Name: "Bardage bois"}, {Locale: "en", Name: "Wood cladding"}}}
	pvc := &catalog.ProductOption{ID: 2, Code: "fenetres-pvc", Price: "200.00", IsActive: true,
		Translations: catalog.Translations{{Locale: "fr", Name: "Fenêtres PVC"}}}
	toit := &catalog.ProductOption{ID: 3, Code: "toit-vegetal", Price: "900.00", IsActive: false}

	base := "45000.00"
	product := &catalog.Product{
		ID:               1,
		Code:             "moduscap-s",
		BasePrice:        &base,
		IsActive:         true,
		Translations:     catalog.Translations{{Locale: "fr", Name: "Module S"}, {Locale: "en", Name: "S module"}},
		AvailableOptions: []*catalog.ProductOption{bois, pvc, toit},
		DefaultOptions:   []*catalog.ProductOption{bois},
	}

	bank, err := payment.NewBankDetails(config.PaymentConfig{
		Beneficiary: "Moduscap SAS",
		IBAN:        "FR7630006000011234567890189",
		BIC:         "AGRIFRPP",
		BankName:    "Crédit Agricole",
	})
	require.NoError(t, err)

	env := testEnv{
		catalog: new(MockCatalogService),
		orders:  new(MockOrderService),
		metrics: metrics.NewRegistry(),
		product: product,
	}
	env.catalog.On("GetProduct", mock.Anything, "moduscap-s").Return(product, nil).Maybe()
	env.catalog.On("GetProduct", mock.Anything, mock.Anything).Return(nil, catalog.ErrProductNotFound).Maybe()

	env.router = NewRouter(Deps{
		Catalog:    env.catalog,
		Calculator: pricing.NewCalculator(optionTable{bois.Code: bois, pvc.Code: pvc, toit.Code: toit}, env.metrics),
		Orders:     env.orders,
		Bank:       bank,
		Metrics:    env.metrics,
		Locales:    config.LocaleConfig{Default: "fr", Supported: []string{"fr", "en"}},
	})
	return env
}

func (env testEnv) do(t *testing.T, method, target, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var payload map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	}
	return rr, payload
}

var testNow = time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)

func approvedOrder(t *testing.T) *order.Order {
	t.Helper()
	o := order.NewOrder("ORD-20260520-00000A", testNow.Add(-time.Hour))
	o.ID = 5
	o.Total = "90100.00"
	o.ClientEmail = "jeanne@example.com"
	require.NoError(t, o.Approve(7, testNow))
	return o
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	env.metrics.Counter(metrics.QuotesCreated).Inc()

	rr, body := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", body["status"])

	rr, body = env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	counters := body["counters"].(map[string]any)
	assert.Equal(t, float64(1), counters[metrics.QuotesCreated])
}

func TestLocaleMiddleware(t *testing.T) {
	env := newTestEnv(t)

	rr, body := env.do(t, http.MethodGet, "/api/v1/de/products", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "unsupported_locale", body["code"])
	env.catalog.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestProductHandler(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.On("ListProducts", mock.Anything, catalog.ProductFilter{OnlyActive: true, OnlyFeatured: true}).
			Return([]*catalog.Product{env.product}, nil).Once()

		rr, body := env.do(t, http.MethodGet, "/api/v1/en/products?featured=true", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["count"])
		first := body["products"].([]any)[0].(map[string]any)
		assert.Equal(t, "S module", first["name"])
		env.catalog.AssertExpectations(t)
	})

	t.Run("GetWithDefaults", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodGet, "/api/v1/fr/products/moduscap-s", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []any{"bardage-bois"}, body["default_options"])
		groups := body["option_groups"].([]any)
		assert.Equal(t, "Murs", groups[0].(map[string]any)["name"])
		breakdown := body["pricing"].(map[string]any)
		assert.Equal(t, "45050.00", breakdown["total"].(map[string]any)["amount"])
	})

	t.Run("GetUnknown", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodGet, "/api/v1/fr/products/nope", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "product_not_found", body["code"])
	})

	t.Run("CalculatePriceSkipsUnknownOptions", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/products/moduscap-s/calculate-price",
			`{"options":["bardage-bois","fenetres-pvc","nope"],"quantity":2}`)
		require.Equal(t, http.StatusOK, rr.Code)

		p := body["pricing"].(map[string]any)
		assert.Equal(t, "250.00", p["options_price"])
		assert.Equal(t, "45250.00", p["unit_price"])
		assert.Equal(t, "90500.00", p["total"])
		assert.Len(t, p["option_details"], 2)
		assert.NotNil(t, body["breakdown"])
	})

	t.Run("CalculatePriceDefaultsQuantity", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/products/moduscap-s/calculate-price", `{"options":[]}`)
		require.Equal(t, http.StatusOK, rr.Code)
		p := body["pricing"].(map[string]any)
		assert.Equal(t, float64(1), p["quantity"])
		assert.Equal(t, "45000.00", p["total"])
	})

	t.Run("ValidateOptions", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/en/products/moduscap-s/validate-options",
			`{"options":["bardage-bois","nope","toit-vegetal"]}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, false, body["is_valid"])
		assert.Equal(t, []any{"nope", "toit-vegetal"}, body["invalid_options"])
		valid := body["valid_options"].([]any)
		require.Len(t, valid, 1)
		assert.Equal(t, "Wood cladding", valid[0].(map[string]any)["name"])
	})

	t.Run("VolumePricing", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/products/moduscap-s/volume-pricing", `{"quantity":3}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, body["volume_pricing"], 10)
	})

	t.Run("VolumePricingAboveLimit", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/products/moduscap-s/volume-pricing",
			fmt.Sprintf(`{"quantity":%d}`, pricing.MaxVolumeQuantity+1))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_quantity", body["code"])
		assert.Nil(t, body["volume_pricing"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/products/moduscap-s/calculate-price", `{"options":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "bad_request", body["code"])
	})
}

func TestQuoteHandler(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		env := newTestEnv(t)

		o := order.NewOrder("ORD-20260520-ABC123", testNow)
		o.Total = "90100.00"
		env.orders.On("CreateQuote", mock.Anything, order.QuoteInput{
			ProductCode: "moduscap-s",
			OptionCodes: []string{"bardage-bois"},
			Quantity:    2,
			ClientName:  "Jeanne Martin",
			ClientEmail: "jeanne@example.com",
			ClientNotes: "livraison en juin",
		}).Return(&order.QuoteResult{Order: o, Pricing: &pricing.ItemPrice{Total: "90100.00", Quantity: 2}}, nil).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/quotes", `{
			"product_code": "moduscap-s",
			"options": ["bardage-bois"],
			"quantity": 2,
			"client": {"name": "Jeanne Martin", "email": "jeanne@example.com"},
			"notes": "livraison en juin"
		}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "ORD-20260520-ABC123", body["order_number"])
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "90100.00", body["total"])
		env.orders.AssertExpectations(t)
	})

	t.Run("CreateNeedsEmail", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/quotes", `{"product_code":"moduscap-s","client":{"name":"x"}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "bad_request", body["code"])
		env.orders.AssertNotCalled(t, "CreateQuote", mock.Anything, mock.Anything)
	})

	t.Run("CreateRejectsLargeQuantity", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/quotes", fmt.Sprintf(
			`{"product_code":"moduscap-s","quantity":%d,"client":{"email":"jeanne@example.com"}}`, pricing.MaxOrderQuantity+1))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_quantity", body["code"])
		env.orders.AssertNotCalled(t, "CreateQuote", mock.Anything, mock.Anything)
	})

	t.Run("CreateRejectsInvalidOptions", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("CreateQuote", mock.Anything, mock.Anything).
			Return(nil, &pricing.InvalidOptionsError{Codes: []string{"toit-vegetal"}}).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/quotes",
			`{"product_code":"moduscap-s","options":["toit-vegetal"],"client":{"email":"a@b.fr"}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_options", body["code"])
		assert.Equal(t, []any{"toit-vegetal"}, body["invalid_options"])
	})

	t.Run("Status", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetStatus", mock.Anything, "ORD-20260520-00000A").Return(&order.StatusInfo{
			OrderNumber: "ORD-20260520-00000A",
			Status:      order.StatusApproved,
			Total:       "90100.00",
			UpdatedAt:   testNow,
		}, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/fr/quotes/ORD-20260520-00000A/status", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, "2026-05-20T14:00:00Z", body["updated_at"])
	})

	t.Run("StatusUnknownOrder", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("GetStatus", mock.Anything, "ORD-X").Return(nil, order.ErrOrderNotFound)

		rr, body := env.do(t, http.MethodGet, "/api/v1/fr/quotes/ORD-X/status", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "order_not_found", body["code"])
	})

	t.Run("PaymentProof", func(t *testing.T) {
		env := newTestEnv(t)
		o := approvedOrder(t)
		proof := "VIR-2026-0042"
		o.PaymentProof = &proof
		env.orders.On("AttachPaymentProof", mock.Anything, o.OrderNumber, proof).Return(o, nil).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/fr/quotes/"+o.OrderNumber+"/payment-proof", `{"reference":"VIR-2026-0042"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, proof, body["payment_proof"])
	})

	t.Run("PaymentInfo", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodGet, "/api/v1/en/payment-info", "")
		require.Equal(t, http.StatusOK, rr.Code)
		info := body["payment_info"].(map[string]any)
		assert.Equal(t, "FR7630006000011234567890189", info["iban"])
		assert.Equal(t, payment.MethodBankTransfer, info["method"])
	})

	t.Run("PaymentInstructions", func(t *testing.T) {
		env := newTestEnv(t)
		o := approvedOrder(t)
		env.orders.On("GetByNumber", mock.Anything, o.OrderNumber).Return(o, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/en/quotes/"+o.OrderNumber+"/payment-instructions", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "90100.00", body["amount"])
		steps := body["instructions"].([]any)
		assert.Equal(t, "Transfer 90100.00 EUR to the beneficiary Moduscap SAS", steps[0])
		assert.Contains(t, steps[3], o.OrderNumber)
	})

	t.Run("PaymentInstructionsBeforeApproval", func(t *testing.T) {
		env := newTestEnv(t)
		o := order.NewOrder("ORD-20260520-00000B", testNow)
		env.orders.On("GetByNumber", mock.Anything, o.OrderNumber).Return(o, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/fr/quotes/"+o.OrderNumber+"/payment-instructions", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "payment_not_expected", body["code"])
	})
}

func TestQuoteHandler_NoBankAccount(t *testing.T) {
	h := NewQuoteHandler(new(MockOrderService), nil)

	rr := httptest.NewRecorder()
	h.paymentInfo(rr, httptest.NewRequest(http.MethodGet, "/api/v1/fr/payment-info", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "payment_info_unavailable")
}

func TestAdminHandler(t *testing.T) {
	t.Run("ListFiltersAndPages", func(t *testing.T) {
		env := newTestEnv(t)
		approved := order.StatusApproved
		env.orders.On("List", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool {
			return f.Status != nil && *f.Status == approved &&
				f.ClientEmail == "jeanne@example.com" &&
				f.Since == nil && f.Limit == 10 && f.Offset == 10
		})).Return(&order.OrderPage{Orders: []*order.Order{approvedOrder(t)}, Total: 11, Limit: 10, Offset: 10}, nil).Once()

		rr, body := env.do(t, http.MethodGet, "/api/v1/admin/orders?status=approved&email=jeanne@example.com&page=2&limit=10", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(11), body["total"])
		assert.Equal(t, float64(2), body["page"])
		orders := body["orders"].([]any)
		require.Len(t, orders, 1)
		first := orders[0].(map[string]any)
		assert.Equal(t, "approved", first["status"])
		assert.ElementsMatch(t, []any{"paid", "rejected", "cancelled"}, first["allowed_next_statuses"])
		env.orders.AssertExpectations(t)
	})

	t.Run("ListClampsLimitAndSetsSince", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("List", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool {
			return f.Limit == maxLimit && f.Offset == 0 && f.Since != nil
		})).Return(&order.OrderPage{Limit: maxLimit}, nil).Once()

		rr, _ := env.do(t, http.MethodGet, "/api/v1/admin/orders?limit=500&page=-1&days=7", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		env.orders.AssertExpectations(t)
	})

	t.Run("ListRejectsUnknownStatus", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodGet, "/api/v1/admin/orders?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_status", body["code"])
	})

	t.Run("Statistics", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Statistics", mock.Anything).Return(&order.Statistics{
			ByStatus:       map[order.Status]int64{order.StatusPending: 3},
			TotalOrders:    3,
			PendingPayment: 0,
			Revenue:        "0.00",
		}, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/admin/orders/statistics", "")
		require.Equal(t, http.StatusOK, rr.Code)
		stats := body["statistics"].(map[string]any)
		assert.Equal(t, float64(3), stats["total_orders"])
	})

	t.Run("Export", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Export", mock.Anything, mock.Anything).Return([]byte("PK\x03\x04"), nil)

		rr, _ := env.do(t, http.MethodGet, "/api/v1/admin/orders/export?status=paid", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, xlsxMediaType, rr.Header().Get("Content-Type"))
		assert.Regexp(t, `^attachment; filename="orders_\d{8}\.xlsx"$`, rr.Header().Get("Content-Disposition"))
		assert.Equal(t, "PK\x03\x04", rr.Body.String())
	})

	t.Run("PendingPayment", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("ListPendingPayment", mock.Anything).Return([]*order.Order{approvedOrder(t)}, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/admin/orders/pending-payment", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("GetByNumber", func(t *testing.T) {
		env := newTestEnv(t)
		o := approvedOrder(t)
		env.orders.On("GetByNumber", mock.Anything, o.OrderNumber).Return(o, nil)

		rr, body := env.do(t, http.MethodGet, "/api/v1/admin/orders/"+o.OrderNumber, "")
		require.Equal(t, http.StatusOK, rr.Code)
		got := body["order"].(map[string]any)
		assert.Equal(t, float64(7), got["approved_by"])
		assert.Equal(t, "2026-05-20T14:00:00Z", got["approved_at"])
	})

	t.Run("ApproveUsesAdminHeader", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Approve", mock.Anything, int64(5), int64(7)).Return(approvedOrder(t), nil).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/5/approve", "", adminIDHeader, "7")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "approved", body["order"].(map[string]any)["status"])
		env.orders.AssertExpectations(t)
	})

	t.Run("ApproveWithoutHeader", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Approve", mock.Anything, int64(5), int64(0)).Return(approvedOrder(t), nil).Once()

		rr, _ := env.do(t, http.MethodPost, "/api/v1/admin/orders/5/approve", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		env.orders.AssertExpectations(t)
	})

	t.Run("ApproveBadID", func(t *testing.T) {
		env := newTestEnv(t)

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/abc/approve", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "bad_request", body["code"])
	})

	t.Run("RejectRefusedTransition", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("Reject", mock.Anything, int64(5), int64(0), "trop cher").
			Return(nil, &order.TransitionError{From: order.StatusPaid, To: order.StatusRejected}).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/5/reject", `{"reason":"trop cher"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "invalid_transition", body["code"])
	})

	t.Run("MarkPaidWithoutProof", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("MarkPaid", mock.Anything, int64(5)).Return(nil, order.ErrPaymentProofRequired).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/5/mark-paid", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "payment_proof_required", body["code"])
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("UpdateStatus", mock.Anything, int64(5), order.StatusProcessing).
			Return(nil, order.ErrConcurrentUpdate).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/5/status", `{"status":"processing"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "concurrent_update", body["code"])
	})

	t.Run("BulkAction", func(t *testing.T) {
		env := newTestEnv(t)
		env.orders.On("BulkAction", mock.Anything, order.BulkActionInput{
			Action:   order.BulkApprove,
			OrderIDs: []int64{1, 2},
			AdminID:  3,
		}).Return(&order.BulkResult{Processed: 1, Failed: map[int64]string{2: "order not found"}}, nil).Once()

		rr, body := env.do(t, http.MethodPost, "/api/v1/admin/orders/bulk-action",
			`{"action":"approve","order_ids":[1,2]}`, adminIDHeader, "3")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["processed"])
		assert.Equal(t, map[string]any{"2": "order not found"}, body["failed"])
	})

	t.Run("BulkActionNeedsIDs", func(t *testing.T) {
		env := newTestEnv(t)

		rr, _ := env.do(t, http.MethodPost, "/api/v1/admin/orders/bulk-action", `{"action":"approve"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env.orders.AssertNotCalled(t, "BulkAction", mock.Anything, mock.Anything)
	})

	t.Run("UpdateOptionPrice", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.On("UpdateOptionPrice", mock.Anything, "bardage-bois", "1250.5").Return("1250.50", nil).Once()

		rr, body := env.do(t, http.MethodPatch, "/api/v1/admin/options/bardage-bois", `{"price":"1250.5"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "1250.50", body["price"])
	})

	t.Run("DeleteOptionInUse", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.On("DeleteOption", mock.Anything, "bardage-bois").Return(catalog.ErrOptionInUse).Once()

		rr, body := env.do(t, http.MethodDelete, "/api/v1/admin/options/bardage-bois", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "option_in_use", body["code"])
	})
}

func TestAdminID(t *testing.T) {
	tests := map[string]int64{"": 0, "12": 12, "abc": 0, "-4": 0}
	for raw, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(adminIDHeader, raw)
		assert.Equal(t, want, adminID(req), raw)
	}
}
