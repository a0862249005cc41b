package api

import (
	"net/http"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/config"
	"moduscap-be/internal/metrics"
	"moduscap-be/internal/order"
	"moduscap-be/internal/payment"
	"moduscap-be/internal/pricing"

	"github.com/go-chi/chi/v5"
)

// Deps are the services the HTTP layer is built on. Bank may be nil when no
// payment account is configured.
type Deps struct {
	Catalog    catalog.Service
	Calculator *pricing.Calculator
	Orders     order.Service
	Bank       *payment.BankDetails
	Metrics    *metrics.Registry
	Locales    config.LocaleConfig
}

// NewRouter wires every route. Middlewares run in the given order, before routing.
func NewRouter(d Deps, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	health := NewHealthHandler(d.Metrics)
	r.Get("/health", health.health)
	r.Get("/metrics", health.counters)

	products := NewProductHandler(d.Catalog, d.Calculator)
	quotes := NewQuoteHandler(d.Orders, d.Bank)
	admin := NewAdminHandler(d.Orders, d.Catalog)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/admin", func(ar chi.Router) {
			registerAdminRoutes(ar, admin)
		})

		v1.Route("/{locale}", func(lr chi.Router) {
			lr.Use(LocaleMiddleware(d.Locales))
			registerProductRoutes(lr, products)
			registerQuoteRoutes(lr, quotes)
		})
	})

	return r
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.list)
		pr.Get("/{code}", h.get)
		pr.Post("/{code}/calculate-price", h.calculatePrice)
		pr.Post("/{code}/validate-options", h.validateOptions)
		pr.Post("/{code}/volume-pricing", h.volumePricing)
	})
}

func registerQuoteRoutes(router chi.Router, h *QuoteHandler) {
	router.Get("/payment-info", h.paymentInfo)
	router.Route("/quotes", func(qr chi.Router) {
		qr.Post("/", h.create)
		qr.Get("/{number}/status", h.status)
		qr.Get("/{number}/payment-instructions", h.paymentInstructions)
		qr.Post("/{number}/payment-proof", h.paymentProof)
	})
}

func registerAdminRoutes(router chi.Router, h *AdminHandler) {
	router.Route("/orders", func(or chi.Router) {
		or.Get("/", h.list)
		or.Get("/statistics", h.statistics)
		or.Get("/export", h.export)
		or.Get("/pending-payment", h.pendingPayment)
		or.Post("/bulk-action", h.bulkAction)
		or.Get("/{number}", h.get)
		or.Post("/{id}/approve", h.approve)
		or.Post("/{id}/reject", h.reject)
		or.Post("/{id}/mark-paid", h.markPaid)
		or.Post("/{id}/status", h.updateStatus)
	})
	router.Route("/options", func(op chi.Router) {
		op.Patch("/{code}", h.updateOptionPrice)
		op.Delete("/{code}", h.deleteOption)
	})
}
