package api

import (
	"net/http"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/pricing"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog    catalog.Service
	calculator *pricing.Calculator
}

func NewProductHandler(catalogSvc catalog.Service, calculator *pricing.Calculator) *ProductHandler {
	return &ProductHandler{catalog: catalogSvc, calculator: calculator}
}

type priceRequest struct {
	Options  []string `json:"options"`
	Quantity *int     `json:"quantity"`
}

// quantity defaults to 1 when the field is absent. An explicit value is kept as sent.
func (req priceRequest) quantity() int {
	if req.Quantity == nil {
		return 1
	}
	return *req.Quantity
}

type validOptionResponse struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	locale := catalog.LocaleFrom(r.Context())

	products, err := h.catalog.ListProducts(r.Context(), catalog.ProductFilter{
		OnlyActive:   true,
		OnlyFeatured: r.URL.Query().Get("featured") == "true",
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	views := make([]catalog.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, catalog.ToProductView(p, locale))
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"products": views,
		"count":    len(views),
	})
}

// get returns the product, its options grouped for display and the price of
// its default configuration.
func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := catalog.LocaleFrom(ctx)

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	defaults := p.DefaultOptionCodes()
	breakdown, err := h.calculator.Breakdown(ctx, p, defaults, 1)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"product":         catalog.ToProductView(p, locale),
		"option_groups":   catalog.GroupOptions(p.AvailableOptions, locale),
		"default_options": defaults,
		"pricing":         breakdown,
	})
}

func (h *ProductHandler) calculatePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req priceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	item, err := h.calculator.OrderItemPrice(ctx, p, req.Options, req.quantity())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"pricing":   item,
		"breakdown": pricing.FormatBreakdown(p, item, catalog.LocaleFrom(ctx)),
	})
}

func (h *ProductHandler) validateOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := catalog.LocaleFrom(ctx)

	var req priceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	res := pricing.ValidateOptions(p, req.Options)
	valid := make([]validOptionResponse, 0, len(res.Valid))
	for _, o := range res.Valid {
		valid = append(valid, validOptionResponse{
			ID:    o.ID,
			Code:  o.Code,
			Name:  o.Name(locale),
			Price: o.Price,
		})
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"is_valid":        res.IsValid,
		"valid_options":   valid,
		"invalid_options": res.Invalid,
	})
}

func (h *ProductHandler) volumePricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req priceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "code"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	tiers, err := h.calculator.VolumePricing(ctx, p, req.Options, req.quantity())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"volume_pricing": tiers})
}
