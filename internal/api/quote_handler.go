package api

import (
	"fmt"
	"net/http"
	"strings"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/order"
	"moduscap-be/internal/payment"
	"moduscap-be/internal/pricing"

	"github.com/go-chi/chi/v5"
)

type QuoteHandler struct {
	orders order.Service
	bank   *payment.BankDetails
}

// NewQuoteHandler builds the public quote endpoints. bank may be nil.
func NewQuoteHandler(orders order.Service, bank *payment.BankDetails) *QuoteHandler {
	return &QuoteHandler{orders: orders, bank: bank}
}

type quoteRequest struct {
	ProductCode string   `json:"product_code"`
	Options     []string `json:"options"`
	Quantity    int      `json:"quantity"`
	Client      struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	} `json:"client"`
	Notes              string `json:"notes"`
	CustomizationNotes string `json:"customization_notes"`
}

func (req quoteRequest) validate() error {
	if strings.TrimSpace(req.ProductCode) == "" {
		return fmt.Errorf("%w: product_code is required", ErrBadRequest)
	}
	if !strings.Contains(req.Client.Email, "@") {
		return fmt.Errorf("%w: a valid client email is required", ErrBadRequest)
	}
	if req.Quantity > pricing.MaxOrderQuantity {
		return fmt.Errorf("%w: at most %d units per quote", pricing.ErrInvalidQuantity, pricing.MaxOrderQuantity)
	}
	return nil
}

func (h *QuoteHandler) create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		WriteError(w, r, err)
		return
	}

	res, err := h.orders.CreateQuote(r.Context(), order.QuoteInput{
		ProductCode:        req.ProductCode,
		OptionCodes:        req.Options,
		Quantity:           req.Quantity,
		ClientName:         req.Client.Name,
		ClientEmail:        req.Client.Email,
		ClientPhone:        req.Client.Phone,
		ClientAddress:      req.Client.Address,
		ClientNotes:        req.Notes,
		CustomizationNotes: req.CustomizationNotes,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{
		"order_number": res.Order.OrderNumber,
		"status":       res.Order.Status(),
		"total":        res.Order.Total,
		"pricing":      res.Pricing,
	})
}

func (h *QuoteHandler) status(w http.ResponseWriter, r *http.Request) {
	info, err := h.orders.GetStatus(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"order_number": info.OrderNumber,
		"status":       info.Status,
		"total":        info.Total,
		"updated_at":   formatTime(info.UpdatedAt),
	})
}

func (h *QuoteHandler) paymentProof(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.orders.AttachPaymentProof(r.Context(), chi.URLParam(r, "number"), req.Reference)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"order_number":  o.OrderNumber,
		"status":        o.Status(),
		"payment_proof": o.PaymentProof,
	})
}

func (h *QuoteHandler) paymentInfo(w http.ResponseWriter, r *http.Request) {
	if h.bank == nil {
		WriteError(w, r, payment.ErrPaymentInfoUnavailable)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"payment_info": h.bank})
}

// paymentInstructions is only available once the quote has been approved.
func (h *QuoteHandler) paymentInstructions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.bank == nil {
		WriteError(w, r, payment.ErrPaymentInfoUnavailable)
		return
	}

	o, err := h.orders.GetByNumber(ctx, chi.URLParam(r, "number"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if o.Status() != order.StatusApproved {
		WriteError(w, r, order.ErrPaymentNotExpected)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"order_number": o.OrderNumber,
		"amount":       o.Total,
		"payment_info": h.bank,
		"instructions": h.bank.Instructions(catalog.LocaleFrom(ctx), o.OrderNumber, o.Total),
	})
}
