package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/order"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	adminIDHeader = "X-Admin-ID"
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type AdminHandler struct {
	orders  order.Service
	catalog catalog.Service
}

func NewAdminHandler(orders order.Service, catalogSvc catalog.Service) *AdminHandler {
	return &AdminHandler{orders: orders, catalog: catalogSvc}
}

// adminID reads the acting administrator from the X-Admin-ID header. A missing
// or malformed header yields 0.
func adminID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.Header.Get(adminIDHeader), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// listFilter builds the order filter from ?status=&email=&days=&page=&limit=.
func listFilter(r *http.Request, now time.Time) (order.ListFilter, int, error) {
	q := r.URL.Query()

	var f order.ListFilter
	if raw := q.Get("status"); raw != "" {
		s, err := order.ParseStatus(raw)
		if err != nil {
			return f, 0, err
		}
		f.Status = &s
	}
	f.ClientEmail = strings.TrimSpace(q.Get("email"))

	if days := queryInt(r, "days", 0); days > 0 {
		since := now.AddDate(0, 0, -days)
		f.Since = &since
	}

	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	f.Limit = limit
	f.Offset = (page - 1) * limit
	return f, page, nil
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, err := listFilter(r, time.Now())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	res, err := h.orders.List(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"orders": MapOrders(res.Orders),
		"total":  res.Total,
		"page":   page,
		"limit":  res.Limit,
	})
}

func (h *AdminHandler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Statistics(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"statistics": stats})
}

func (h *AdminHandler) export(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	filter, _, err := listFilter(r, now)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	data, err := h.orders.Export(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="orders_%s.xlsx"`, now.UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *AdminHandler) pendingPayment(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListPendingPayment(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{
		"orders": MapOrders(orders),
		"count":  len(orders),
	})
}

func (h *AdminHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"order": MapOrder(o)})
}

func (h *AdminHandler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.orders.Approve(r.Context(), id, adminID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"order": MapOrder(o)})
}

func (h *AdminHandler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.orders.Reject(r.Context(), id, adminID(r), req.Reason)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"order": MapOrder(o)})
}

func (h *AdminHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.orders.MarkPaid(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"order": MapOrder(o)})
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"order": MapOrder(o)})
}

func (h *AdminHandler) bulkAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action   string  `json:"action"`
		OrderIDs []int64 `json:"order_ids"`
		Reason   string  `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if len(req.OrderIDs) == 0 {
		WriteError(w, r, fmt.Errorf("%w: order_ids is required", ErrBadRequest))
		return
	}

	res, err := h.orders.BulkAction(r.Context(), order.BulkActionInput{
		Action:   order.BulkAction(req.Action),
		OrderIDs: req.OrderIDs,
		AdminID:  adminID(r),
		Reason:   req.Reason,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"processed": res.Processed,
		"failed":    res.Failed,
	})
}

func (h *AdminHandler) updateOptionPrice(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req struct {
		Price string `json:"price"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	price, err := h.catalog.UpdateOptionPrice(r.Context(), code, req.Price)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{
		"code":  code,
		"price": price,
	})
}

func (h *AdminHandler) deleteOption(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.catalog.DeleteOption(r.Context(), code); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"code": code, "deleted": true})
}
