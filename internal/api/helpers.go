package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/logger"
	"moduscap-be/internal/money"
	"moduscap-be/internal/order"
	"moduscap-be/internal/payment"
	"moduscap-be/internal/pricing"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnsupportedLocale = errors.New("unsupported locale")
)

type ErrorResponse struct {
	Success        bool     `json:"success"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	InvalidOptions []string `json:"invalid_options,omitempty"`
}

// ToHTTPResponse maps a domain error to a status, a stable code and a message.
func ToHTTPResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found", catalog.ErrProductNotFound.Error()
	case errors.Is(err, catalog.ErrOptionNotFound):
		return http.StatusNotFound, "option_not_found", catalog.ErrOptionNotFound.Error()
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, "order_not_found", order.ErrOrderNotFound.Error()
	case errors.Is(err, payment.ErrPaymentInfoUnavailable):
		return http.StatusNotFound, "payment_info_unavailable", payment.ErrPaymentInfoUnavailable.Error()
	case errors.Is(err, ErrUnsupportedLocale):
		return http.StatusNotFound, "unsupported_locale", ErrUnsupportedLocale.Error()

	case errors.Is(err, pricing.ErrInvalidOptions):
		return http.StatusBadRequest, "invalid_options", err.Error()
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity", err.Error()
	case errors.Is(err, money.ErrInvalidPrice), errors.Is(err, money.ErrPricePrecision):
		return http.StatusBadRequest, "invalid_price", err.Error()
	case errors.Is(err, order.ErrRejectionReasonRequired):
		return http.StatusBadRequest, "rejection_reason_required", err.Error()
	case errors.Is(err, order.ErrPaymentProofRequired):
		return http.StatusBadRequest, "payment_proof_required", err.Error()
	case errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status", err.Error()
	case errors.Is(err, order.ErrUnknownBulkAction):
		return http.StatusBadRequest, "unknown_bulk_action", err.Error()
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", err.Error()

	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", err.Error()
	case errors.Is(err, order.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update", err.Error()
	case errors.Is(err, order.ErrPaymentNotExpected):
		return http.StatusConflict, "payment_not_expected", err.Error()
	case errors.Is(err, catalog.ErrOptionInUse):
		return http.StatusConflict, "option_in_use", err.Error()

	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := ToHTTPResponse(err)

	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("path", r.URL.Path),
		zap.String("code", code),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Warn("request rejected", zap.Error(err))
	}

	resp := ErrorResponse{Code: code, Message: msg}
	var invalid *pricing.InvalidOptionsError
	if errors.As(err, &invalid) {
		resp.InvalidOptions = invalid.Codes
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteSuccess writes payload with "success": true added.
func WriteSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any, 1)
	}
	payload["success"] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw)
	}
	return id, nil
}
