package api

import (
	"time"

	"moduscap-be/internal/order"
)

type OrderItemResponse struct {
	ID                 int64                  `json:"id"`
	ProductCode        string                 `json:"product_code"`
	ProductName        string                 `json:"product_name"`
	Quantity           int                    `json:"quantity"`
	UnitPrice          string                 `json:"unit_price"`
	OptionsPrice       string                 `json:"options_price"`
	TotalPrice         string                 `json:"total_price"`
	SelectedOptions    []order.SelectedOption `json:"selected_options"`
	CustomizationNotes string                 `json:"customization_notes,omitempty"`
}

type ClientResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type OrderResponse struct {
	ID                  int64               `json:"id"`
	OrderNumber         string              `json:"order_number"`
	Status              order.Status        `json:"status"`
	AllowedNextStatuses []order.Status      `json:"allowed_next_statuses"`
	Subtotal            string              `json:"subtotal"`
	Total               string              `json:"total"`
	RejectionReason     *string             `json:"rejection_reason,omitempty"`
	PaymentProof        *string             `json:"payment_proof,omitempty"`
	ApprovedBy          *int64              `json:"approved_by,omitempty"`
	Client              ClientResponse      `json:"client"`
	Items               []OrderItemResponse `json:"items,omitempty"`
	CreatedAt           string              `json:"created_at"`
	UpdatedAt           string              `json:"updated_at"`
	ApprovedAt          *string             `json:"approved_at,omitempty"`
	PaidAt              *string             `json:"paid_at,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func MapOrderItem(it *order.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:                 it.ID,
		ProductCode:        it.ProductCode,
		ProductName:        it.ProductName,
		Quantity:           it.Quantity(),
		UnitPrice:          it.UnitPrice(),
		OptionsPrice:       it.OptionsPrice(),
		TotalPrice:         it.TotalPrice(),
		SelectedOptions:    it.SelectedOptions(),
		CustomizationNotes: it.CustomizationNotes,
	}
}

func MapOrder(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, MapOrderItem(it))
	}

	return OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		Status:              o.Status(),
		AllowedNextStatuses: order.AllowedNextStatuses(o.Status()),
		Subtotal:            o.Subtotal,
		Total:               o.Total,
		RejectionReason:     o.RejectionReason,
		PaymentProof:        o.PaymentProof,
		ApprovedBy:          o.ApprovedBy,
		Client: ClientResponse{
			Name:    o.ClientName,
			Email:   o.ClientEmail,
			Phone:   o.ClientPhone,
			Address: o.ClientAddress,
			Notes:   o.ClientNotes,
		},
		Items:      items,
		CreatedAt:  formatTime(o.CreatedAt),
		UpdatedAt:  formatTime(o.UpdatedAt),
		ApprovedAt: formatTimePtr(o.ApprovedAt),
		PaidAt:     formatTimePtr(o.PaidAt),
	}
}

func MapOrders(orders []*order.Order) []OrderResponse {
	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, MapOrder(o))
	}
	return res
}
