package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is the JSON payload published for order lifecycle changes.
type Event struct {
	ID          string    `json:"event_id"`
	Type        string    `json:"type"`
	OrderNumber string    `json:"order_number"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status"`
	Total       string    `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewEvent(eventType, orderNumber, from, to, total string, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		OrderNumber: orderNumber,
		FromStatus:  from,
		ToStatus:    to,
		Total:       total,
		OccurredAt:  at.UTC(),
	}
}
