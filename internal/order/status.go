package order

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusPaid,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// transitions is the complete order workflow. A status with no entry, or an
// empty one, is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:   {StatusPaid, StatusRejected, StatusCancelled},
	StatusRejected:   {},
	StatusPaid:       {StatusProcessing},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// revenueStatuses are the statuses whose totals count as collected revenue.
var revenueStatuses = map[Status]bool{
	StatusPaid:       true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNextStatuses returns a copy of the statuses reachable from s.
func AllowedNextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}
