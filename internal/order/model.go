package order

import (
	"strings"
	"time"

	"moduscap-be/internal/money"
)

type Order struct {
	ID              int64
	OrderNumber     string
	status          Status
	Subtotal        string
	Total           string
	RejectionReason *string
	PaymentProof    *string
	ApprovedBy      *int64

	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ClientAddress string
	ClientNotes   string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	PaidAt     *time.Time

	Items []*OrderItem
}

// NewOrder starts a pending order.
func NewOrder(number string, now time.Time) *Order {
	return &Order{
		OrderNumber: number,
		status:      StatusPending,
		Subtotal:    money.Zero,
		Total:       money.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (o *Order) Status() Status {
	return o.status
}

// Transition moves the order to status to if the workflow allows it.
// Entering approved or paid stamps the matching timestamp the first time.
func (o *Order) Transition(to Status, at time.Time) error {
	if !CanTransition(o.status, to) {
		return &TransitionError{From: o.status, To: to}
	}

	o.status = to
	o.UpdatedAt = at

	switch to {
	case StatusApproved:
		if o.ApprovedAt == nil {
			o.ApprovedAt = &at
		}
		o.RejectionReason = nil
	case StatusPaid:
		if o.PaidAt == nil {
			o.PaidAt = &at
		}
	}
	return nil
}

func (o *Order) Approve(adminID int64, at time.Time) error {
	if err := o.Transition(StatusApproved, at); err != nil {
		return err
	}
	o.ApprovedBy = &adminID
	return nil
}

func (o *Order) Reject(adminID int64, reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReasonRequired
	}
	if err := o.Transition(StatusRejected, at); err != nil {
		return err
	}
	o.RejectionReason = &reason
	o.ApprovedBy = &adminID
	return nil
}

// MarkPaid requires a payment proof to have been attached first.
func (o *Order) MarkPaid(at time.Time) error {
	if o.PaymentProof == nil || *o.PaymentProof == "" {
		return ErrPaymentProofRequired
	}
	return o.Transition(StatusPaid, at)
}

func (o *Order) CanBeApproved() bool {
	return CanTransition(o.status, StatusApproved)
}

func (o *Order) CanBeRejected() bool {
	return CanTransition(o.status, StatusRejected)
}

func (o *Order) CanSendPaymentReminder() bool {
	return o.status == StatusPending || o.status == StatusApproved
}

func (o *Order) AddItem(item *OrderItem) {
	o.Items = append(o.Items, item)
}

// CalculateTotals sets subtotal and total to the sum of the item totals.
func (o *Order) CalculateTotals() {
	var sum float64
	for _, item := range o.Items {
		sum += money.Parse(item.TotalPrice())
	}
	o.Subtotal = money.Format(sum)
	o.Total = o.Subtotal
}

// SelectedOption is the option data captured when the item was priced.
type SelectedOption struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// OrderItem is a priced snapshot of one product configuration. Its total is
// kept equal to (unit price + options price) * quantity by every setter.
type OrderItem struct {
	ID                 int64
	OrderID            int64
	ProductID          int64
	ProductCode        string
	ProductName        string
	CustomizationNotes string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	quantity        int
	unitPrice       string
	optionsPrice    string
	totalPrice      string
	selectedOptions []SelectedOption
}

func NewOrderItem(quantity int, unitPrice, optionsPrice string, selected []SelectedOption) *OrderItem {
	item := &OrderItem{
		quantity:     quantity,
		unitPrice:    unitPrice,
		optionsPrice: optionsPrice,
	}
	item.selectedOptions = append([]SelectedOption(nil), selected...)
	item.recalculate()
	return item
}

func (i *OrderItem) Quantity() int        { return i.quantity }
func (i *OrderItem) UnitPrice() string    { return i.unitPrice }
func (i *OrderItem) OptionsPrice() string { return i.optionsPrice }
func (i *OrderItem) TotalPrice() string   { return i.totalPrice }

func (i *OrderItem) SelectedOptions() []SelectedOption {
	return append([]SelectedOption(nil), i.selectedOptions...)
}

func (i *OrderItem) SetQuantity(q int) {
	i.quantity = q
	i.recalculate()
}

func (i *OrderItem) SetUnitPrice(p string) {
	i.unitPrice = p
	i.recalculate()
}

func (i *OrderItem) SetOptionsPrice(p string) {
	i.optionsPrice = p
	i.recalculate()
}

// SetSelectedOptions replaces the snapshot and reprices the options from it.
func (i *OrderItem) SetSelectedOptions(opts []SelectedOption) {
	i.selectedOptions = append([]SelectedOption(nil), opts...)
	i.optionsPrice = i.OptionsTotalPrice()
	i.recalculate()
}

// AddOption adds opt to the snapshot, replacing an entry with the same code.
func (i *OrderItem) AddOption(opt SelectedOption) {
	replaced := false
	for k := range i.selectedOptions {
		if i.selectedOptions[k].Code == opt.Code {
			i.selectedOptions[k] = opt
			replaced = true
			break
		}
	}
	if !replaced {
		i.selectedOptions = append(i.selectedOptions, opt)
	}
	i.optionsPrice = i.OptionsTotalPrice()
	i.recalculate()
}

// RemoveOption drops the option with code and reports whether it was present.
func (i *OrderItem) RemoveOption(code string) bool {
	for k := range i.selectedOptions {
		if i.selectedOptions[k].Code == code {
			i.selectedOptions = append(i.selectedOptions[:k], i.selectedOptions[k+1:]...)
			i.optionsPrice = i.OptionsTotalPrice()
			i.recalculate()
			return true
		}
	}
	return false
}

func (i *OrderItem) HasOption(code string) bool {
	for _, o := range i.selectedOptions {
		if o.Code == code {
			return true
		}
	}
	return false
}

// OptionsTotalPrice sums the snapshot option prices.
func (i *OrderItem) OptionsTotalPrice() string {
	var sum float64
	for _, o := range i.selectedOptions {
		sum += money.Parse(o.Price)
	}
	return money.Format(sum)
}

func (i *OrderItem) recalculate() {
	total := (money.Parse(i.unitPrice) + money.Parse(i.optionsPrice)) * float64(i.quantity)
	i.totalPrice = money.Format(total)
}

type ListFilter struct {
	Status      *Status
	ClientEmail string
	Since       *time.Time
	Limit       int
	Offset      int
}

type Statistics struct {
	ByStatus       map[Status]int64 `json:"by_status"`
	TotalOrders    int64            `json:"total_orders"`
	PendingPayment int64            `json:"pending_payment"`
	Revenue        string           `json:"revenue"`
}

type QuoteInput struct {
	ProductCode        string
	OptionCodes        []string
	Quantity           int
	ClientName         string
	ClientEmail        string
	ClientPhone        string
	ClientAddress      string
	ClientNotes        string
	CustomizationNotes string
}

type BulkAction string

const (
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
)

type BulkActionInput struct {
	Action   BulkAction
	OrderIDs []int64
	AdminID  int64
	Reason   string
}

type BulkResult struct {
	Processed int              `json:"processed"`
	Failed    map[int64]string `json:"failed"`
}

type OrderPage struct {
	Orders []*Order
	Total  int64
	Limit  int
	Offset int
}
