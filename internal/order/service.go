package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/events"
	"moduscap-be/internal/logger"
	"moduscap-be/internal/metrics"
	"moduscap-be/internal/money"
	"moduscap-be/internal/pricing"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxOrderTotal is the largest amount a NUMERIC(12,2) column holds.
	maxOrderTotal = 9_999_999_999.99
)

// ProductFinder resolves active products. catalog.Service satisfies it.
type ProductFinder interface {
	GetProduct(ctx context.Context, code string) (*catalog.Product, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type QuoteResult struct {
	Order   *Order
	Pricing *pricing.ItemPrice
}

type StatusInfo struct {
	OrderNumber string    `json:"order_number"`
	Status      Status    `json:"status"`
	Total       string    `json:"total"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Service interface {
	CreateQuote(ctx context.Context, in QuoteInput) (*QuoteResult, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetStatus(ctx context.Context, number string) (*StatusInfo, error)
	AttachPaymentProof(ctx context.Context, number, proof string) (*Order, error)

	Approve(ctx context.Context, id, adminID int64) (*Order, error)
	Reject(ctx context.Context, id, adminID int64, reason string) (*Order, error)
	MarkPaid(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, to Status) (*Order, error)
	BulkAction(ctx context.Context, in BulkActionInput) (*BulkResult, error)

	List(ctx context.Context, filter ListFilter) (*OrderPage, error)
	ListPendingPayment(ctx context.Context) ([]*Order, error)
	Statistics(ctx context.Context) (*Statistics, error)
	Export(ctx context.Context, filter ListFilter) ([]byte, error)
}

type service struct {
	repo       Repository
	products   ProductFinder
	calculator *pricing.Calculator
	publisher  EventPublisher
	metrics    *metrics.Registry
	now        func() time.Time
}

func NewService(
	repo Repository,
	products ProductFinder,
	calculator *pricing.Calculator,
	publisher EventPublisher,
	reg *metrics.Registry,
) Service {
	return &service{
		repo:       repo,
		products:   products,
		calculator: calculator,
		publisher:  publisher,
		metrics:    reg,
		now:        time.Now,
	}
}

// CreateQuote prices a product configuration and stores it as a pending order.
// Unlike the price calculator, it refuses unknown or inactive option codes.
func (s *service) CreateQuote(ctx context.Context, in QuoteInput) (*QuoteResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateQuote"),
		zap.String("product_code", in.ProductCode),
	)

	if in.Quantity > pricing.MaxOrderQuantity {
		return nil, fmt.Errorf("%w: at most %d units per quote", pricing.ErrInvalidQuantity, pricing.MaxOrderQuantity)
	}

	p, err := s.products.GetProduct(ctx, in.ProductCode)
	if err != nil {
		return nil, err
	}

	qty := max(1, in.Quantity)

	validation := pricing.ValidateOptions(p, in.OptionCodes)
	if err := validation.Err(); err != nil {
		log.Info("quote refused, invalid options", zap.Strings("invalid", validation.Invalid))
		return nil, err
	}

	price, err := s.calculator.OrderItemPrice(ctx, p, in.OptionCodes, qty)
	if err != nil {
		log.Error("failed to price quote", zap.Error(err))
		return nil, err
	}
	if money.Parse(price.Total) > maxOrderTotal {
		log.Info("quote refused, total too large", zap.String("total", price.Total), zap.Int("quantity", qty))
		return nil, fmt.Errorf("%w: order total %s is too large", pricing.ErrInvalidQuantity, price.Total)
	}

	// Snapshot what the calculator priced so the stored option prices add up
	// to the options price.
	selected := make([]SelectedOption, 0, len(price.OptionDetails))
	for _, d := range price.OptionDetails {
		selected = append(selected, SelectedOption{
			ID:    d.ID,
			Code:  d.Code,
			Name:  d.Name,
			Price: d.Price,
		})
	}

	now := s.now()
	item := NewOrderItem(qty, price.BasePrice, price.OptionsPrice, selected)
	item.ProductID = p.ID
	item.ProductCode = p.Code
	item.ProductName = p.Name(catalog.LocaleFrom(ctx))
	item.CustomizationNotes = strings.TrimSpace(in.CustomizationNotes)
	item.CreatedAt = now
	item.UpdatedAt = now

	o := NewOrder(GenerateOrderNumber(now), now)
	o.ClientName = strings.TrimSpace(in.ClientName)
	o.ClientEmail = strings.TrimSpace(in.ClientEmail)
	o.ClientPhone = strings.TrimSpace(in.ClientPhone)
	o.ClientAddress = strings.TrimSpace(in.ClientAddress)
	o.ClientNotes = strings.TrimSpace(in.ClientNotes)
	o.AddItem(item)
	o.CalculateTotals()

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to store quote", zap.Error(err))
		return nil, err
	}

	s.metrics.Counter(metrics.QuotesCreated).Inc()
	s.publish(ctx, events.NewEvent(events.TypeOrderCreated, o.OrderNumber, "", string(o.status), o.Total, now))

	log.Info("quote created",
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total),
	)
	return &QuoteResult{Order: o, Pricing: price}, nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) GetStatus(ctx context.Context, number string) (*StatusInfo, error) {
	o, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return &StatusInfo{
		OrderNumber: o.OrderNumber,
		Status:      o.status,
		Total:       o.Total,
		UpdatedAt:   o.UpdatedAt,
	}, nil
}

// AttachPaymentProof records the client's payment reference on an approved order.
func (s *service) AttachPaymentProof(ctx context.Context, number, proof string) (*Order, error) {
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, ErrPaymentProofRequired
	}

	o, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.status != StatusApproved {
		return nil, ErrPaymentNotExpected
	}

	o.PaymentProof = &proof
	o.UpdatedAt = s.now()
	if err := s.repo.UpdatePaymentProof(ctx, o); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("payment proof attached",
		zap.String("layer", "service"),
		zap.String("order_number", o.OrderNumber),
	)
	return o, nil
}

func (s *service) Approve(ctx context.Context, id, adminID int64) (*Order, error) {
	return s.applyTransition(ctx, id, "Approve", func(o *Order, at time.Time) error {
		return o.Approve(adminID, at)
	})
}

func (s *service) Reject(ctx context.Context, id, adminID int64, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrRejectionReasonRequired
	}
	return s.applyTransition(ctx, id, "Reject", func(o *Order, at time.Time) error {
		return o.Reject(adminID, reason, at)
	})
}

func (s *service) MarkPaid(ctx context.Context, id int64) (*Order, error) {
	return s.applyTransition(ctx, id, "MarkPaid", func(o *Order, at time.Time) error {
		return o.MarkPaid(at)
	})
}

// UpdateStatus moves an order to any status the workflow allows from its current one.
func (s *service) UpdateStatus(ctx context.Context, id int64, to Status) (*Order, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	return s.applyTransition(ctx, id, "UpdateStatus", func(o *Order, at time.Time) error {
		if to == StatusPaid {
			return o.MarkPaid(at)
		}
		return o.Transition(to, at)
	})
}

// applyTransition loads the order, lets change mutate it, and persists the
// result only if nobody changed the status in between.
func (s *service) applyTransition(
	ctx context.Context,
	id int64,
	method string,
	change func(o *Order, at time.Time) error,
) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
		zap.Int64("order_id", id),
	)
	timer := metrics.StartTimer()

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	from := o.status
	now := s.now()
	if err := change(o, now); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.metrics.Counter(metrics.TransitionsRejected).Inc()
			log.Info("transition refused", zap.Error(err))
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, o, from); err != nil {
		log.Warn("failed to persist transition", zap.Error(err))
		return nil, err
	}

	s.metrics.Counter(metrics.TransitionsApplied).Inc()
	s.metrics.Counter(metrics.TransitionsMicros).Add(uint64(timer.Duration().Microseconds()))
	s.publish(ctx, events.NewEvent(events.TypeOrderStatusChanged, o.OrderNumber, string(from), string(o.status), o.Total, now))

	log.Info("order status changed",
		zap.String("from", string(from)),
		zap.String("to", string(o.status)),
	)
	return o, nil
}

var bulkRejectReasons = map[string]string{
	"fr": "Commande rejetée lors d'un traitement groupé",
	"en": "Order rejected during bulk processing",
}

// bulkRejectReason is the reason recorded when a bulk rejection gives none.
func bulkRejectReason(locale string) string {
	if reason, ok := bulkRejectReasons[locale]; ok {
		return reason
	}
	if reason, ok := bulkRejectReasons[catalog.DefaultLocale()]; ok {
		return reason
	}
	return bulkRejectReasons["en"]
}

// BulkAction applies the same action to several orders. A failing order does
// not stop the others; its error is reported in the result.
func (s *service) BulkAction(ctx context.Context, in BulkActionInput) (*BulkResult, error) {
	var apply func(id int64) error
	switch in.Action {
	case BulkApprove:
		apply = func(id int64) error {
			_, err := s.Approve(ctx, id, in.AdminID)
			return err
		}
	case BulkReject:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			reason = bulkRejectReason(catalog.LocaleFrom(ctx))
		}
		apply = func(id int64) error {
			_, err := s.Reject(ctx, id, in.AdminID, reason)
			return err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBulkAction, in.Action)
	}

	res := &BulkResult{Failed: make(map[int64]string)}
	for _, id := range in.OrderIDs {
		if err := apply(id); err != nil {
			res.Failed[id] = err.Error()
			continue
		}
		res.Processed++
	}
	return res, nil
}

func normalizePage(filter ListFilter) ListFilter {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

func (s *service) List(ctx context.Context, filter ListFilter) (*OrderPage, error) {
	filter = normalizePage(filter)

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders: orders,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *service) ListPendingPayment(ctx context.Context) ([]*Order, error) {
	return s.repo.FindPendingPayment(ctx)
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

// Export renders every order matching filter, without paging, as an XLSX workbook.
func (s *service) Export(ctx context.Context, filter ListFilter) ([]byte, error) {
	filter.Limit, filter.Offset = 0, 0

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(orders)
}

func (s *service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.metrics.Counter(metrics.EventsPublishFailed).Inc()
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("type", e.Type),
			zap.String("order_number", e.OrderNumber),
			zap.Error(err),
		)
	}
}
