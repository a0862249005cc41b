package pricing

import (
	"context"
	"fmt"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/metrics"
	"moduscap-be/internal/money"
)

// OptionFinder resolves an option by code. A nil option with a nil error
// means the code is unknown.
type OptionFinder interface {
	FindOptionByCode(ctx context.Context, code string) (*catalog.ProductOption, error)
}

// Calculator prices product configurations. Amounts are summed as float64
// and rounded once, when formatted.
type Calculator struct {
	finder       OptionFinder
	calculations *metrics.Counter
}

func NewCalculator(finder OptionFinder, reg *metrics.Registry) *Calculator {
	return &Calculator{
		finder:       finder,
		calculations: reg.Counter(metrics.PriceCalculations),
	}
}

// ProductBasePrice returns the stored base price, or "0.00" when unset.
func (c *Calculator) ProductBasePrice(p *catalog.Product) string {
	if p.BasePrice == nil {
		return money.Zero
	}
	return *p.BasePrice
}

// ProductTotalPrice adds the price of every selected option to the base price.
// Each code is looked up again; unknown and inactive options are skipped
// without error. Use ValidateOptions first to reject them instead.
func (c *Calculator) ProductTotalPrice(ctx context.Context, p *catalog.Product, codes []string) (*ProductPrice, error) {
	c.calculations.Inc()
	locale := catalog.LocaleFrom(ctx)

	base := money.Parse(c.ProductBasePrice(p))
	var options float64
	details := make([]OptionDetail, 0, len(codes))

	for _, code := range codes {
		o, err := c.finder.FindOptionByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup option %q: %w", code, err)
		}
		if o == nil || !o.IsActive {
			continue
		}

		options += money.Parse(o.Price)
		details = append(details, OptionDetail{
			ID:    o.ID,
			Code:  o.Code,
			Name:  o.Name(locale),
			Price: o.Price,
			Group: o.GroupName(locale),
		})
	}

	return &ProductPrice{
		BasePrice:     money.Format(base),
		OptionsPrice:  money.Format(options),
		TotalPrice:    money.Format(base + options),
		OptionDetails: details,
	}, nil
}

// OrderItemPrice scales the configured unit price by quantity. Quantity is
// not checked: zero or negative values give a zero or negative subtotal.
func (c *Calculator) OrderItemPrice(ctx context.Context, p *catalog.Product, codes []string, quantity int) (*ItemPrice, error) {
	unit, err := c.ProductTotalPrice(ctx, p, codes)
	if err != nil {
		return nil, err
	}

	subtotal := money.Parse(unit.TotalPrice) * float64(quantity)
	total := subtotal

	return &ItemPrice{
		BasePrice:     unit.BasePrice,
		OptionsPrice:  unit.OptionsPrice,
		UnitPrice:     unit.TotalPrice,
		Quantity:      quantity,
		Subtotal:      money.Format(subtotal),
		Total:         money.Format(total),
		OptionDetails: unit.OptionDetails,
	}, nil
}

// VolumePricing returns one row per quantity from 1 to max(10, quantity)
// with the volume discount applied. Quantities above MaxVolumeQuantity are
// refused with ErrInvalidQuantity.
func (c *Calculator) VolumePricing(ctx context.Context, p *catalog.Product, codes []string, quantity int) ([]VolumeTier, error) {
	if quantity > MaxVolumeQuantity {
		return nil, fmt.Errorf("%w: volume pricing is limited to %d units", ErrInvalidQuantity, MaxVolumeQuantity)
	}

	item, err := c.OrderItemPrice(ctx, p, codes, 1)
	if err != nil {
		return nil, err
	}
	unitPrice := money.Parse(item.UnitPrice)

	n := volumeScheduleLength(quantity)
	tiers := make([]VolumeTier, 0, n)
	for qty := 1; qty <= n; qty++ {
		subtotal := unitPrice * float64(qty)
		discount := DiscountPercentage(qty)
		discountAmount := subtotal * (discount / 100)
		finalTotal := subtotal - discountAmount

		tiers = append(tiers, VolumeTier{
			Quantity:           qty,
			UnitPrice:          money.Format(unitPrice),
			Subtotal:           money.Format(subtotal),
			DiscountPercentage: discount,
			DiscountAmount:     money.Format(discountAmount),
			FinalTotal:         money.Format(finalTotal),
			Savings:            money.Format(subtotal - finalTotal),
		})
	}
	return tiers, nil
}
