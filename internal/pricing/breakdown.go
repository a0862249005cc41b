package pricing

import (
	"context"

	"moduscap-be/internal/catalog"
)

type breakdownLabels struct {
	base, options, subtotal, total string
}

var labelsByLocale = map[string]breakdownLabels{
	"fr": {base: "Prix de base", options: "Options", subtotal: "Sous-total", total: "Total"},
	"en": {base: "Base price", options: "Options", subtotal: "Subtotal", total: "Total"},
}

func labelsFor(locale string) breakdownLabels {
	if l, ok := labelsByLocale[locale]; ok {
		return l
	}
	return labelsByLocale["fr"]
}

// Breakdown prices the configuration and lays it out as labelled lines for display.
func (c *Calculator) Breakdown(ctx context.Context, p *catalog.Product, codes []string, quantity int) (*PricingBreakdown, error) {
	item, err := c.OrderItemPrice(ctx, p, codes, quantity)
	if err != nil {
		return nil, err
	}
	return FormatBreakdown(p, item, catalog.LocaleFrom(ctx)), nil
}

// FormatBreakdown relabels an already computed item price.
func FormatBreakdown(p *catalog.Product, item *ItemPrice, locale string) *PricingBreakdown {
	labels := labelsFor(locale)

	options := make([]BreakdownOption, 0, len(item.OptionDetails))
	for _, d := range item.OptionDetails {
		options = append(options, BreakdownOption{
			Name:  d.Name,
			Group: d.Group,
			Price: d.Price,
			Code:  d.Code,
		})
	}

	return &PricingBreakdown{
		ProductName:  p.Name(locale),
		ProductCode:  p.Code,
		Quantity:     item.Quantity,
		BasePrice:    AmountLine{Amount: item.BasePrice, Label: labels.base},
		Options:      options,
		OptionsPrice: AmountLine{Amount: item.OptionsPrice, Label: labels.options},
		Subtotal:     AmountLine{Amount: item.Subtotal, Label: labels.subtotal},
		Total:        AmountLine{Amount: item.Total, Label: labels.total},
	}
}
