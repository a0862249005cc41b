package pricing

import "moduscap-be/internal/catalog"

type OptionDetail struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Group string `json:"group"`
}

// ProductPrice is the per-unit price of a configured product.
type ProductPrice struct {
	BasePrice     string         `json:"base_price"`
	OptionsPrice  string         `json:"options_price"`
	TotalPrice    string         `json:"total_price"`
	OptionDetails []OptionDetail `json:"option_details"`
}

// ItemPrice is a ProductPrice scaled by a quantity.
type ItemPrice struct {
	BasePrice     string         `json:"base_price"`
	OptionsPrice  string         `json:"options_price"`
	UnitPrice     string         `json:"unit_price"`
	Quantity      int            `json:"quantity"`
	Subtotal      string         `json:"subtotal"`
	Total         string         `json:"total"`
	OptionDetails []OptionDetail `json:"option_details"`
}

type VolumeTier struct {
	Quantity           int     `json:"quantity"`
	UnitPrice          string  `json:"unit_price"`
	Subtotal           string  `json:"subtotal"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     string  `json:"discount_amount"`
	FinalTotal         string  `json:"final_total"`
	Savings            string  `json:"savings"`
}

type ValidationResult struct {
	Valid   []*catalog.ProductOption
	Invalid []string
	IsValid bool
}

// Err returns an *InvalidOptionsError when some codes were rejected.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &InvalidOptionsError{Codes: r.Invalid}
}

type AmountLine struct {
	Amount string `json:"amount"`
	Label  string `json:"label"`
}

type BreakdownOption struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Price string `json:"price"`
	Code  string `json:"code"`
}

type PricingBreakdown struct {
	ProductName  string            `json:"product_name"`
	ProductCode  string            `json:"product_code"`
	Quantity     int               `json:"quantity"`
	BasePrice    AmountLine        `json:"base_price"`
	Options      []BreakdownOption `json:"options"`
	OptionsPrice AmountLine        `json:"options_price"`
	Subtotal     AmountLine        `json:"subtotal"`
	Total        AmountLine        `json:"total"`
}
