// Package money handles the two-decimal string amounts used for prices.
//
// Arithmetic is done on float64 and only the final value is rounded, half
// away from zero, when it is formatted back into a string.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const Zero = "0.00"

var (
	ErrInvalidPrice   = errors.New("invalid price")
	ErrPricePrecision = errors.New("price must have at most 2 decimal places")
)

// maxPrice bounds admin-entered prices.
var maxPrice = decimal.NewFromInt(1_000_000_000)

// Format renders f with exactly two fraction digits.
func Format(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

// Parse reads a stored amount. Empty or malformed input reads as 0.
func Parse(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ParsePrice validates a price entered by an operator and returns it
// normalised to two fraction digits.
func ParsePrice(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", ErrInvalidPrice
	}
	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return "", ErrInvalidPrice
	}
	if d.Exponent() < -2 {
		return "", ErrPricePrecision
	}

	return d.StringFixed(2), nil
}
