package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Price limits of dishes.price, decimal(8,2)
const (
	PriceMaxDigits     = 8
	PriceDecimalPlaces = 2
)

var (
	ErrPriceMalformed     = errors.New("price must be a decimal number")
	ErrPriceNegative      = errors.New("price must not be negative")
	ErrPriceTooManyPlaces = errors.New("price must have at most 2 decimal places")
	ErrPriceTooManyDigits = errors.New("price must have at most 8 digits in total")
)

var priceUpperBound = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)

// ParsePrice parses a price without rounding. Values the column cannot hold exactly are
// rejected rather than coerced.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "eE") {
		return decimal.Zero, ErrPriceMalformed
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrPriceMalformed
	}
	if d.IsNegative() {
		return decimal.Zero, ErrPriceNegative
	}
	if d.Exponent() < -PriceDecimalPlaces {
		return decimal.Zero, ErrPriceTooManyPlaces
	}
	if d.GreaterThanOrEqual(priceUpperBound) {
		return decimal.Zero, ErrPriceTooManyDigits
	}
	return d, nil
}
