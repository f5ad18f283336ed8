package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	valid := map[string]string{
		"0":         "0.00",
		"12":        "12.00",
		"12.5":      "12.50",
		"12.50":     "12.50",
		" 7.99 ":    "7.99",
		"999999.99": "999999.99",
	}
	for in, want := range valid {
		d, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.StringFixed(2), in)
	}

	invalid := map[string]error{
		"":           ErrPriceMalformed,
		"abc":        ErrPriceMalformed,
		"1e3":        ErrPriceMalformed,
		"-0.01":      ErrPriceNegative,
		"-5":         ErrPriceNegative,
		"1.005":      ErrPriceTooManyPlaces,
		"12.500":     ErrPriceTooManyPlaces,
		"1000000":    ErrPriceTooManyDigits,
		"1000000.00": ErrPriceTooManyDigits,
	}
	for in, want := range invalid {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, want, in)
	}
}
