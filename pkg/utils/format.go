// Package utils provides shared utility functions.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// minPriceDecimals is the quoting convention for strikes, premiums and
// underlying prices.
const minPriceDecimals = 2

// FormatPrice formats a strike, premium or underlying price with at least two
// decimal places, keeping any extra precision it was entered with.
func FormatPrice(d decimal.Decimal) string {
	places := -d.Exponent()
	if places < minPriceDecimals {
		places = minPriceDecimals
	}
	return d.StringFixed(places)
}

// FormatQuantity formats a lot quantity without trailing zeros.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// FormatPrices joins prices with "/" the way strikes are written in notation.
func FormatPrices(values []decimal.Decimal) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatPrice(v)
	}
	return strings.Join(parts, "/")
}

// ParseDecimal parses s leniently. Anything unparseable is zero.
func ParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDecimalList splits s on "/" and parses each part leniently.
func ParseDecimalList(s string) []decimal.Decimal {
	parts := strings.Split(s, "/")
	values := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		values[i] = ParseDecimal(p)
	}
	return values
}

// RoundLots rounds a quantity to whole lots, halves away from zero.
func RoundLots(q decimal.Decimal) decimal.Decimal {
	return q.Round(0)
}
