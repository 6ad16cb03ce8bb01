// Package quantity parses and formats egg counts written in the Brazilian
// numeric convention ("1.234,56": dot groups thousands, comma marks decimals).
// Arithmetic stays in shopspring/decimal; display formatting reuses go-money's
// Formatter with the count carried in minor units.
package quantity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Separators used by MTR03 reports and by every formatted count.
const (
	ThousandSep = "."
	DecimalSep  = ","
)

// ErrEmpty is returned when a number holds no digits after normalisation.
var ErrEmpty = errors.New("empty number")

// Normalize rewrites a Brazilian number into the dotted decimal form
// ("1.234,56" -> "1234.56").
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ThousandSep, "")
	return strings.ReplaceAll(s, DecimalSep, ".")
}

// ParseBR parses a Brazilian formatted number.
func ParseBR(s string) (decimal.Decimal, error) {
	n := Normalize(s)
	if n == "" {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrEmpty)
	}

	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

// FormatBR renders d with the given number of decimal places
// (FormatBR(1234.5, 2) == "1.234,50"). Halves round to even.
func FormatBR(d decimal.Decimal, places int) string {
	if places < 0 {
		places = 0
	}
	minor := d.Shift(int32(places)).RoundBank(0).IntPart()
	return money.NewFormatter(places, DecimalSep, ThousandSep, "", "1").Format(minor)
}

// Format renders d as a whole count ("1.234.567").
func Format(d decimal.Decimal) string {
	return FormatBR(d, 0)
}

// Sum adds the valid values, treating null ones as zero.
func Sum(values ...decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total
}
