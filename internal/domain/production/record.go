// Package production holds the MTR03 egg-production domain types shared by the
// parser, interval, export and service packages.
package production

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the dd/mm/yyyy layout used for every date the report and the
// exports show.
const DateLayout = "02/01/2006"

// Record is one parsed report line.
type Record struct {
	Date  time.Time
	Good  decimal.NullDecimal // Invalid when the line carried fewer than 3 numbers
	Total decimal.NullDecimal
	Line  string // Source line, kept for diagnostics
}

// HasCounts reports whether both counts were extracted.
func (r Record) HasCounts() bool {
	return r.Good.Valid && r.Total.Valid
}

// Interval is a closed date range [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the interval, both ends included.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Days returns the number of calendar days covered, both ends included.
func (iv Interval) Days() int {
	if iv.End.Before(iv.Start) {
		return 0
	}
	return int(iv.End.Sub(iv.Start).Hours()/24) + 1
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s - %s", iv.Start.Format(DateLayout), iv.End.Format(DateLayout))
}

// Result is the aggregate of one interval.
type Result struct {
	Interval
	Total decimal.Decimal
	Good  decimal.Decimal
}

// ParseDate parses a dd/mm/yyyy date. Day and month may be one or two digits.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2/1/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
