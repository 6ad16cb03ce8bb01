// Package interval sums production records over closed date ranges and
// generates runs of contiguous ranges.
package interval

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
)

// New returns the interval [start, end].
func New(start, end time.Time) production.Interval {
	return production.Interval{Start: start, End: end}
}

// Parse builds an interval from two dd/mm/yyyy dates.
func Parse(start, end string) (production.Interval, error) {
	s, err := production.ParseDate(start)
	if err != nil {
		return production.Interval{}, fmt.Errorf("start: %w", err)
	}
	e, err := production.ParseDate(end)
	if err != nil {
		return production.Interval{}, fmt.Errorf("end: %w", err)
	}
	return New(s, e), nil
}

// Generate returns count consecutive intervals of days days each, the first
// one starting on start. Interval i covers
// [start + i*days, start + i*days + days - 1].
func Generate(start time.Time, count, days int) []production.Interval {
	if count <= 0 || days <= 0 {
		return nil
	}

	out := make([]production.Interval, count)
	for i := 0; i < count; i++ {
		from := start.AddDate(0, 0, i*days)
		out[i] = New(from, from.AddDate(0, 0, days-1))
	}
	return out
}

// Aggregate sums the total and good counts of records dated within iv.
// Records without counts add nothing.
func Aggregate(records []production.Record, iv production.Interval) (total, good decimal.Decimal) {
	total, good = decimal.Zero, decimal.Zero
	for _, r := range records {
		if !iv.Contains(r.Date) {
			continue
		}
		if r.Total.Valid {
			total = total.Add(r.Total.Decimal)
		}
		if r.Good.Valid {
			good = good.Add(r.Good.Decimal)
		}
	}
	return total, good
}

// AggregateAll aggregates every interval, in order.
func AggregateAll(records []production.Record, intervals []production.Interval) []production.Result {
	results := make([]production.Result, 0, len(intervals))
	for _, iv := range intervals {
		total, good := Aggregate(records, iv)
		results = append(results, production.Result{
			Interval: iv,
			Total:    total,
			Good:     good,
		})
	}
	return results
}

// Totals sums the results.
func Totals(results []production.Result) (total, good decimal.Decimal) {
	total, good = decimal.Zero, decimal.Zero
	for _, r := range results {
		total = total.Add(r.Total)
		good = good.Add(r.Good)
	}
	return total, good
}
