package kpi

import (
	"math"
	"sort"
	"time"

	"github.com/covera-io/covera/internal/domain"
)

// Alert thresholds on |delta_percent|
const (
	greenThreshold  = 5.0
	orangeThreshold = 10.0

	// Spike: actual exceeding 150% of a positive expected value
	spikeFactor = 1.5
)

// BuildSeries merges expected and actual rows for one (contract, kpi_type)
// pair into a continuous daily series with cumulative totals, percentage
// deviation, alert tier and spike flag.
//
// The series covers the sorted union of all dates present in either input;
// a date missing from one side contributes 0. Should duplicate dates occur
// in the input, the last row wins. The store's unique index prevents
// duplicates, but the builder does not depend on that.
// Pure function: deterministic, no side effects.
func BuildSeries(expected []domain.KPIExpected, actual []domain.KPIActual) []domain.SeriesPoint {
	expectedByDate := make(map[time.Time]int, len(expected))
	for _, row := range expected {
		expectedByDate[dayKey(row.Date)] = row.Value
	}

	actualByDate := make(map[time.Time]int, len(actual))
	for _, row := range actual {
		actualByDate[dayKey(row.Date)] = row.Value
	}

	dates := dateUnion(expectedByDate, actualByDate)

	series := make([]domain.SeriesPoint, 0, len(dates))
	expectedCumulative := 0
	actualCumulative := 0

	for _, day := range dates {
		expectedValue := expectedByDate[day]
		actualValue := actualByDate[day]
		expectedCumulative += expectedValue
		actualCumulative += actualValue

		delta := deltaPercent(expectedValue, actualValue)

		series = append(series, domain.SeriesPoint{
			Date:               day,
			Expected:           expectedValue,
			Actual:             actualValue,
			ExpectedCumulative: expectedCumulative,
			ActualCumulative:   actualCumulative,
			DeltaPercent:       delta,
			AlertLevel:         classify(delta),
			Spike:              expectedValue > 0 && float64(actualValue) > float64(expectedValue)*spikeFactor,
		})
	}

	return series
}

// deltaPercent is the deviation of actual from expected in percent,
// rounded to 2 decimal places. A zero expectation yields 0 when actual is
// also zero and 100 otherwise, so an unplanned day never divides by zero.
func deltaPercent(expected, actual int) float64 {
	if expected == 0 {
		if actual == 0 {
			return 0.0
		}
		return 100.0
	}
	return round2(float64(actual-expected) / float64(expected) * 100)
}

// classify maps |delta_percent| to an alert tier
func classify(delta float64) domain.AlertLevel {
	abs := math.Abs(delta)
	switch {
	case abs <= greenThreshold:
		return domain.AlertGreen
	case abs <= orangeThreshold:
		return domain.AlertOrange
	default:
		return domain.AlertRed
	}
}

// round2 rounds half away from zero to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayKey truncates a timestamp to its civil date in UTC so rows loaded
// with differing clock components merge onto the same day
func dayKey(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dateUnion(expected, actual map[time.Time]int) []time.Time {
	set := make(map[time.Time]bool, len(expected)+len(actual))
	for day := range expected {
		set[day] = true
	}
	for day := range actual {
		set[day] = true
	}

	dates := make([]time.Time, 0, len(set))
	for day := range set {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
