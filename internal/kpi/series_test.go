package kpi

import (
	"reflect"
	"testing"
	"time"

	"github.com/covera-io/covera/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func expectedRow(d, value int) domain.KPIExpected {
	return domain.KPIExpected{ContractID: 1, KPIType: domain.KPIRepairs, Date: day(d), Value: value}
}

func actualRow(d, value int) domain.KPIActual {
	return domain.KPIActual{ContractID: 1, KPIType: domain.KPIRepairs, Date: day(d), Value: value}
}

func TestBuildSeriesMergesDateUnion(t *testing.T) {
	expected := []domain.KPIExpected{expectedRow(1, 5), expectedRow(3, 5)}
	actual := []domain.KPIActual{actualRow(2, 4), actualRow(3, 5)}

	series := BuildSeries(expected, actual)

	// Series length equals the size of the union of dates
	if len(series) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(series))
	}

	// Ascending date order
	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			t.Errorf("Series not in ascending date order at index %d", i)
		}
	}

	// Absent sides default to zero
	if series[0].Expected != 5 || series[0].Actual != 0 {
		t.Errorf("Day 1: expected (5, 0), got (%d, %d)", series[0].Expected, series[0].Actual)
	}
	if series[1].Expected != 0 || series[1].Actual != 4 {
		t.Errorf("Day 2: expected (0, 4), got (%d, %d)", series[1].Expected, series[1].Actual)
	}
}

func TestBuildSeriesCumulativeSums(t *testing.T) {
	expected := []domain.KPIExpected{expectedRow(1, 5), expectedRow(2, 5), expectedRow(3, 5)}
	actual := []domain.KPIActual{actualRow(1, 4), actualRow(2, 6), actualRow(3, 5)}

	series := BuildSeries(expected, actual)

	wantExpected := []int{5, 10, 15}
	wantActual := []int{4, 10, 15}
	for i, point := range series {
		if point.ExpectedCumulative != wantExpected[i] {
			t.Errorf("Point %d: expected cumulative %d, got %d", i, wantExpected[i], point.ExpectedCumulative)
		}
		if point.ActualCumulative != wantActual[i] {
			t.Errorf("Point %d: actual cumulative %d, got %d", i, wantActual[i], point.ActualCumulative)
		}
	}

	// Cumulative sums never decrease for non-negative values
	for i := 1; i < len(series); i++ {
		if series[i].ExpectedCumulative < series[i-1].ExpectedCumulative ||
			series[i].ActualCumulative < series[i-1].ActualCumulative {
			t.Errorf("Cumulative sums decreased at index %d", i)
		}
	}
}

func TestBuildSeriesDeltaAndAlerts(t *testing.T) {
	tests := []struct {
		name      string
		expected  int
		actual    int
		wantDelta float64
		wantLevel domain.AlertLevel
		wantSpike bool
	}{
		{
			name:      "both zero",
			expected:  0,
			actual:    0,
			wantDelta: 0.0,
			wantLevel: domain.AlertGreen,
			wantSpike: false,
		},
		{
			name:      "unplanned activity",
			expected:  0,
			actual:    3,
			wantDelta: 100.0,
			wantLevel: domain.AlertRed,
			wantSpike: false, // spike requires a positive expectation
		},
		{
			name:      "exact match",
			expected:  5,
			actual:    5,
			wantDelta: 0.0,
			wantLevel: domain.AlertGreen,
			wantSpike: false,
		},
		{
			name:      "green boundary",
			expected:  100,
			actual:    105,
			wantDelta: 5.0,
			wantLevel: domain.AlertGreen,
			wantSpike: false,
		},
		{
			// Tier classification reads the rounded delta, so a hairline
			// overshoot of the boundary still lands in the lower tier
			name:      "hairline over green boundary rounds down",
			expected:  100000,
			actual:    105001,
			wantDelta: 5.0,
			wantLevel: domain.AlertGreen,
			wantSpike: false,
		},
		{
			name:      "orange band",
			expected:  100,
			actual:    92,
			wantDelta: -8.0,
			wantLevel: domain.AlertOrange,
			wantSpike: false,
		},
		{
			name:      "orange boundary",
			expected:  100,
			actual:    110,
			wantDelta: 10.0,
			wantLevel: domain.AlertOrange,
			wantSpike: false,
		},
		{
			name:      "red with spike",
			expected:  5,
			actual:    8,
			wantDelta: 60.0,
			wantLevel: domain.AlertRed,
			wantSpike: true, // 8 > 5 * 1.5 = 7.5
		},
		{
			name:      "red under spike threshold",
			expected:  10,
			actual:    14,
			wantDelta: 40.0,
			wantLevel: domain.AlertRed,
			wantSpike: false, // 14 < 15
		},
		{
			name:      "at exactly 150 percent is not a spike",
			expected:  4,
			actual:    6,
			wantDelta: 50.0,
			wantLevel: domain.AlertRed,
			wantSpike: false, // spike requires strictly greater
		},
		{
			name:      "rounded to two decimals",
			expected:  3,
			actual:    4,
			wantDelta: 33.33,
			wantLevel: domain.AlertRed,
			wantSpike: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := BuildSeries(
				[]domain.KPIExpected{expectedRow(1, tt.expected)},
				[]domain.KPIActual{actualRow(1, tt.actual)},
			)
			if len(series) != 1 {
				t.Fatalf("Expected 1 point, got %d", len(series))
			}

			point := series[0]
			if point.DeltaPercent != tt.wantDelta {
				t.Errorf("DeltaPercent = %v, want %v", point.DeltaPercent, tt.wantDelta)
			}
			if point.AlertLevel != tt.wantLevel {
				t.Errorf("AlertLevel = %v, want %v", point.AlertLevel, tt.wantLevel)
			}
			if point.Spike != tt.wantSpike {
				t.Errorf("Spike = %v, want %v", point.Spike, tt.wantSpike)
			}
		})
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{12.345, 12.35},
		{-12.345, -12.35},
		{12.344, 12.34},
		{0.005, 0.01},
		{-0.005, -0.01},
		{100.0, 100.0},
	}

	for _, tt := range tests {
		if got := round2(tt.input); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBuildSeriesDuplicateDatesLastWins(t *testing.T) {
	// The store upserts a unique (contract, type, date) key, but the
	// builder itself resolves duplicates by taking the last row
	expected := []domain.KPIExpected{expectedRow(1, 5), expectedRow(1, 9)}
	actual := []domain.KPIActual{actualRow(1, 2)}

	series := BuildSeries(expected, actual)

	if len(series) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(series))
	}
	if series[0].Expected != 9 {
		t.Errorf("Expected last duplicate to win (9), got %d", series[0].Expected)
	}
}

func TestBuildSeriesEmptyInputs(t *testing.T) {
	series := BuildSeries(nil, nil)
	if len(series) != 0 {
		t.Errorf("Expected empty series, got %d points", len(series))
	}
}

func TestBuildSeriesIsDeterministic(t *testing.T) {
	expected := []domain.KPIExpected{expectedRow(3, 5), expectedRow(1, 2), expectedRow(2, 7)}
	actual := []domain.KPIActual{actualRow(2, 8), actualRow(4, 1)}

	first := BuildSeries(expected, actual)
	for i := 0; i < 3; i++ {
		if again := BuildSeries(expected, actual); !reflect.DeepEqual(first, again) {
			t.Fatal("BuildSeries is not deterministic")
		}
	}
}
