package kpi

import (
	"context"
	"testing"

	"github.com/covera-io/covera/internal/domain"
)

// stubKPIStore serves in-memory rows keyed by KPI type
type stubKPIStore struct {
	expected map[domain.KPIType][]domain.KPIExpected
	actual   map[domain.KPIType][]domain.KPIActual
}

func (s *stubKPIStore) ExpectedRows(_ context.Context, _ int64, kpiType domain.KPIType) ([]domain.KPIExpected, error) {
	return s.expected[kpiType], nil
}

func (s *stubKPIStore) ActualRows(_ context.Context, _ int64, kpiType domain.KPIType) ([]domain.KPIActual, error) {
	return s.actual[kpiType], nil
}

func TestFilterAlertsKeepsOnlyNotable(t *testing.T) {
	series := []domain.SeriesPoint{
		{Date: day(1), DeltaPercent: 0, AlertLevel: domain.AlertGreen},
		{Date: day(2), DeltaPercent: 8, AlertLevel: domain.AlertOrange},
		{Date: day(3), DeltaPercent: 60, AlertLevel: domain.AlertRed, Spike: true},
		{Date: day(4), DeltaPercent: 2, AlertLevel: domain.AlertGreen, Spike: true},
	}

	alerts := FilterAlerts(domain.KPIRepairs, series)

	if len(alerts) != 3 {
		t.Fatalf("Expected 3 alerts, got %d", len(alerts))
	}

	// Date order preserved; the green spike on day 4 is included
	wantDays := []int{2, 3, 4}
	for i, alert := range alerts {
		if alert.Date.Day() != wantDays[i] {
			t.Errorf("Alert %d: expected day %d, got %d", i, wantDays[i], alert.Date.Day())
		}
		if alert.KPIType != domain.KPIRepairs {
			t.Errorf("Alert %d: expected kpi_type repairs, got %s", i, alert.KPIType)
		}
	}
}

func TestFilterAlertsAllGreen(t *testing.T) {
	series := []domain.SeriesPoint{
		{Date: day(1), AlertLevel: domain.AlertGreen},
		{Date: day(2), AlertLevel: domain.AlertGreen},
	}

	if alerts := FilterAlerts(domain.KPIRefunds, series); len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %d", len(alerts))
	}
}

func TestMonitorContractSeriesCoversAllTypes(t *testing.T) {
	store := &stubKPIStore{
		expected: map[domain.KPIType][]domain.KPIExpected{
			domain.KPIRepairs: {expectedRow(1, 5)},
		},
		actual: map[domain.KPIType][]domain.KPIActual{
			domain.KPIRepairs: {actualRow(1, 5)},
		},
	}
	monitor := NewMonitor(store)

	results, err := monitor.ContractSeries(context.Background(), 1)
	if err != nil {
		t.Fatalf("ContractSeries() failed: %v", err)
	}

	// Every enumerated type appears, even when it has no rows
	if len(results) != len(domain.KPITypes()) {
		t.Fatalf("Expected %d typed series, got %d", len(domain.KPITypes()), len(results))
	}

	// Fixed lexicographic type order
	for i, kpiType := range domain.KPITypes() {
		if results[i].KPIType != kpiType {
			t.Errorf("Position %d: expected %s, got %s", i, kpiType, results[i].KPIType)
		}
	}

	for _, typed := range results {
		if typed.KPIType == domain.KPIRepairs {
			if len(typed.Series) != 1 {
				t.Errorf("Expected 1 repairs point, got %d", len(typed.Series))
			}
		} else if len(typed.Series) != 0 {
			t.Errorf("Expected empty series for %s, got %d points", typed.KPIType, len(typed.Series))
		}
	}
}

func TestMonitorContractAlertsGroupsByTypeThenDate(t *testing.T) {
	store := &stubKPIStore{
		expected: map[domain.KPIType][]domain.KPIExpected{
			domain.KPIRepairs: {
				{KPIType: domain.KPIRepairs, Date: day(1), Value: 5},
				{KPIType: domain.KPIRepairs, Date: day(2), Value: 5},
			},
			domain.KPIRefunds: {
				{KPIType: domain.KPIRefunds, Date: day(1), Value: 2},
			},
		},
		actual: map[domain.KPIType][]domain.KPIActual{
			domain.KPIRepairs: {
				{KPIType: domain.KPIRepairs, Date: day(1), Value: 9}, // red + spike
				{KPIType: domain.KPIRepairs, Date: day(2), Value: 5}, // green
			},
			domain.KPIRefunds: {
				{KPIType: domain.KPIRefunds, Date: day(1), Value: 3}, // red + spike
			},
		},
	}
	monitor := NewMonitor(store)

	alerts, err := monitor.ContractAlerts(context.Background(), 1)
	if err != nil {
		t.Fatalf("ContractAlerts() failed: %v", err)
	}

	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}

	// refunds sorts before repairs lexicographically
	if alerts[0].KPIType != domain.KPIRefunds {
		t.Errorf("Expected refunds alert first, got %s", alerts[0].KPIType)
	}
	if alerts[1].KPIType != domain.KPIRepairs {
		t.Errorf("Expected repairs alert second, got %s", alerts[1].KPIType)
	}
	if !alerts[1].Spike {
		t.Error("Expected repairs day 1 to be flagged as a spike")
	}
}

func TestMonitorNoRowsYieldsNoAlerts(t *testing.T) {
	monitor := NewMonitor(&stubKPIStore{})

	alerts, err := monitor.ContractAlerts(context.Background(), 1)
	if err != nil {
		t.Fatalf("ContractAlerts() failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %d", len(alerts))
	}
}
