package kpi

import (
	"context"
	"fmt"

	"github.com/covera-io/covera/internal/domain"
)

// Monitor builds KPI series and alert reports for contracts
// ⭐ SSOT: KPI 모니터링은 이 모니터에서만
type Monitor struct {
	store domain.KPIStore
}

// NewMonitor creates a KPI monitor over a KPI store
func NewMonitor(store domain.KPIStore) *Monitor {
	return &Monitor{store: store}
}

// ContractSeries builds the full series for every KPI type of a contract,
// in the fixed lexicographic type order
func (m *Monitor) ContractSeries(ctx context.Context, contractID int64) ([]domain.TypedSeries, error) {
	results := make([]domain.TypedSeries, 0, len(domain.KPITypes()))

	for _, kpiType := range domain.KPITypes() {
		series, err := m.typeSeries(ctx, contractID, kpiType)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.TypedSeries{KPIType: kpiType, Series: series})
	}

	return results, nil
}

// ContractAlerts scans every KPI type of a contract and returns only
// non-nominal or spiking points, grouped by type then date
func (m *Monitor) ContractAlerts(ctx context.Context, contractID int64) ([]domain.AlertPoint, error) {
	alerts := []domain.AlertPoint{}

	for _, kpiType := range domain.KPITypes() {
		series, err := m.typeSeries(ctx, contractID, kpiType)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, FilterAlerts(kpiType, series)...)
	}

	return alerts, nil
}

func (m *Monitor) typeSeries(ctx context.Context, contractID int64, kpiType domain.KPIType) ([]domain.SeriesPoint, error) {
	expected, err := m.store.ExpectedRows(ctx, contractID, kpiType)
	if err != nil {
		return nil, fmt.Errorf("load expected %s rows: %w", kpiType, err)
	}

	actual, err := m.store.ActualRows(ctx, contractID, kpiType)
	if err != nil {
		return nil, fmt.Errorf("load actual %s rows: %w", kpiType, err)
	}

	return BuildSeries(expected, actual), nil
}

// FilterAlerts keeps the points of a built series that warrant attention:
// alert tier above GREEN or a spike. Date order is preserved.
func FilterAlerts(kpiType domain.KPIType, series []domain.SeriesPoint) []domain.AlertPoint {
	var alerts []domain.AlertPoint
	for _, point := range series {
		if point.AlertLevel == domain.AlertGreen && !point.Spike {
			continue
		}
		alerts = append(alerts, domain.AlertPoint{
			KPIType:      kpiType,
			Date:         point.Date,
			AlertLevel:   point.AlertLevel,
			DeltaPercent: point.DeltaPercent,
			Spike:        point.Spike,
		})
	}
	return alerts
}
