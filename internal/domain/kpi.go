package domain

import "time"

// KPIType identifies a tracked operational metric
type KPIType string

// Enumerated KPI types. The caller must restrict inputs to this set before
// rows reach the series builder.
const (
	KPIRepairs        KPIType = "repairs"
	KPIRefunds        KPIType = "refunds"
	KPIReplacements   KPIType = "replacements"
	KPIPartsShipments KPIType = "parts_shipments"
	KPIPaidRepairs    KPIType = "paid_repairs"
	KPIPartsSales     KPIType = "parts_sales"
)

// KPITypes returns all KPI types in lexicographic order, the fixed
// iteration order used for series and alert reporting
func KPITypes() []KPIType {
	return []KPIType{
		KPIPaidRepairs,
		KPIPartsSales,
		KPIPartsShipments,
		KPIRefunds,
		KPIRepairs,
		KPIReplacements,
	}
}

// IsValid reports whether t is one of the enumerated KPI types
func (t KPIType) IsValid() bool {
	switch t {
	case KPIRepairs, KPIRefunds, KPIReplacements,
		KPIPartsShipments, KPIPaidRepairs, KPIPartsSales:
		return true
	}
	return false
}

// KPIExpected is a planned daily count for one KPI type
type KPIExpected struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	KPIType    KPIType   `json:"kpi_type"`
	Date       time.Time `json:"date"`
	Value      int       `json:"expected_value"`
}

// KPIActual is an observed daily count for one KPI type
type KPIActual struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	KPIType    KPIType   `json:"kpi_type"`
	Date       time.Time `json:"date"`
	Value      int       `json:"actual_value"`
}

// AlertLevel classifies the deviation magnitude of a KPI day
type AlertLevel string

const (
	AlertGreen  AlertLevel = "GREEN"
	AlertOrange AlertLevel = "ORANGE"
	AlertRed    AlertLevel = "RED"
)

// SeriesPoint is one day of a merged expected/actual KPI series
type SeriesPoint struct {
	Date               time.Time  `json:"date"`
	Expected           int        `json:"expected"`
	Actual             int        `json:"actual"`
	ExpectedCumulative int        `json:"expected_cumulative"`
	ActualCumulative   int        `json:"actual_cumulative"`
	DeltaPercent       float64    `json:"delta_percent"`
	AlertLevel         AlertLevel `json:"alert_level"`
	Spike              bool       `json:"spike"`
}

// TypedSeries pairs a KPI type with its built series
type TypedSeries struct {
	KPIType KPIType       `json:"kpi_type"`
	Series  []SeriesPoint `json:"series"`
}

// AlertPoint is a non-nominal or spiking series point surfaced to callers
type AlertPoint struct {
	KPIType      KPIType    `json:"kpi_type"`
	Date         time.Time  `json:"date"`
	AlertLevel   AlertLevel `json:"alert_level"`
	DeltaPercent float64    `json:"delta_percent"`
	Spike        bool       `json:"spike"`
}
