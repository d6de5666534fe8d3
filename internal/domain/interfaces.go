package domain

import "context"

// EntityStore supplies contract snapshots to the coverage engine
// ⭐ SSOT: 계약 스냅샷 조회 인터페이스
type EntityStore interface {
	// ContractWithAppendices loads a contract with all its appendices,
	// each with all its lines, active or not. Filtering is the engine's
	// job, not the store's. Returns ErrNotFound when absent.
	ContractWithAppendices(ctx context.Context, id int64) (*Contract, error)

	// AppendixWithLines loads an appendix with all its lines.
	// Returns ErrNotFound when absent.
	AppendixWithLines(ctx context.Context, id int64) (*Appendix, error)
}

// KPIStore supplies KPI rows to the series builder
// ⭐ SSOT: KPI 데이터 조회 인터페이스
type KPIStore interface {
	// ExpectedRows returns all expected rows for (contract, type),
	// regardless of date range, in date order
	ExpectedRows(ctx context.Context, contractID int64, kpiType KPIType) ([]KPIExpected, error)

	// ActualRows returns all actual rows for (contract, type)
	ActualRows(ctx context.Context, contractID int64, kpiType KPIType) ([]KPIActual, error)
}
