package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covera-io/covera/internal/domain"
)

// KPIRepository implements domain.KPIStore over PostgreSQL
// ⭐ SSOT: KPI 데이터 저장소는 여기서만
type KPIRepository struct {
	pool *pgxpool.Pool
}

// NewKPIRepository creates a new KPI repository
func NewKPIRepository(pool *pgxpool.Pool) *KPIRepository {
	return &KPIRepository{pool: pool}
}

// UpsertExpected writes an expected row. The unique (contract, type, date)
// key makes re-submissions overwrite instead of duplicating, so the series
// builder always sees one row per day.
func (r *KPIRepository) UpsertExpected(ctx context.Context, row *domain.KPIExpected) error {
	query := `
		INSERT INTO kpi_expected (contract_id, kpi_type, date, expected_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contract_id, kpi_type, date) DO UPDATE SET
			expected_value = EXCLUDED.expected_value
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		row.ContractID, row.KPIType, row.Date, row.Value,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("upsert kpi_expected: %w", err)
	}
	return nil
}

// UpsertActual writes an actual row, overwriting the day's previous value
func (r *KPIRepository) UpsertActual(ctx context.Context, row *domain.KPIActual) error {
	query := `
		INSERT INTO kpi_actual (contract_id, kpi_type, date, actual_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contract_id, kpi_type, date) DO UPDATE SET
			actual_value = EXCLUDED.actual_value
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		row.ContractID, row.KPIType, row.Date, row.Value,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("upsert kpi_actual: %w", err)
	}
	return nil
}

// ExpectedRows returns every expected row for (contract, type) in date order
func (r *KPIRepository) ExpectedRows(ctx context.Context, contractID int64, kpiType domain.KPIType) ([]domain.KPIExpected, error) {
	query := `
		SELECT id, contract_id, kpi_type, date, expected_value
		FROM kpi_expected
		WHERE contract_id = $1 AND kpi_type = $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, contractID, kpiType)
	if err != nil {
		return nil, fmt.Errorf("select kpi_expected: %w", err)
	}
	defer rows.Close()

	var result []domain.KPIExpected
	for rows.Next() {
		var row domain.KPIExpected
		if err := rows.Scan(&row.ID, &row.ContractID, &row.KPIType, &row.Date, &row.Value); err != nil {
			return nil, fmt.Errorf("scan kpi_expected: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ActualRows returns every actual row for (contract, type) in date order
func (r *KPIRepository) ActualRows(ctx context.Context, contractID int64, kpiType domain.KPIType) ([]domain.KPIActual, error) {
	query := `
		SELECT id, contract_id, kpi_type, date, actual_value
		FROM kpi_actual
		WHERE contract_id = $1 AND kpi_type = $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, contractID, kpiType)
	if err != nil {
		return nil, fmt.Errorf("select kpi_actual: %w", err)
	}
	defer rows.Close()

	var result []domain.KPIActual
	for rows.Next() {
		var row domain.KPIActual
		if err := rows.Scan(&row.ID, &row.ContractID, &row.KPIType, &row.Date, &row.Value); err != nil {
			return nil, fmt.Errorf("scan kpi_actual: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ActiveContractIDs returns the ids of contracts currently in active
// status, used by the scheduled alert scan
func (r *KPIRepository) ActiveContractIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM contracts WHERE status = $1 ORDER BY id ASC`, domain.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("select active contracts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan contract id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
