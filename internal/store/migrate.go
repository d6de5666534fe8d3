package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema when it does not exist yet. Covera ships
// without a migration tool; the schema is small and append-only.
//
// kpi_expected and kpi_actual carry a unique (contract_id, kpi_type, date)
// key so the series builder never sees duplicate dates; writes upsert.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id BIGSERIAL PRIMARY KEY,
			client_id BIGINT NOT NULL REFERENCES clients(id),
			name TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			status TEXT NOT NULL,
			warranty_start_rule TEXT NOT NULL,
			warranty_duration_months INT NOT NULL,
			warranty_options TEXT[] NOT NULL,
			out_of_warranty_options TEXT[] NOT NULL,
			CHECK (start_date <= end_date)
		)`,
		`CREATE TABLE IF NOT EXISTS appendices (
			id BIGSERIAL PRIMARY KEY,
			contract_id BIGINT NOT NULL REFERENCES contracts(id),
			name TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contract_lines (
			id BIGSERIAL PRIMARY KEY,
			appendix_id BIGINT NOT NULL REFERENCES appendices(id),
			product_id BIGINT NOT NULL REFERENCES products(id),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			status TEXT NOT NULL,
			warranty_start_rule TEXT NOT NULL,
			warranty_duration_months INT NOT NULL,
			warranty_options TEXT[] NOT NULL,
			out_of_warranty_options TEXT[] NOT NULL,
			required_inputs TEXT[] NOT NULL,
			UNIQUE (appendix_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS kpi_expected (
			id BIGSERIAL PRIMARY KEY,
			contract_id BIGINT NOT NULL REFERENCES contracts(id),
			kpi_type TEXT NOT NULL,
			date DATE NOT NULL,
			expected_value INT NOT NULL,
			UNIQUE (contract_id, kpi_type, date)
		)`,
		`CREATE TABLE IF NOT EXISTS kpi_actual (
			id BIGSERIAL PRIMARY KEY,
			contract_id BIGINT NOT NULL REFERENCES contracts(id),
			kpi_type TEXT NOT NULL,
			date DATE NOT NULL,
			actual_value INT NOT NULL,
			UNIQUE (contract_id, kpi_type, date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}
