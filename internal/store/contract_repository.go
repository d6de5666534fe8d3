package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covera-io/covera/internal/domain"
)

// ContractRepository implements domain.EntityStore over PostgreSQL
// ⭐ SSOT: 계약/부속/라인 저장소는 여기서만
type ContractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// CreateContract inserts a contract and assigns its id
func (r *ContractRepository) CreateContract(ctx context.Context, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (client_id, name, start_date, end_date, status,
			warranty_start_rule, warranty_duration_months, warranty_options, out_of_warranty_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		contract.ClientID, contract.Name, contract.StartDate, contract.EndDate, contract.Status,
		contract.WarrantyStartRule, contract.WarrantyDurationMonths,
		contract.WarrantyOptions, contract.OutOfWarrantyOptions,
	).Scan(&contract.ID)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// CreateAppendix inserts an appendix and assigns its id. Date nesting
// inside the contract is not validated here; the coverage engine enforces
// containment at decision time.
func (r *ContractRepository) CreateAppendix(ctx context.Context, appendix *domain.Appendix) error {
	query := `
		INSERT INTO appendices (contract_id, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		appendix.ContractID, appendix.Name, appendix.StartDate, appendix.EndDate, appendix.Status,
	).Scan(&appendix.ID)
	if err != nil {
		return fmt.Errorf("insert appendix: %w", err)
	}
	return nil
}

// CreateLine inserts a contract line and assigns its id. The unique
// (appendix_id, product_id) key rejects a second line for the same
// product within one appendix.
func (r *ContractRepository) CreateLine(ctx context.Context, line *domain.ContractLine) error {
	query := `
		INSERT INTO contract_lines (appendix_id, product_id, start_date, end_date, status,
			warranty_start_rule, warranty_duration_months, warranty_options,
			out_of_warranty_options, required_inputs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		line.AppendixID, line.ProductID, line.StartDate, line.EndDate, line.Status,
		line.WarrantyStartRule, line.WarrantyDurationMonths, line.WarrantyOptions,
		line.OutOfWarrantyOptions, line.RequiredInputs,
	).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("insert contract line: %w", err)
	}
	return nil
}

// GetContract retrieves a bare contract without its appendices
func (r *ContractRepository) GetContract(ctx context.Context, id int64) (*domain.Contract, error) {
	query := `
		SELECT id, client_id, name, start_date, end_date, status,
			warranty_start_rule, warranty_duration_months, warranty_options, out_of_warranty_options
		FROM contracts
		WHERE id = $1
	`

	var c domain.Contract
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ClientID, &c.Name, &c.StartDate, &c.EndDate, &c.Status,
		&c.WarrantyStartRule, &c.WarrantyDurationMonths, &c.WarrantyOptions, &c.OutOfWarrantyOptions,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select contract: %w", err)
	}
	return &c, nil
}

// ContractWithAppendices loads a contract snapshot with every appendix and
// every line, active or not; the coverage engine does its own filtering
func (r *ContractRepository) ContractWithAppendices(ctx context.Context, id int64) (*domain.Contract, error) {
	contract, err := r.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	appendices, err := r.appendicesByContract(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, appendix := range appendices {
		lines, err := r.linesByAppendix(ctx, appendix.ID)
		if err != nil {
			return nil, err
		}
		appendix.Lines = lines
	}

	contract.Appendices = appendices
	return contract, nil
}

// AppendixWithLines loads an appendix snapshot with all its lines
func (r *ContractRepository) AppendixWithLines(ctx context.Context, id int64) (*domain.Appendix, error) {
	query := `
		SELECT id, contract_id, name, start_date, end_date, status
		FROM appendices
		WHERE id = $1
	`

	var a domain.Appendix
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.ContractID, &a.Name, &a.StartDate, &a.EndDate, &a.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select appendix: %w", err)
	}

	lines, err := r.linesByAppendix(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Lines = lines

	return &a, nil
}

func (r *ContractRepository) appendicesByContract(ctx context.Context, contractID int64) ([]*domain.Appendix, error) {
	query := `
		SELECT id, contract_id, name, start_date, end_date, status
		FROM appendices
		WHERE contract_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("select appendices: %w", err)
	}
	defer rows.Close()

	var appendices []*domain.Appendix
	for rows.Next() {
		var a domain.Appendix
		if err := rows.Scan(&a.ID, &a.ContractID, &a.Name, &a.StartDate, &a.EndDate, &a.Status); err != nil {
			return nil, fmt.Errorf("scan appendix: %w", err)
		}
		appendices = append(appendices, &a)
	}
	return appendices, rows.Err()
}

func (r *ContractRepository) linesByAppendix(ctx context.Context, appendixID int64) ([]*domain.ContractLine, error) {
	query := `
		SELECT id, appendix_id, product_id, start_date, end_date, status,
			warranty_start_rule, warranty_duration_months, warranty_options,
			out_of_warranty_options, required_inputs
		FROM contract_lines
		WHERE appendix_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, appendixID)
	if err != nil {
		return nil, fmt.Errorf("select contract lines: %w", err)
	}
	defer rows.Close()

	var lines []*domain.ContractLine
	for rows.Next() {
		var l domain.ContractLine
		if err := rows.Scan(
			&l.ID, &l.AppendixID, &l.ProductID, &l.StartDate, &l.EndDate, &l.Status,
			&l.WarrantyStartRule, &l.WarrantyDurationMonths, &l.WarrantyOptions,
			&l.OutOfWarrantyOptions, &l.RequiredInputs,
		); err != nil {
			return nil, fmt.Errorf("scan contract line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}
