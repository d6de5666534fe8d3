package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covera-io/covera/internal/domain"
)

// CatalogRepository stores clients and products
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// CreateClient inserts a client and assigns its id
func (r *CatalogRepository) CreateClient(ctx context.Context, client *domain.Client) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name) VALUES ($1) RETURNING id`,
		client.Name,
	).Scan(&client.ID)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetClient retrieves a client by id
func (r *CatalogRepository) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select client: %w", err)
	}
	return &c, nil
}

// AnyClient reports whether at least one client exists, used by the
// seeder to keep seeding idempotent
func (r *CatalogRepository) AnyClient(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check clients: %w", err)
	}
	return exists, nil
}

// CreateProduct inserts a product and assigns its id
func (r *CatalogRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name) VALUES ($1) RETURNING id`,
		product.Name,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by id
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}
