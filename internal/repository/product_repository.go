package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description *string
	Category    string
	Price       decimal.Decimal
	Thumbnail   *string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows catalog listings. Zero values match everything.
type ProductFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

type pgProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepository{pool: pool}
}

const productColumns = `id, name, description, category, price, thumbnail, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.Thumbnail, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepository) Create(ctx context.Context, product *Product) error {
	query := `
		INSERT INTO products (name, description, category, price, thumbnail, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		product.Name, product.Description, product.Category, product.Price,
		product.Thumbnail, product.Stock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *pgProductRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*Product, error) {
	if len(ids) == 0 {
		return []*Product{}, nil
	}
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE id::text = ANY($1)`, ids)
}

func (r *pgProductRepository) List(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + q + "%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE LOWER(%s) OR LOWER(COALESCE(description, '')) LIKE LOWER(%s))", p, p))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.InStock {
		conditions = append(conditions, "stock > 0")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	return r.query(ctx, query, args...)
}

func (r *pgProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgProductRepository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, category = $4, price = $5,
			thumbnail = $6, stock = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Category,
		product.Price, product.Thumbnail, product.Stock,
	).Scan(&product.UpdatedAt)
}

func (r *pgProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}
