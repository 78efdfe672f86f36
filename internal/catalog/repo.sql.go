package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, sku, name, brand, category, description, barcode,
	cost_price::text, sale_price::text, stock_qty, min_stock, is_archived, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var cost, sale string
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Barcode,
		&cost, &sale, &p.StockQty, &p.MinStock, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if p.CostPrice, err = decimal.NewFromString(cost); err != nil {
		return Product{}, fmt.Errorf("catalog: parse cost_price: %w", err)
	}
	if p.SalePrice, err = decimal.NewFromString(sale); err != nil {
		return Product{}, fmt.Errorf("catalog: parse sale_price: %w", err)
	}
	return p, nil
}

// Create inserts a product and returns its id.
func (r *Repository) Create(ctx context.Context, input ProductInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, brand, category, description, barcode, cost_price, sale_price, stock_qty, min_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9, $10)
		RETURNING id`,
		input.SKU, input.Name, input.Brand, input.Category, input.Description, input.Barcode,
		input.CostPrice.String(), input.SalePrice.String(), input.StockQty, input.MinStock).Scan(&id)
	return id, err
}

// Update replaces a product's mutable fields. Stock is excluded: stock only
// moves through transactions and adjustments.
func (r *Repository) Update(ctx context.Context, id int64, input ProductInput) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET sku=$2, name=$3, brand=$4, category=$5, description=$6, barcode=$7,
			cost_price=$8::numeric, sale_price=$9::numeric, min_stock=$10, updated_at=NOW()
		WHERE id=$1`,
		id, input.SKU, input.Name, input.Brand, input.Category, input.Description, input.Barcode,
		input.CostPrice.String(), input.SalePrice.String(), input.MinStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Archive soft-deletes a product. Rows are never removed since transaction
// history references them.
func (r *Repository) Archive(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_archived=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Get returns a product by id.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// List returns a page of products plus the total row count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := `WHERE ($1 = '' OR sku ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')`
	if !filters.IncludeArchived {
		where += ` AND NOT is_archived`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, filters.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products `+where+` ORDER BY name, id LIMIT $2 OFFSET $3`,
		filters.Search, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListLowStock returns non-archived products at or below their reorder
// threshold, lowest stock first.
func (r *Repository) ListLowStock(ctx context.Context) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sku, name, stock_qty, min_stock
		FROM products
		WHERE stock_qty <= min_stock AND NOT is_archived
		ORDER BY stock_qty ASC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LowStockItem
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.ID, &item.SKU, &item.Name, &item.StockQty, &item.MinStock); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
