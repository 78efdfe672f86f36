package transactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocklane/stocklane/internal/platform/db"
)

// ErrProductNotFound indicates a stock delta referenced a missing product.
// The enclosing unit of work is rolled back.
var ErrProductNotFound = errors.New("transactions: product not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside the atomic unit.
type TxRepository interface {
	InsertTransaction(ctx context.Context, tx Transaction) (int64, error)
	InsertItems(ctx context.Context, txID int64, items []Item) error
	InsertAdjustment(ctx context.Context, adj Adjustment) (Adjustment, error)
	ApplyStockDelta(ctx context.Context, productID, delta int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) InsertTransaction(ctx context.Context, tx Transaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO transactions (code, type, date, total, customer_id, supplier_id, user_id)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING id`,
		tx.Code, string(tx.Type), tx.Date, tx.Total.String(), tx.CustomerID, tx.SupplierID,
		pgtype.Int8{Int64: tx.UserID, Valid: tx.UserID != 0}).Scan(&id)
	return id, err
}

func (r *txRepo) InsertItems(ctx context.Context, txID int64, items []Item) error {
	for _, item := range items {
		_, err := r.tx.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, quantity, price, discount)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric)`,
			txID, item.ProductID, item.Quantity, item.Price.String(), item.Discount.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepo) InsertAdjustment(ctx context.Context, adj Adjustment) (Adjustment, error) {
	err := r.tx.QueryRow(ctx, `
		INSERT INTO adjustments (product_id, qty_change, reason, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		adj.ProductID, adj.QtyChange, adj.Reason,
		pgtype.Int8{Int64: adj.UserID, Valid: adj.UserID != 0}).Scan(&adj.ID, &adj.CreatedAt)
	return adj, err
}

// ApplyStockDelta increments the stock quantity in place. The database-side
// increment serializes concurrent deltas against the same row; there is no
// read-modify-write at the application layer, so no update is lost.
func (r *txRepo) ApplyStockDelta(ctx context.Context, productID, delta int64) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE products SET stock_qty = stock_qty + $2, updated_at = NOW() WHERE id = $1`,
		productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
