package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads aggregate report data straight from Postgres. All queries
// are read-only and run outside any transaction; consistency comes from the
// write path, not from these reads.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const lowStockQuery = `
SELECT id, sku, name, stock_qty, min_stock
FROM products
WHERE stock_qty <= min_stock AND NOT is_archived
ORDER BY stock_qty ASC, id ASC`

func (r *Repository) LowStock(ctx context.Context) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, lowStockQuery)
	if err != nil {
		return nil, fmt.Errorf("reports: low stock query: %w", err)
	}
	defer rows.Close()

	items := make([]LowStockItem, 0)
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.StockQty, &it.MinStock); err != nil {
			return nil, fmt.Errorf("reports: low stock scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const valuationQuery = `
SELECT id, sku, name, stock_qty, cost_price::text, sale_price::text
FROM products
WHERE NOT is_archived
ORDER BY name ASC, id ASC`

func (r *Repository) ValuationLines(ctx context.Context) ([]ValuationLine, error) {
	rows, err := r.pool.Query(ctx, valuationQuery)
	if err != nil {
		return nil, fmt.Errorf("reports: valuation query: %w", err)
	}
	defer rows.Close()

	lines := make([]ValuationLine, 0)
	for rows.Next() {
		var (
			ln         ValuationLine
			cost, sale string
		)
		if err := rows.Scan(&ln.ID, &ln.SKU, &ln.Name, &ln.StockQty, &cost, &sale); err != nil {
			return nil, fmt.Errorf("reports: valuation scan: %w", err)
		}
		if ln.CostPrice, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("reports: valuation cost_price: %w", err)
		}
		if ln.SalePrice, err = decimal.NewFromString(sale); err != nil {
			return nil, fmt.Errorf("reports: valuation sale_price: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

const historyQuery = `
SELECT t.id, t.code, t.date, t.total::text, u.name
FROM transactions t
LEFT JOIN users u ON u.id = t.user_id
WHERE t.type = $1
ORDER BY t.date DESC, t.id DESC
LIMIT $2`

const historyLinesQuery = `
SELECT ti.transaction_id, ti.id, ti.quantity, COALESCE(p.name, 'Unknown')
FROM transaction_items ti
LEFT JOIN products p ON p.id = ti.product_id
WHERE ti.transaction_id = ANY($1)
ORDER BY ti.id ASC`

// History returns the most recent transactions of the given type with their
// lines resolved to product names. Lines whose product has been removed keep
// an "Unknown" placeholder instead of dropping out of the report.
func (r *Repository) History(ctx context.Context, txType string, limit int) ([]HistoryItem, error) {
	rows, err := r.pool.Query(ctx, historyQuery, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: history query: %w", err)
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, limit)
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var (
			it    HistoryItem
			total string
		)
		if err := rows.Scan(&it.ID, &it.Code, &it.Date, &total, &it.UserName); err != nil {
			return nil, fmt.Errorf("reports: history scan: %w", err)
		}
		if it.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("reports: history total: %w", err)
		}
		it.Items = make([]HistoryLine, 0, 4)
		items = append(items, it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	lineRows, err := r.pool.Query(ctx, historyLinesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("reports: history lines query: %w", err)
	}
	defer lineRows.Close()

	byID := make(map[int64]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	for lineRows.Next() {
		var (
			txID int64
			ln   HistoryLine
		)
		if err := lineRows.Scan(&txID, &ln.ID, &ln.Quantity, &ln.ProductName); err != nil {
			return nil, fmt.Errorf("reports: history lines scan: %w", err)
		}
		if i, ok := byID[txID]; ok {
			items[i].Items = append(items[i].Items, ln)
		}
	}
	return items, lineRows.Err()
}

const saleRevenueQuery = `
SELECT COALESCE(SUM(total), 0)::text, COUNT(*)
FROM transactions
WHERE type = 'SALE'
  AND ($1::timestamptz IS NULL OR date >= $1)
  AND ($2::timestamptz IS NULL OR date <= $2)`

func (r *Repository) SaleRevenue(ctx context.Context, filter ProfitLossFilter) (decimal.Decimal, int64, error) {
	var (
		raw   string
		count int64
	)
	err := r.pool.QueryRow(ctx, saleRevenueQuery, boundArg(filter.From), boundArg(filter.To)).Scan(&raw, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("reports: sale revenue: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("reports: sale revenue total: %w", err)
	}
	return total, count, nil
}

const saleCOGSQuery = `
SELECT COALESCE(SUM(ti.quantity * p.cost_price), 0)::text
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
JOIN products p ON p.id = ti.product_id
WHERE t.type = 'SALE'
  AND ($1::timestamptz IS NULL OR t.date >= $1)
  AND ($2::timestamptz IS NULL OR t.date <= $2)`

// SaleCOGS prices sold quantities at each product's current cost price. Lines
// whose product no longer exists contribute nothing.
func (r *Repository) SaleCOGS(ctx context.Context, filter ProfitLossFilter) (decimal.Decimal, error) {
	var raw string
	err := r.pool.QueryRow(ctx, saleCOGSQuery, boundArg(filter.From), boundArg(filter.To)).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: sale cogs: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: sale cogs total: %w", err)
	}
	return total, nil
}

const topProductsQuery = `
SELECT ti.product_id,
       COALESCE(p.name, 'Unknown'),
       COALESCE(p.sku, '-'),
       SUM(ti.quantity)::bigint,
       SUM(ti.quantity * ti.price - ti.discount)::text
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
LEFT JOIN products p ON p.id = ti.product_id
WHERE t.type = 'SALE'
GROUP BY ti.product_id, p.name, p.sku
ORDER BY SUM(ti.quantity * ti.price - ti.discount) DESC,
         SUM(ti.quantity) DESC,
         COALESCE(p.sku, '-') ASC
LIMIT $1`

func (r *Repository) TopProducts(ctx context.Context, limit int) ([]TopProductItem, error) {
	rows, err := r.pool.Query(ctx, topProductsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: top products query: %w", err)
	}
	defer rows.Close()

	items := make([]TopProductItem, 0, limit)
	for rows.Next() {
		var (
			it      TopProductItem
			revenue string
		)
		if err := rows.Scan(&it.ProductID, &it.Name, &it.SKU, &it.QuantitySold, &revenue); err != nil {
			return nil, fmt.Errorf("reports: top products scan: %w", err)
		}
		if it.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("reports: top products revenue: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const partnerStatsQuery = `
SELECT t.%[1]s,
       COALESCE(pa.name, 'Unknown'),
       COALESCE(SUM(t.total), 0)::text,
       COUNT(t.id)
FROM transactions t
LEFT JOIN partners pa ON pa.id = t.%[1]s
WHERE t.type = $1 AND t.%[1]s IS NOT NULL
GROUP BY t.%[1]s, pa.name
ORDER BY SUM(t.total) DESC, t.%[1]s ASC
LIMIT $2`

// PartnerStats aggregates per-partner transaction totals for one side of the
// ledger. Transactions without a partner reference are excluded.
func (r *Repository) PartnerStats(ctx context.Context, role Role, limit int) ([]PartnerStats, error) {
	query := fmt.Sprintf(partnerStatsQuery, role.column())
	rows, err := r.pool.Query(ctx, query, role.txType(), limit)
	if err != nil {
		return nil, fmt.Errorf("reports: %s stats query: %w", role, err)
	}
	defer rows.Close()

	stats := make([]PartnerStats, 0, limit)
	for rows.Next() {
		var (
			st    PartnerStats
			total string
		)
		if err := rows.Scan(&st.ID, &st.Name, &total, &st.TransactionCount); err != nil {
			return nil, fmt.Errorf("reports: %s stats scan: %w", role, err)
		}
		if st.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("reports: %s stats total: %w", role, err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

const partnerCountQuery = `SELECT COUNT(*) FROM partners WHERE kind = $1`

const activePartnerCountQuery = `
SELECT COUNT(DISTINCT %[1]s) FROM transactions WHERE type = $1 AND %[1]s IS NOT NULL`

func (r *Repository) PartnerCounts(ctx context.Context, role Role) (total, active int64, err error) {
	if err = r.pool.QueryRow(ctx, partnerCountQuery, role.partnerKind()).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("reports: %s count: %w", role, err)
	}
	query := fmt.Sprintf(activePartnerCountQuery, role.column())
	if err = r.pool.QueryRow(ctx, query, role.txType()).Scan(&active); err != nil {
		return 0, 0, fmt.Errorf("reports: active %s count: %w", role, err)
	}
	return total, active, nil
}

const purchaseTotalsQuery = `
SELECT COALESCE(SUM(total), 0)::text, COUNT(*)
FROM transactions
WHERE type = 'PURCHASE'`

func (r *Repository) PurchaseTotals(ctx context.Context) (decimal.Decimal, int64, error) {
	var (
		raw   string
		count int64
	)
	if err := r.pool.QueryRow(ctx, purchaseTotalsQuery).Scan(&raw, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("reports: purchase totals: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("reports: purchase totals sum: %w", err)
	}
	return total, count, nil
}

func boundArg(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
