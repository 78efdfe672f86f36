// Package reports derives read-only summaries from product and transaction
// data. Every report is a pure function of persisted state at computation
// time, cached under named tags for a bounded interval.
package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockItem is a non-archived product at or below its reorder threshold.
type LowStockItem struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	StockQty int64  `json:"stock_qty"`
	MinStock int64  `json:"min_stock"`
}

// ValuationLine is one product's contribution to the inventory valuation.
type ValuationLine struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	StockQty  int64           `json:"stock_qty"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// ValuationTotals aggregates cost and retail value over active products.
type ValuationTotals struct {
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalRetail decimal.Decimal `json:"total_retail"`
	ItemCount   int64           `json:"item_count"`
}

// ValuationReport couples the totals with the per-product rows they derive from.
type ValuationReport struct {
	Totals   ValuationTotals `json:"totals"`
	Products []ValuationLine `json:"products"`
}

// HistoryLine is one resolved transaction line in a history view.
type HistoryLine struct {
	ID          int64  `json:"id"`
	Quantity    int64  `json:"quantity"`
	ProductName string `json:"product_name"`
}

// HistoryItem is one transaction in a history view, most recent first.
type HistoryItem struct {
	ID       int64           `json:"id"`
	Code     string          `json:"code"`
	Date     time.Time       `json:"date"`
	Total    decimal.Decimal `json:"total"`
	UserName *string         `json:"user_name,omitempty"`
	Items    []HistoryLine   `json:"items"`
}

// ProfitLossFilter optionally bounds the profit and loss computation.
type ProfitLossFilter struct {
	From time.Time
	To   time.Time
}

// ProfitLossSummary aggregates sales revenue against cost of goods sold.
// COGS is computed from each product's current cost price, not a historical
// snapshot; a known accuracy limitation carried over deliberately.
type ProfitLossSummary struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalCostOfGoodsSold decimal.Decimal `json:"total_cost_of_goods_sold"`
	GrossProfit          decimal.Decimal `json:"gross_profit"`
	TransactionCount     int64           `json:"transaction_count"`
}

// TopProductItem aggregates sale lines per product.
type TopProductItem struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PartnerStats aggregates transactions per supplier or customer.
type PartnerStats struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Total            decimal.Decimal `json:"total"`
	TransactionCount int64           `json:"transaction_count"`
}

// EntitySummary condenses a partner directory: how many entries exist, how
// many have at least one qualifying transaction, and the single top performer.
type EntitySummary struct {
	TotalCount        int64           `json:"total_count"`
	ActiveCount       int64           `json:"active_count"`
	TopPerformerName  string          `json:"top_performer_name"`
	TopPerformerValue decimal.Decimal `json:"top_performer_value"`
}

// PurchaseSummary aggregates all purchase transactions.
type PurchaseSummary struct {
	TotalSpend decimal.Decimal `json:"total_spend"`
	Count      int64           `json:"count"`
	AvgValue   decimal.Decimal `json:"avg_value"`
}

// Role selects the partner side of a stats query.
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleCustomer Role = "customer"
)

func (r Role) column() string {
	if r == RoleSupplier {
		return "supplier_id"
	}
	return "customer_id"
}

func (r Role) txType() string {
	if r == RoleSupplier {
		return "PURCHASE"
	}
	return "SALE"
}

func (r Role) partnerKind() string {
	if r == RoleSupplier {
		return "SUPPLIER"
	}
	return "CUSTOMER"
}
