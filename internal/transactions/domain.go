package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates supported transaction kinds.
type Type string

const (
	// TypeSale removes stock and routes to the sales listing.
	TypeSale Type = "SALE"
	// TypePurchase adds stock and routes to the purchases listing.
	TypePurchase Type = "PURCHASE"
)

// typeTraits drives the stock sign and post-commit navigation per type,
// replacing scattered conditionals with a single dispatch table.
type typeTraits struct {
	stockSign int64
	redirect  string
	cacheTag  string
}

var traitsByType = map[Type]typeTraits{
	TypeSale:     {stockSign: -1, redirect: "/sales", cacheTag: "sale"},
	TypePurchase: {stockSign: +1, redirect: "/purchases", cacheTag: "purchase"},
}

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	_, ok := traitsByType[t]
	return ok
}

// StockSign returns the per-unit stock delta sign for t.
func (t Type) StockSign() int64 {
	return traitsByType[t].stockSign
}

// RedirectTarget returns the listing route callers are directed to after a
// successful commit.
func (t Type) RedirectTarget() string {
	return traitsByType[t].redirect
}

// CacheTag returns the type-specific invalidation sub-tag.
func (t Type) CacheTag() string {
	return traitsByType[t].cacheTag
}

// Transaction is a committed sale or purchase. Total is computed from the
// items at creation time and frozen thereafter.
type Transaction struct {
	ID         int64           `json:"id"`
	Code       string          `json:"code"`
	Type       Type            `json:"type"`
	Date       time.Time       `json:"date"`
	Total      decimal.Decimal `json:"total"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	SupplierID *int64          `json:"supplier_id,omitempty"`
	UserID     int64           `json:"user_id"`
	Items      []Item          `json:"items"`
}

// Item is one product line. Price is a snapshot captured at transaction time,
// never re-read from the live product.
type Item struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
}

// Adjustment is a manual stock correction independent of any transaction.
type Adjustment struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	QtyChange int64     `json:"qty_change"`
	Reason    string    `json:"reason"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemInput is a proposed transaction line.
type ItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0"`
}

// TransactionInput is a proposed sale or purchase. ActorID is resolved at the
// boundary and passed explicitly; services never read ambient session state.
type TransactionInput struct {
	Type       Type        `json:"type"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	SupplierID *int64      `json:"supplier_id,omitempty"`
	ActorID    int64       `json:"-"`
}

// AdjustmentInput is a proposed manual stock correction.
type AdjustmentInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	QtyChange int64  `json:"qty_change" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	ActorID   int64  `json:"-"`
}

// Result reports a committed transaction and the listing route the caller
// should be directed to.
type Result struct {
	Transaction Transaction `json:"transaction"`
	Redirect    string      `json:"redirect"`
}

// computeTotal returns the frozen transaction total: the sum over items of
// quantity times price minus discount.
func computeTotal(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(item.Quantity)).Sub(item.Discount)
		total = total.Add(line)
	}
	return total
}
