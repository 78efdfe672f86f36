package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are fixed-point decimals; stock is an
// integer quantity that may go negative when sales outrun supply.
type Product struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Brand       *string         `json:"brand,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	StockQty    int64           `json:"stock_qty"`
	MinStock    int64           `json:"min_stock"`
	IsArchived  bool            `json:"is_archived"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductInput carries create/update fields.
type ProductInput struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Brand       *string         `json:"brand,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"gte=0"`
	SalePrice   decimal.Decimal `json:"sale_price" validate:"gte=0"`
	StockQty    int64           `json:"stock_qty" validate:"gte=0"`
	MinStock    int64           `json:"min_stock" validate:"gte=0"`
}

// ListFilters narrows the paginated product listing.
type ListFilters struct {
	Search          string
	Page            int
	PerPage         int
	IncludeArchived bool
}

// LowStockItem is a product at or below its reorder threshold.
type LowStockItem struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	StockQty int64  `json:"stock_qty"`
	MinStock int64  `json:"min_stock"`
}
