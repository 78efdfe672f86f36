package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stocklane/stocklane/internal/catalog"
)

// LowStockScanJob sweeps the catalog for products at or below their reorder
// threshold and logs each hit for the operations feed.
type LowStockScanJob struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(catalogSvc *catalog.Service, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Catalog: catalogSvc, Logger: logger}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("low stock scan: handler not configured")
	}
	logger := j.logger()

	items, err := j.Catalog.CheckLowStock(ctx)
	if err != nil {
		logger.Error("low stock scan failed", slog.Any("error", err))
		return err
	}
	for _, item := range items {
		logger.Warn("product below reorder threshold",
			slog.Int64("product_id", item.ID),
			slog.String("sku", item.SKU),
			slog.Int64("stock_qty", item.StockQty),
			slog.Int64("min_stock", item.MinStock))
	}
	logger.Info("completed low stock scan", slog.Int("flagged", len(items)))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}
