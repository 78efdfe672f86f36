package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stocklane/stocklane/internal/reports"
)

// ReportsWarmupJob pre-populates report caches so the first dashboard hit
// after an eviction does not pay the computation cost.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reportsSvc *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: reportsSvc,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	start := j.now()
	logger.Info("starting reports warmup")

	warmers := j.warmers()
	selected := payload.Reports
	if len(selected) == 0 {
		for name := range warmers {
			selected = append(selected, name)
		}
	}

	warmed := 0
	for _, name := range selected {
		warm, ok := warmers[name]
		if !ok {
			logger.Warn("unknown report in warmup payload", slog.String("report", name))
			continue
		}
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		err := warm(warmCtx)
		cancel()
		if err != nil {
			logger.Error("warm report", slog.String("report", name), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed reports warmup",
		slog.Int("reports", warmed),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// HandleRefresh evicts every report cache, then rebuilds it through the
// warmup path so the next dashboard hit is already current.
func (j *ReportsWarmupJob) HandleRefresh(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports refresh: handler not configured")
	}
	if err := j.Reports.Refresh(ctx); err != nil {
		j.logger().Error("evict report caches", slog.Any("error", err))
		return err
	}
	warmup, err := NewReportsWarmupTask(ReportsWarmupPayload{})
	if err != nil {
		return err
	}
	return j.Handle(ctx, warmup)
}

func (j *ReportsWarmupJob) warmers() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"low-stock": func(ctx context.Context) error {
			_, err := j.Reports.LowStockReport(ctx)
			return err
		},
		"valuation": func(ctx context.Context) error {
			_, err := j.Reports.InventoryValuation(ctx)
			return err
		},
		"sales-history": func(ctx context.Context) error {
			_, err := j.Reports.SalesHistory(ctx)
			return err
		},
		"purchase-history": func(ctx context.Context) error {
			_, err := j.Reports.PurchaseHistory(ctx)
			return err
		},
		"profit-loss": func(ctx context.Context) error {
			_, err := j.Reports.ProfitLoss(ctx, reports.ProfitLossFilter{})
			return err
		},
		"top-products": func(ctx context.Context) error {
			_, err := j.Reports.TopProducts(ctx, 0)
			return err
		},
		"supplier-stats": func(ctx context.Context) error {
			_, err := j.Reports.SupplierStats(ctx, 0)
			return err
		},
		"customer-stats": func(ctx context.Context) error {
			_, err := j.Reports.CustomerStats(ctx, 0)
			return err
		},
		"supplier-summary": func(ctx context.Context) error {
			_, err := j.Reports.SupplierSummary(ctx)
			return err
		},
		"customer-summary": func(ctx context.Context) error {
			_, err := j.Reports.CustomerSummary(ctx)
			return err
		},
		"purchase-summary": func(ctx context.Context) error {
			_, err := j.Reports.PurchaseSummaryReport(ctx)
			return err
		},
	}
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
