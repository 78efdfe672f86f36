package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stocklane/stocklane/internal/shared"
)

// Limits applied when a caller does not specify one.
const (
	DefaultHistoryLimit     = 50
	DefaultTopProductsLimit = 10
	DefaultPartnerLimit     = 10
)

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	LowStock(ctx context.Context) ([]LowStockItem, error)
	ValuationLines(ctx context.Context) ([]ValuationLine, error)
	History(ctx context.Context, txType string, limit int) ([]HistoryItem, error)
	SaleRevenue(ctx context.Context, filter ProfitLossFilter) (decimal.Decimal, int64, error)
	SaleCOGS(ctx context.Context, filter ProfitLossFilter) (decimal.Decimal, error)
	TopProducts(ctx context.Context, limit int) ([]TopProductItem, error)
	PartnerStats(ctx context.Context, role Role, limit int) ([]PartnerStats, error)
	PartnerCounts(ctx context.Context, role Role) (total, active int64, err error)
	PurchaseTotals(ctx context.Context) (decimal.Decimal, int64, error)
}

// CachePort is the tagged cache every report is served through.
type CachePort interface {
	FetchJSON(ctx context.Context, key string, tags []string, dest any, loader func(context.Context) (any, error)) error
	Invalidate(ctx context.Context, tags ...string) error
}

// Service computes and caches reports. Any failure computing a report, in the
// store or in the cache, surfaces as shared.ErrReportUnavailable with the
// cause logged; callers cannot tell a stale cache from a broken one and
// should not try.
type Service struct {
	repo   RepositoryPort
	cache  CachePort
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo RepositoryPort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// LowStockReport lists non-archived products at or below their threshold.
func (s *Service) LowStockReport(ctx context.Context) ([]LowStockItem, error) {
	var items []LowStockItem
	err := s.fetch(ctx, "reports:low-stock", []string{"reports", "low-stock"}, &items,
		func(ctx context.Context) (any, error) {
			return s.repo.LowStock(ctx)
		})
	if err != nil {
		return nil, s.unavailable("low-stock", err)
	}
	return items, nil
}

// InventoryValuation totals cost and retail value over active products.
func (s *Service) InventoryValuation(ctx context.Context) (ValuationReport, error) {
	var report ValuationReport
	err := s.fetch(ctx, "reports:valuation", []string{"reports", "valuation"}, &report,
		func(ctx context.Context) (any, error) {
			lines, err := s.repo.ValuationLines(ctx)
			if err != nil {
				return nil, err
			}
			return buildValuation(lines), nil
		})
	if err != nil {
		return ValuationReport{}, s.unavailable("valuation", err)
	}
	return report, nil
}

func buildValuation(lines []ValuationLine) ValuationReport {
	report := ValuationReport{
		Totals: ValuationTotals{
			TotalCost:   decimal.Zero,
			TotalRetail: decimal.Zero,
		},
		Products: lines,
	}
	// ItemCount is the summed stock quantity, not the number of rows.
	for _, ln := range lines {
		qty := decimal.NewFromInt(ln.StockQty)
		report.Totals.TotalCost = report.Totals.TotalCost.Add(ln.CostPrice.Mul(qty))
		report.Totals.TotalRetail = report.Totals.TotalRetail.Add(ln.SalePrice.Mul(qty))
		report.Totals.ItemCount += ln.StockQty
	}
	return report
}

// SalesHistory returns the most recent sales with resolved line items.
func (s *Service) SalesHistory(ctx context.Context) ([]HistoryItem, error) {
	return s.history(ctx, "SALE", "sale", "sales-history")
}

// PurchaseHistory returns the most recent purchases with resolved line items.
func (s *Service) PurchaseHistory(ctx context.Context) ([]HistoryItem, error) {
	return s.history(ctx, "PURCHASE", "purchase", "purchase-history")
}

func (s *Service) history(ctx context.Context, txType, typeTag, name string) ([]HistoryItem, error) {
	var items []HistoryItem
	// History pages also invalidate on transaction writes, not only on the
	// blanket reports tag.
	tags := []string{"reports", "transactions", typeTag}
	err := s.fetch(ctx, "reports:"+name, tags, &items,
		func(ctx context.Context) (any, error) {
			return s.repo.History(ctx, txType, DefaultHistoryLimit)
		})
	if err != nil {
		return nil, s.unavailable(name, err)
	}
	return items, nil
}

// ProfitLoss aggregates sales revenue against cost of goods sold, optionally
// bounded to a date range.
func (s *Service) ProfitLoss(ctx context.Context, filter ProfitLossFilter) (ProfitLossSummary, error) {
	key := fmt.Sprintf("reports:profit-loss:%s:%s", boundKey(filter.From), boundKey(filter.To))
	var summary ProfitLossSummary
	err := s.fetch(ctx, key, []string{"reports", "profit-loss"}, &summary,
		func(ctx context.Context) (any, error) {
			revenue, count, err := s.repo.SaleRevenue(ctx, filter)
			if err != nil {
				return nil, err
			}
			cogs, err := s.repo.SaleCOGS(ctx, filter)
			if err != nil {
				return nil, err
			}
			return ProfitLossSummary{
				TotalRevenue:         revenue,
				TotalCostOfGoodsSold: cogs,
				GrossProfit:          revenue.Sub(cogs),
				TransactionCount:     count,
			}, nil
		})
	if err != nil {
		return ProfitLossSummary{}, s.unavailable("profit-loss", err)
	}
	return summary, nil
}

func boundKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// TopProducts ranks products by sale revenue.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProductItem, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	key := fmt.Sprintf("reports:top-products:%d", limit)
	var items []TopProductItem
	err := s.fetch(ctx, key, []string{"reports", "top-products"}, &items,
		func(ctx context.Context) (any, error) {
			return s.repo.TopProducts(ctx, limit)
		})
	if err != nil {
		return nil, s.unavailable("top-products", err)
	}
	return items, nil
}

// SupplierStats ranks suppliers by purchase volume.
func (s *Service) SupplierStats(ctx context.Context, limit int) ([]PartnerStats, error) {
	return s.partnerStats(ctx, RoleSupplier, limit)
}

// CustomerStats ranks customers by sales volume.
func (s *Service) CustomerStats(ctx context.Context, limit int) ([]PartnerStats, error) {
	return s.partnerStats(ctx, RoleCustomer, limit)
}

func (s *Service) partnerStats(ctx context.Context, role Role, limit int) ([]PartnerStats, error) {
	if limit <= 0 {
		limit = DefaultPartnerLimit
	}
	name := string(role) + "-stats"
	key := fmt.Sprintf("reports:%s:%d", name, limit)
	var stats []PartnerStats
	err := s.fetch(ctx, key, []string{"reports", name}, &stats,
		func(ctx context.Context) (any, error) {
			return s.repo.PartnerStats(ctx, role, limit)
		})
	if err != nil {
		return nil, s.unavailable(name, err)
	}
	return stats, nil
}

// SupplierSummary condenses the supplier directory to counts and the top
// supplier by purchase volume.
func (s *Service) SupplierSummary(ctx context.Context) (EntitySummary, error) {
	return s.partnerSummary(ctx, RoleSupplier)
}

// CustomerSummary condenses the customer directory to counts and the top
// customer by sales volume.
func (s *Service) CustomerSummary(ctx context.Context) (EntitySummary, error) {
	return s.partnerSummary(ctx, RoleCustomer)
}

func (s *Service) partnerSummary(ctx context.Context, role Role) (EntitySummary, error) {
	name := string(role) + "-summary"
	var summary EntitySummary
	err := s.fetch(ctx, "reports:"+name, []string{"reports", name}, &summary,
		func(ctx context.Context) (any, error) {
			total, active, err := s.repo.PartnerCounts(ctx, role)
			if err != nil {
				return nil, err
			}
			out := EntitySummary{
				TotalCount:        total,
				ActiveCount:       active,
				TopPerformerValue: decimal.Zero,
			}
			top, err := s.repo.PartnerStats(ctx, role, 1)
			if err != nil {
				return nil, err
			}
			if len(top) > 0 {
				out.TopPerformerName = top[0].Name
				out.TopPerformerValue = top[0].Total
			}
			return out, nil
		})
	if err != nil {
		return EntitySummary{}, s.unavailable(name, err)
	}
	return summary, nil
}

// PurchaseSummaryReport aggregates all purchases into spend, count and
// average order value.
func (s *Service) PurchaseSummaryReport(ctx context.Context) (PurchaseSummary, error) {
	var summary PurchaseSummary
	err := s.fetch(ctx, "reports:purchase-summary", []string{"reports", "purchase-summary"}, &summary,
		func(ctx context.Context) (any, error) {
			total, count, err := s.repo.PurchaseTotals(ctx)
			if err != nil {
				return nil, err
			}
			out := PurchaseSummary{TotalSpend: total, Count: count, AvgValue: decimal.Zero}
			if count > 0 {
				out.AvgValue = total.DivRound(decimal.NewFromInt(count), 2)
			}
			return out, nil
		})
	if err != nil {
		return PurchaseSummary{}, s.unavailable("purchase-summary", err)
	}
	return summary, nil
}

// Refresh evicts every cached report. The next read of each recomputes from
// current data.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, "reports"); err != nil {
		s.logger.Error("reports refresh failed", slog.Any("error", err))
		return fmt.Errorf("reports: refresh: %w", shared.ErrReportUnavailable)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, key string, tags []string, dest any, loader func(context.Context) (any, error)) error {
	return s.cache.FetchJSON(ctx, key, tags, dest, loader)
}

func (s *Service) unavailable(name string, err error) error {
	s.logger.Error("report computation failed",
		slog.String("report", name), slog.Any("error", err))
	return fmt.Errorf("reports: %s: %w", name, shared.ErrReportUnavailable)
}
