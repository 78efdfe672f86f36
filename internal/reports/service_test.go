package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/stocklane/internal/platform/cache"
	"github.com/stocklane/stocklane/internal/shared"
)

type fakeRepo struct {
	lowStock      []LowStockItem
	lowStockCalls int

	valuation      []ValuationLine
	valuationCalls int

	history      []HistoryItem
	historyCalls int
	historyType  string

	revenue      decimal.Decimal
	revenueCount int64
	cogs         decimal.Decimal

	topProducts []TopProductItem

	partnerStats      []PartnerStats
	partnerStatsCalls int

	partnerTotal  int64
	partnerActive int64

	purchaseTotal decimal.Decimal
	purchaseCount int64

	err error
}

func (f *fakeRepo) LowStock(context.Context) ([]LowStockItem, error) {
	f.lowStockCalls++
	return f.lowStock, f.err
}

func (f *fakeRepo) ValuationLines(context.Context) ([]ValuationLine, error) {
	f.valuationCalls++
	return f.valuation, f.err
}

func (f *fakeRepo) History(_ context.Context, txType string, _ int) ([]HistoryItem, error) {
	f.historyCalls++
	f.historyType = txType
	return f.history, f.err
}

func (f *fakeRepo) SaleRevenue(context.Context, ProfitLossFilter) (decimal.Decimal, int64, error) {
	return f.revenue, f.revenueCount, f.err
}

func (f *fakeRepo) SaleCOGS(context.Context, ProfitLossFilter) (decimal.Decimal, error) {
	return f.cogs, f.err
}

func (f *fakeRepo) TopProducts(context.Context, int) ([]TopProductItem, error) {
	return f.topProducts, f.err
}

func (f *fakeRepo) PartnerStats(context.Context, Role, int) ([]PartnerStats, error) {
	f.partnerStatsCalls++
	return f.partnerStats, f.err
}

func (f *fakeRepo) PartnerCounts(context.Context, Role) (int64, int64, error) {
	return f.partnerTotal, f.partnerActive, f.err
}

func (f *fakeRepo) PurchaseTotals(context.Context) (decimal.Decimal, int64, error) {
	return f.purchaseTotal, f.purchaseCount, f.err
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *cache.TagStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewTagStore(client, 5*time.Minute)
	repo := &fakeRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, store, logger), repo, store
}

func TestLowStockReportServedFromCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.lowStock = []LowStockItem{{ID: 1, SKU: "A-1", Name: "Widget", StockQty: 2, MinStock: 5}}

	first, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.lowStockCalls)
}

func TestRefreshForcesRecompute(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.lowStock = []LowStockItem{{ID: 1, SKU: "A-1", Name: "Widget", StockQty: 2, MinStock: 5}}

	_, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)

	repo.lowStock = append(repo.lowStock, LowStockItem{ID: 2, SKU: "B-2", Name: "Gadget", StockQty: 0, MinStock: 1})
	require.NoError(t, svc.Refresh(context.Background()))

	items, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, repo.lowStockCalls)
}

func TestInventoryValuationTotals(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.valuation = []ValuationLine{
		{ID: 1, SKU: "A-1", Name: "Widget", StockQty: 3,
			CostPrice: decimal.RequireFromString("10.50"),
			SalePrice: decimal.RequireFromString("15.00")},
		{ID: 2, SKU: "B-2", Name: "Gadget", StockQty: 2,
			CostPrice: decimal.RequireFromString("4.25"),
			SalePrice: decimal.RequireFromString("9.99")},
	}

	report, err := svc.InventoryValuation(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, report.Totals.ItemCount)
	require.True(t, report.Totals.TotalCost.Equal(decimal.RequireFromString("40.00")), report.Totals.TotalCost.String())
	require.True(t, report.Totals.TotalRetail.Equal(decimal.RequireFromString("64.98")), report.Totals.TotalRetail.String())
	require.Len(t, report.Products, 2)
}

func TestHistorySelectsTransactionType(t *testing.T) {
	svc, repo, _ := newTestService(t)
	name := "Ana"
	repo.history = []HistoryItem{{
		ID: 9, Code: "TXN-1", Date: time.Now().UTC(),
		Total: decimal.RequireFromString("99.90"), UserName: &name,
		Items: []HistoryLine{{ID: 1, Quantity: 3, ProductName: "Widget"}},
	}}

	sales, err := svc.SalesHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SALE", repo.historyType)
	require.Len(t, sales, 1)
	require.Equal(t, "Widget", sales[0].Items[0].ProductName)

	_, err = svc.PurchaseHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, "PURCHASE", repo.historyType)
}

func TestHistoryEvictedByTransactionTag(t *testing.T) {
	svc, repo, store := newTestService(t)
	repo.history = []HistoryItem{{ID: 1, Code: "TXN-1", Total: decimal.Zero}}

	_, err := svc.SalesHistory(context.Background())
	require.NoError(t, err)

	// Recording a sale invalidates the transactions tag, not the blanket
	// reports tag alone.
	require.NoError(t, store.Invalidate(context.Background(), "transactions"))

	_, err = svc.SalesHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.historyCalls)
}

func TestProfitLossGrossProfit(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.revenue = decimal.RequireFromString("250.00")
	repo.revenueCount = 4
	repo.cogs = decimal.RequireFromString("180.40")

	summary, err := svc.ProfitLoss(context.Background(), ProfitLossFilter{})
	require.NoError(t, err)
	require.True(t, summary.GrossProfit.Equal(decimal.RequireFromString("69.60")), summary.GrossProfit.String())
	require.EqualValues(t, 4, summary.TransactionCount)
}

func TestPurchaseSummaryAverage(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.purchaseTotal = decimal.RequireFromString("300.00")
	repo.purchaseCount = 4

	summary, err := svc.PurchaseSummaryReport(context.Background())
	require.NoError(t, err)
	require.True(t, summary.AvgValue.Equal(decimal.RequireFromString("75.00")), summary.AvgValue.String())
}

func TestPurchaseSummaryEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	summary, err := svc.PurchaseSummaryReport(context.Background())
	require.NoError(t, err)
	require.True(t, summary.AvgValue.IsZero())
	require.EqualValues(t, 0, summary.Count)
}

func TestPartnerSummaryTopPerformer(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.partnerTotal = 7
	repo.partnerActive = 3
	repo.partnerStats = []PartnerStats{{ID: 2, Name: "Acme Supply", Total: decimal.RequireFromString("420.00"), TransactionCount: 6}}

	summary, err := svc.SupplierSummary(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 7, summary.TotalCount)
	require.EqualValues(t, 3, summary.ActiveCount)
	require.Equal(t, "Acme Supply", summary.TopPerformerName)
	require.True(t, summary.TopPerformerValue.Equal(decimal.RequireFromString("420.00")))
}

func TestPartnerSummaryNoTransactions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.partnerTotal = 2

	summary, err := svc.CustomerSummary(context.Background())
	require.NoError(t, err)
	require.Empty(t, summary.TopPerformerName)
	require.True(t, summary.TopPerformerValue.IsZero())
}

func TestReportFailureIsUnavailable(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.err = errors.New("connection refused")

	_, err := svc.LowStockReport(context.Background())
	require.ErrorIs(t, err, shared.ErrReportUnavailable)

	_, err = svc.ProfitLoss(context.Background(), ProfitLossFilter{})
	require.ErrorIs(t, err, shared.ErrReportUnavailable)

	_, err = svc.SupplierStats(context.Background(), 5)
	require.ErrorIs(t, err, shared.ErrReportUnavailable)
}

func TestTopProductsDefaultLimit(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.topProducts = []TopProductItem{{ProductID: 1, Name: "Widget", SKU: "A-1", QuantitySold: 12, Revenue: decimal.RequireFromString("180.00")}}

	items, err := svc.TopProducts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 12, items[0].QuantitySold)
}
