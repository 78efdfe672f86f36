package transactions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/stocklane/internal/shared"
)

// memoryRepo runs the unit of work against in-memory state with
// all-or-nothing semantics matching the real transaction boundary.
type memoryRepo struct {
	stock        map[int64]int64
	transactions []Transaction
	items        map[int64][]Item
	adjustments  []Adjustment
	nextID       int64
}

func newMemoryRepo(stock map[int64]int64) *memoryRepo {
	return &memoryRepo{stock: stock, items: make(map[int64][]Item), nextID: 1}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	stage := &memoryTx{repo: m, stock: make(map[int64]int64, len(m.stock))}
	for id, qty := range m.stock {
		stage.stock[id] = qty
	}
	if err := fn(ctx, stage); err != nil {
		return err
	}
	m.stock = stage.stock
	m.transactions = append(m.transactions, stage.transactions...)
	for id, items := range stage.items {
		m.items[id] = append(m.items[id], items...)
	}
	m.adjustments = append(m.adjustments, stage.adjustments...)
	return nil
}

type memoryTx struct {
	repo         *memoryRepo
	stock        map[int64]int64
	transactions []Transaction
	items        map[int64][]Item
	adjustments  []Adjustment
}

func (t *memoryTx) InsertTransaction(_ context.Context, tx Transaction) (int64, error) {
	tx.ID = t.repo.nextID
	t.repo.nextID++
	t.transactions = append(t.transactions, tx)
	return tx.ID, nil
}

func (t *memoryTx) InsertItems(_ context.Context, txID int64, items []Item) error {
	if t.items == nil {
		t.items = make(map[int64][]Item)
	}
	t.items[txID] = append(t.items[txID], items...)
	return nil
}

func (t *memoryTx) InsertAdjustment(_ context.Context, adj Adjustment) (Adjustment, error) {
	adj.ID = t.repo.nextID
	t.repo.nextID++
	t.adjustments = append(t.adjustments, adj)
	return adj, nil
}

func (t *memoryTx) ApplyStockDelta(_ context.Context, productID, delta int64) error {
	if _, ok := t.stock[productID]; !ok {
		return ErrProductNotFound
	}
	t.stock[productID] += delta
	return nil
}

type recordingInvalidator struct {
	tags [][]string
	err  error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tags ...string) error {
	r.tags = append(r.tags, tags)
	return r.err
}

type recordingAudit struct {
	logs []shared.AuditLog
	err  error
}

func (r *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func newTestService(stock map[int64]int64) (*Service, *memoryRepo, *recordingInvalidator, *recordingAudit) {
	repo := newMemoryRepo(stock)
	inv := &recordingInvalidator{}
	audit := &recordingAudit{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, inv, audit, logger), repo, inv, audit
}

func saleInput(items ...ItemInput) TransactionInput {
	return TransactionInput{Type: TypeSale, Items: items, ActorID: 1}
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	svc, repo, _, _ := newTestService(map[int64]int64{7: 10})

	result, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 3, Price: decimal.RequireFromString("5.00"),
	}))
	require.NoError(t, err)
	require.EqualValues(t, 7, repo.stock[7])
	require.Equal(t, "/sales", result.Redirect)
	require.True(t, strings.HasPrefix(result.Transaction.Code, "TXN-"))
}

func TestRecordPurchaseIncrementsStock(t *testing.T) {
	svc, repo, _, _ := newTestService(map[int64]int64{7: 10})

	result, err := svc.Record(context.Background(), TransactionInput{
		Type:    TypePurchase,
		Items:   []ItemInput{{ProductID: 7, Quantity: 5, Price: decimal.RequireFromString("2.00")}},
		ActorID: 1,
	})
	require.NoError(t, err)
	require.EqualValues(t, 15, repo.stock[7])
	require.Equal(t, "/purchases", result.Redirect)
}

func TestRecordTotalSubtractsDiscounts(t *testing.T) {
	svc, _, _, _ := newTestService(map[int64]int64{1: 50, 2: 50})

	result, err := svc.Record(context.Background(), saleInput(
		ItemInput{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00"), Discount: decimal.RequireFromString("1.50")},
		ItemInput{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("4.25")},
	))
	require.NoError(t, err)
	require.True(t, result.Transaction.Total.Equal(decimal.RequireFromString("22.75")), result.Transaction.Total.String())
}

func TestRecordAllowsNegativeStock(t *testing.T) {
	svc, repo, _, _ := newTestService(map[int64]int64{7: 2})

	_, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 5, Price: decimal.RequireFromString("1.00"),
	}))
	require.NoError(t, err)
	require.EqualValues(t, -3, repo.stock[7])
}

func TestRecordUnknownProductRollsBack(t *testing.T) {
	svc, repo, inv, _ := newTestService(map[int64]int64{7: 10})

	_, err := svc.Record(context.Background(), saleInput(
		ItemInput{ProductID: 7, Quantity: 3, Price: decimal.RequireFromString("5.00")},
		ItemInput{ProductID: 99, Quantity: 1, Price: decimal.RequireFromString("5.00")},
	))
	require.ErrorIs(t, err, shared.ErrPersistence)
	require.EqualValues(t, 10, repo.stock[7])
	require.Empty(t, repo.transactions)
	require.Empty(t, inv.tags)
}

func TestRecordValidationFields(t *testing.T) {
	svc, _, _, _ := newTestService(map[int64]int64{7: 10})

	_, err := svc.Record(context.Background(), TransactionInput{Type: "TRANSFER", ActorID: 1})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"type"}, verr.Fields)

	_, err = svc.Record(context.Background(), saleInput())
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "items")

	_, err = svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("1.999"),
	}))
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"items[0].price"}, verr.Fields)
}

func TestRecordInvalidatesTypedTags(t *testing.T) {
	svc, _, inv, _ := newTestService(map[int64]int64{7: 10})

	_, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("5.00"),
	}))
	require.NoError(t, err)
	require.Len(t, inv.tags, 1)
	require.Equal(t, []string{"transactions", "products", "reports", "sale"}, inv.tags[0])
}

func TestRecordSurvivesInvalidationFailure(t *testing.T) {
	svc, repo, inv, _ := newTestService(map[int64]int64{7: 10})
	inv.err = errors.New("redis down")

	_, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("5.00"),
	}))
	require.NoError(t, err)
	require.EqualValues(t, 9, repo.stock[7])
}

func TestRecordWritesAuditLog(t *testing.T) {
	svc, _, _, audit := newTestService(map[int64]int64{7: 10})

	result, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 2, Price: decimal.RequireFromString("3.00"),
	}))
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "transactions:sale", audit.logs[0].Action)
	require.Equal(t, result.Transaction.Code, audit.logs[0].Meta["code"])
	require.EqualValues(t, 1, audit.logs[0].ActorID)
}

func TestRecordSurvivesAuditFailure(t *testing.T) {
	svc, repo, _, audit := newTestService(map[int64]int64{7: 10})
	audit.err = errors.New("audit_logs unavailable")

	_, err := svc.Record(context.Background(), saleInput(ItemInput{
		ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("5.00"),
	}))
	require.NoError(t, err)
	require.EqualValues(t, 9, repo.stock[7])
}

func TestAdjustAppliesSignedDelta(t *testing.T) {
	svc, repo, inv, _ := newTestService(map[int64]int64{7: 10})

	adj, err := svc.Adjust(context.Background(), AdjustmentInput{
		ProductID: 7, QtyChange: -4, Reason: "breakage", ActorID: 1,
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, repo.stock[7])
	require.Equal(t, "breakage", adj.Reason)
	require.Equal(t, []string{"products", "reports"}, inv.tags[0])
}

func TestAdjustRequiresReasonAndChange(t *testing.T) {
	svc, _, _, _ := newTestService(map[int64]int64{7: 10})

	_, err := svc.Adjust(context.Background(), AdjustmentInput{ProductID: 7, QtyChange: -1, ActorID: 1})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "reason")

	_, err = svc.Adjust(context.Background(), AdjustmentInput{ProductID: 7, Reason: "count", ActorID: 1})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "qty_change")
}

func TestAdjustUnknownProductRollsBack(t *testing.T) {
	svc, repo, _, _ := newTestService(map[int64]int64{7: 10})

	_, err := svc.Adjust(context.Background(), AdjustmentInput{
		ProductID: 99, QtyChange: 1, Reason: "found", ActorID: 1,
	})
	require.ErrorIs(t, err, shared.ErrPersistence)
	require.Empty(t, repo.adjustments)
}
