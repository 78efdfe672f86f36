package transactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklane/stocklane/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Invalidator receives fire-and-forget cache eviction signals after commits.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records transactions and adjustments while keeping product stock
// quantities consistent.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
	audit       AuditPort
	logger      *slog.Logger
}

// NewService builds a Service.
func NewService(repo RepositoryPort, invalidator Invalidator, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, audit: audit, logger: logger}
}

// Record validates and atomically persists a sale or purchase together with
// the stock deltas of every line. Either the transaction record and all stock
// updates land, or none do. Stock is never clamped: overselling yields a
// negative quantity surfaced to operators rather than silently corrected.
func (s *Service) Record(ctx context.Context, input TransactionInput) (Result, error) {
	if err := validateTransaction(input); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	tx := Transaction{
		Code:       fmt.Sprintf("TXN-%s", uuid.NewString()),
		Type:       input.Type,
		Date:       now,
		Total:      computeTotal(input.Items),
		CustomerID: input.CustomerID,
		SupplierID: input.SupplierID,
		UserID:     input.ActorID,
	}
	items := make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, Item{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Discount:  in.Discount,
		})
	}

	sign := input.Type.StockSign()
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		id, err := repo.InsertTransaction(ctx, tx)
		if err != nil {
			return err
		}
		tx.ID = id
		if err := repo.InsertItems(ctx, id, items); err != nil {
			return err
		}
		for _, item := range items {
			if err := repo.ApplyStockDelta(ctx, item.ProductID, sign*item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("transaction unit of work failed",
			slog.String("type", string(input.Type)),
			slog.Any("error", err))
		return Result{}, fmt.Errorf("transactions: record: %w", shared.ErrPersistence)
	}

	for i := range items {
		items[i].TransactionID = tx.ID
	}
	tx.Items = items

	s.notifyInvalidation(ctx, "transactions", "products", "reports", input.Type.CacheTag())
	s.recordAudit(ctx, input.ActorID, fmt.Sprintf("transactions:%s", input.Type.CacheTag()), "transaction", tx)

	return Result{Transaction: tx, Redirect: input.Type.RedirectTarget()}, nil
}

// Adjust validates and atomically persists a manual stock correction.
// QtyChange already carries its sign; negative stock is permitted.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (Adjustment, error) {
	if err := validateAdjustment(input); err != nil {
		return Adjustment{}, err
	}

	adj := Adjustment{
		ProductID: input.ProductID,
		QtyChange: input.QtyChange,
		Reason:    input.Reason,
		UserID:    input.ActorID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		created, err := repo.InsertAdjustment(ctx, adj)
		if err != nil {
			return err
		}
		adj = created
		return repo.ApplyStockDelta(ctx, input.ProductID, input.QtyChange)
	})
	if err != nil {
		s.logger.Error("adjustment unit of work failed",
			slog.Int64("product_id", input.ProductID),
			slog.Any("error", err))
		return Adjustment{}, fmt.Errorf("transactions: adjust: %w", shared.ErrPersistence)
	}

	s.notifyInvalidation(ctx, "products", "reports")
	s.recordAudit(ctx, input.ActorID, "transactions:adjust", "adjustment", adj)

	return adj, nil
}

// notifyInvalidation signals the caching layer after a successful commit.
// Failures are logged and swallowed; they must never undo the write.
func (s *Service) notifyInvalidation(ctx context.Context, tags ...string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, tags...); err != nil {
		s.logger.Warn("cache invalidation failed", slog.Any("tags", tags), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity string, record any) {
	if s.audit == nil {
		return
	}
	var entityID string
	meta := map[string]any{}
	switch v := record.(type) {
	case Transaction:
		entityID = fmt.Sprintf("%d", v.ID)
		meta["code"] = v.Code
		meta["total"] = v.Total.String()
		meta["lines"] = len(v.Items)
	case Adjustment:
		entityID = fmt.Sprintf("%d", v.ID)
		meta["product_id"] = v.ProductID
		meta["qty_change"] = v.QtyChange
		meta["reason"] = v.Reason
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed",
			slog.String("action", action), slog.Any("error", err))
	}
}

func validateTransaction(input TransactionInput) error {
	if !input.Type.Valid() {
		return shared.NewValidationError("type")
	}
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	var fields []string
	for i, item := range input.Items {
		if !monetary(item.Price) {
			fields = append(fields, fmt.Sprintf("items[%d].price", i))
		}
		if !monetary(item.Discount) {
			fields = append(fields, fmt.Sprintf("items[%d].discount", i))
		}
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields...)
	}
	return nil
}

func validateAdjustment(input AdjustmentInput) error {
	return shared.ValidateStruct(input)
}

// monetary reports whether d fits a two-decimal money column.
func monetary(d decimal.Decimal) bool {
	return d.Exponent() >= -2
}
