// Package identity resolves the acting user attributed to transactions and
// adjustments. Resolution order: session user, first admin user, placeholder.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stocklane/stocklane/internal/shared"
)

// PlaceholderActorID marks records created without a resolvable user. It maps
// to a NULL user reference in storage. The silent fallback mis-attributes
// records when no admin exists; it is kept for compatibility but logged
// loudly so operators can spot it.
const PlaceholderActorID int64 = 0

// RepositoryPort looks up users for attribution.
type RepositoryPort interface {
	FirstAdminID(ctx context.Context) (int64, error)
}

// Resolver derives the acting user id for a request.
type Resolver struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewResolver builds a Resolver.
func NewResolver(repo RepositoryPort, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve returns the acting user id for ctx. The id is handed to services as
// an explicit parameter; no service reads the session itself.
func (r *Resolver) Resolve(ctx context.Context) int64 {
	if sess := shared.SessionFromContext(ctx); sess.User() != 0 {
		return sess.User()
	}
	if r.repo != nil {
		id, err := r.repo.FirstAdminID(ctx)
		if err == nil && id != 0 {
			return id
		}
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			r.logger.Error("admin lookup failed during actor resolution", slog.Any("error", err))
		}
	}
	r.logger.Warn("no acting user resolvable, falling back to placeholder attribution")
	return PlaceholderActorID
}
