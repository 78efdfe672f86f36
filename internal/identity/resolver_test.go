package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stocklane/stocklane/internal/shared"
)

type fakeUserRepo struct {
	adminID int64
	err     error
}

func (f *fakeUserRepo) FirstAdminID(context.Context) (int64, error) {
	return f.adminID, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolvePrefersSessionUser(t *testing.T) {
	resolver := NewResolver(&fakeUserRepo{adminID: 9}, discardLogger())

	sess := &shared.Session{}
	sess.SetUser(42)
	ctx := shared.ContextWithSession(context.Background(), sess)

	require.EqualValues(t, 42, resolver.Resolve(ctx))
}

func TestResolveFallsBackToFirstAdmin(t *testing.T) {
	resolver := NewResolver(&fakeUserRepo{adminID: 9}, discardLogger())

	require.EqualValues(t, 9, resolver.Resolve(context.Background()))
}

func TestResolvePlaceholderWhenNoAdmin(t *testing.T) {
	resolver := NewResolver(&fakeUserRepo{err: shared.ErrNotFound}, discardLogger())

	require.Equal(t, PlaceholderActorID, resolver.Resolve(context.Background()))
}

func TestResolvePlaceholderOnLookupError(t *testing.T) {
	resolver := NewResolver(&fakeUserRepo{err: errors.New("connection refused")}, discardLogger())

	require.Equal(t, PlaceholderActorID, resolver.Resolve(context.Background()))
}
