package transactions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocklane/stocklane/internal/platform/httpx"
)

// ActorResolver supplies the acting user for attribution.
type ActorResolver interface {
	Resolve(ctx context.Context) int64
}

// Handler wires HTTP endpoints for the recorder.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	resolver ActorResolver
}

// NewHandler constructs a transactions handler.
func NewHandler(logger *slog.Logger, service *Service, resolver ActorResolver) *Handler {
	return &Handler{logger: logger, service: service, resolver: resolver}
}

// MountRoutes registers recorder routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/transactions", h.record)
	r.Post("/adjustments", h.adjust)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var input TransactionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	input.ActorID = h.resolver.Resolve(r.Context())

	result, err := h.service.Record(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	// Successful sales and purchases direct the caller to the listing view.
	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var input AdjustmentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	input.ActorID = h.resolver.Resolve(r.Context())

	if _, err := h.service.Adjust(r.Context(), input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}
