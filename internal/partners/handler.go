package partners

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocklane/stocklane/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the partner directory.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a partners handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers supplier and customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.listKind(KindSupplier))
	r.Post("/suppliers", h.createKind(KindSupplier))
	r.Get("/customers", h.listKind(KindCustomer))
	r.Post("/customers", h.createKind(KindCustomer))
}

func (h *Handler) listKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.service.List(r.Context(), kind)
		if err != nil {
			h.logger.Error("list partners failed", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}

func (h *Handler) createKind(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PartnerInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
		partner, err := h.service.Create(r.Context(), kind, input)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, partner)
	}
}
