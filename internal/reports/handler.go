package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocklane/stocklane/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the reports module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/low-stock", h.lowStock)
		r.Get("/valuation", h.valuation)
		r.Get("/sales-history", h.salesHistory)
		r.Get("/purchase-history", h.purchaseHistory)
		r.Get("/profit-loss", h.profitLoss)
		r.Get("/top-products", h.topProducts)
		r.Get("/supplier-stats", h.supplierStats)
		r.Get("/customer-stats", h.customerStats)
		r.Get("/supplier-summary", h.supplierSummary)
		r.Get("/customer-summary", h.customerSummary)
		r.Get("/purchase-summary", h.purchaseSummary)
		r.Post("/refresh", h.refresh)
	})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStockReport(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.InventoryValuation(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) salesHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.SalesHistory(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) purchaseHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.PurchaseHistory(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProfitLossFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	summary, err := h.service.ProfitLoss(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parseProfitLossFilter(r *http.Request) (ProfitLossFilter, error) {
	var filter ProfitLossFilter
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ProfitLossFilter{}, err
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ProfitLossFilter{}, err
		}
		filter.To = t
	}
	return filter, nil
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) supplierStats(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	stats, err := h.service.SupplierStats(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) customerStats(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	stats, err := h.service.CustomerStats(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) supplierSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SupplierSummary(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) customerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CustomerSummary(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) purchaseSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.PurchaseSummaryReport(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("report caches refreshed")
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
