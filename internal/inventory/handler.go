package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rxledger/rxledger/internal/platform/httpx"
)

// Handler serves inventory read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock-card", h.stockCard)
}

func (h *Handler) stockCard(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	batchNo := r.URL.Query().Get("batch_no")

	entries, err := h.service.GetStockCard(r.Context(), productID, batchNo)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		h.logger.Error("stock card", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"batch_no":   batchNo,
		"entries":    entries,
	})
}
