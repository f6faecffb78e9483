package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rxledger/rxledger/internal/platform/httpx"
)

// Handler manages masterdata endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers masterdata routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.listSuppliers)
	r.Get("/suppliers/{id}", h.getSupplier)
	r.Get("/return-reasons", h.listReasons)
	r.Post("/return-reasons", h.createReason)
	r.Post("/return-reasons/{id}/deactivate", h.deactivateReason)
	r.Get("/lookup", h.lookup)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true" || raw == "1"
		filters.IsActive = &active
	}
	suppliers, err := h.service.ListSuppliers(r.Context(), filters)
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get supplier", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) listReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.service.ListReasons(r.Context())
	if err != nil {
		h.logger.Error("list reasons", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reasons": reasons})
}

type createReasonRequest struct {
	Code  string `json:"code" validate:"required,max=32"`
	Label string `json:"label" validate:"required,max=120"`
}

func (h *Handler) createReason(w http.ResponseWriter, r *http.Request) {
	var req createReasonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	reason, err := h.service.CreateReason(r.Context(), ReturnReason{Code: req.Code, Label: req.Label, IsActive: true})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		h.logger.Error("create reason", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reason)
}

func (h *Handler) deactivateReason(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.SetReasonActive(r.Context(), id, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("deactivate reason", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_active": false})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	maps, err := h.service.Lookup(r.Context())
	if err != nil {
		h.logger.Error("lookup maps", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, maps)
}
