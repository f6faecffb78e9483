package returns

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rxledger/rxledger/internal/observability"
	"github.com/rxledger/rxledger/internal/platform/httpx"
	"github.com/rxledger/rxledger/internal/shared"
)

// Handler manages purchase-return endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validate: validator.New()}
}

// MountRoutes registers returns routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledgers", h.listLedgers)
	r.Post("/notes", h.createNote)
	r.Get("/notes", h.listNotes)
	r.Get("/notes/{id}", h.getNote)
	r.Post("/notes/{id}/complete", h.completeNote)
	r.Post("/notes/{id}/reject", h.rejectNote)
}

func (h *Handler) listLedgers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplier_id"), 10, 64)
	orderID, _ := strconv.ParseInt(r.URL.Query().Get("purchase_order_id"), 10, 64)
	filters := LedgerFilters{
		SupplierID:      supplierID,
		PurchaseOrderID: orderID,
		Status:          LedgerStatus(r.URL.Query().Get("status")),
	}
	ws, err := h.service.ListReturnableLedgers(r.Context(), filters, page, perPage)
	if err != nil {
		h.logger.Error("list returnable ledgers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ws)
}

type createNoteRequest struct {
	PurchaseOrderID int64  `json:"purchase_order_id" validate:"required,gt=0"`
	Number          string `json:"number" validate:"omitempty,max=40"`
	ActorID         int64  `json:"actor_id" validate:"omitempty,gte=0"`
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	note, err := h.service.CreateReturnNote(r.Context(), CreateNoteInput{
		PurchaseOrderID: req.PurchaseOrderID,
		Number:          req.Number,
		ActorID:         req.ActorID,
	})
	if err != nil {
		h.respondDomainError(w, "create return note", err)
		return
	}
	h.metrics.NoteCreated()
	httpx.JSON(w, http.StatusCreated, noteResponse(note))
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplier_id"), 10, 64)
	filters := NoteFilters{
		SupplierID: supplierID,
		Status:     NoteStatus(r.URL.Query().Get("status")),
	}
	notes, pagination, err := h.service.ListReturnNotes(r.Context(), filters, page, perPage)
	if err != nil {
		h.logger.Error("list return notes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(notes))
	for _, note := range notes {
		items = append(items, noteResponse(note))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notes": items, "pagination": pagination})
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	note, lines, err := h.service.GetReturnNote(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, "get return note", err)
		return
	}
	resp := noteResponse(note)
	resp["ledgers"] = lines
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) completeNote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.CompleteNote(r.Context(), id, actorFrom(r)); err != nil {
		h.respondDomainError(w, "complete return note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": NoteStatusCompleted})
}

func (h *Handler) rejectNote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.RejectNote(r.Context(), id, actorFrom(r)); err != nil {
		h.respondDomainError(w, "reject return note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": NoteStatusRejected})
}

func (h *Handler) respondDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyGroup), errors.Is(err, ErrMalformedAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err)+": "+err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.RespondError(w, httpx.ErrConflict)
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.RespondError(w, httpx.ErrDuplicate)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func noteResponse(note ReturnNote) map[string]any {
	return map[string]any{
		"id":                note.ID,
		"number":            note.Number,
		"purchase_order_id": note.PurchaseOrderID,
		"supplier_id":       note.SupplierID,
		"status":            note.Status,
		"total_amount":      note.TotalAmount,
		"total_tax":         note.TotalTax,
		"created_at":        note.CreatedAt,
	}
}

func actorFrom(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}
