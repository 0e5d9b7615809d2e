package attendance

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/platform/httpx"
	"github.com/upteky/upteky-central/internal/shared"
)

// Handler exposes attendance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	mw       authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, validate: validator.New()}
}

// MountRoutes registers attendance routes. The listing is open to any
// authenticated actor because visibility scoping happens in the
// service; the review transition carries its own reviewer checks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.WithActor)
		r.Get("/", h.listRecords)
		r.Get("/{recordID}/overtime-review", h.reviewHistory)
		r.Put("/{recordID}/overtime-review", h.reviewOvertime)
	})
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	records, err := h.service.ListVisible(r.Context(), actor)
	if err != nil {
		h.logger.Error("list attendance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) reviewHistory(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	logs, err := h.service.ReviewHistory(r.Context(), actor, chi.URLParam(r, "recordID"))
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	if logs == nil {
		logs = []shared.ApprovalLog{}
	}
	httpx.JSON(w, http.StatusOK, logs)
}

type reviewRequest struct {
	Status       string `json:"status" validate:"required,oneof=Approved Rejected"`
	AdminComment string `json:"adminComment"`
}

func (h *Handler) reviewOvertime(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid 'status' provided, must be 'Approved' or 'Rejected'")
		return
	}

	actor := authz.ActorFromContext(r.Context())
	updated, err := h.service.ReviewOvertime(r.Context(), actor, chi.URLParam(r, "recordID"), ReviewDecision(req.Status), req.AdminComment)
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) respondReviewError(w http.ResponseWriter, err error) {
	var stateErr *InvalidStateError
	switch {
	case errors.Is(err, ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrInvalidDecision):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrReviewForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.As(err, &stateErr):
		httpx.Problem(w, http.StatusConflict, "Invalid State", stateErr.Error())
	default:
		h.logger.Error("review overtime", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
