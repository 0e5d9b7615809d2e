package projects

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/platform/httpx"
)

// Handler exposes project assignment endpoints.
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

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermAssignmentsView))
		r.Get("/", h.listAssignments)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermAssignmentsManage))
		r.Post("/", h.createAssignment)
		r.Delete("/", h.deleteAssignment)
	})
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAssignments(r.Context(), r.URL.Query().Get("teamId"))
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Assignment{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

type assignmentRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	TeamID    string `json:"teamId" validate:"required"`
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "projectId and teamId are required")
		return
	}
	a, err := h.service.Assign(r.Context(), req.ProjectID, req.TeamID)
	if err != nil {
		if errors.Is(err, ErrAssignmentExists) {
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
			return
		}
		h.logger.Error("create assignment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "projectId and teamId are required")
		return
	}
	if err := h.service.Unassign(r.Context(), req.ProjectID, req.TeamID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("delete assignment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
