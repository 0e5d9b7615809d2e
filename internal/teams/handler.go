package teams

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/platform/httpx"
)

// Handler exposes team and tool-access endpoints.
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

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermTeamToolsView))
		r.Get("/", h.listTeams)
		r.Get("/{teamID}/tools", h.listToolAccess)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermTeamToolsManage))
		r.Post("/{teamID}/tools", h.grantTool)
		r.Delete("/{teamID}/tools/{toolID}", h.revokeTool)
	})
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.ListTeams(r.Context())
	if err != nil {
		h.logger.Error("list teams", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, teams)
}

func (h *Handler) listToolAccess(w http.ResponseWriter, r *http.Request) {
	accesses, err := h.service.ListToolAccess(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		h.logger.Error("list tool access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accesses)
}

type grantToolRequest struct {
	ToolID string `json:"toolId" validate:"required"`
}

func (h *Handler) grantTool(w http.ResponseWriter, r *http.Request) {
	var req grantToolRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "toolId is required")
		return
	}

	access, err := h.service.GrantTool(r.Context(), chi.URLParam(r, "teamID"), req.ToolID)
	if err != nil {
		if errors.Is(err, ErrAccessExists) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "tool access already granted for this team")
			return
		}
		h.logger.Error("grant tool access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, access)
}

func (h *Handler) revokeTool(w http.ResponseWriter, r *http.Request) {
	err := h.service.RevokeTool(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "toolID"))
	if err != nil {
		if errors.Is(err, ErrAccessNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "tool access record not found")
			return
		}
		h.logger.Error("revoke tool access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "tool access revoked successfully"})
}
