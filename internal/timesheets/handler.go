package timesheets

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/platform/httpx"
)

// Handler exposes the role-scoped timesheet listing.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers timesheet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermTimesheetView))
		r.Get("/", h.listTimesheets)
	})
}

func (h *Handler) listTimesheets(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromContext(r.Context())
	entries, err := h.service.ListVisible(r.Context(), actor)
	if err != nil {
		h.logger.Error("list timesheets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
