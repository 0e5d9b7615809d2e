package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upteky/upteky-central/internal/platform/httpx"
)

// Handler exposes the permission catalog and the role matrix endpoints.
type Handler struct {
	logger *slog.Logger
	store  *Store
	mw     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store, mw Middleware) *Handler {
	return &Handler{logger: logger, store: store, mw: mw}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(PermPermissionsManage))
		r.Get("/", h.listCatalog)
		r.Get("/roles", h.getMatrix)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(RoleAdmin))
		r.Put("/roles", h.updateMatrix)
	})
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": h.store.registry.Catalog()})
}

func (h *Handler) getMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.store.Effective(r.Context())
	if err != nil {
		h.logger.Error("load permission matrix", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make(map[string][]Permission, len(matrix))
	for role, perms := range matrix {
		out[string(role)] = perms
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}

type updateMatrixRequest struct {
	Permissions map[string]map[string]bool `json:"permissions"`
}

func (h *Handler) updateMatrix(w http.ResponseWriter, r *http.Request) {
	var req updateMatrixRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if req.Permissions == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "permissions data is missing")
		return
	}

	submitted := make(Matrix, len(req.Permissions))
	for rawRole, grants := range req.Permissions {
		role, err := ParseRole(rawRole)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		perms := make([]Permission, 0, len(grants))
		for name, granted := range grants {
			if granted {
				perms = append(perms, Permission(name))
			}
		}
		submitted[role] = perms
	}

	if err := h.store.Replace(r.Context(), submitted); err != nil {
		h.logger.Error("replace permission matrix", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role permissions updated successfully"})
}
