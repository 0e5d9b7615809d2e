package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/upteky/upteky-central/internal/platform/httpx"
	"github.com/upteky/upteky-central/internal/shared"
)

// Handler exposes session endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, validate: validator.New()}
}

// MountRoutes registers session routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session", h.createSession)
	r.Delete("/session", h.destroySession)
}

type createSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type sessionResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "token is required")
		return
	}

	claims, err := h.service.Exchange(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired), errors.Is(err, shared.ErrInvalidClaims):
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		default:
			h.logger.Error("exchange token", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session unavailable")
		return
	}
	sess.SetClaims(claims.UserID, claims.Role)

	httpx.JSON(w, http.StatusCreated, sessionResponse{UserID: claims.UserID, Role: claims.Role})
}

func (h *Handler) destroySession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}
