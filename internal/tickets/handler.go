package tickets

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

// Handler exposes ticket endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	mw          authz.Middleware
	idempotency *shared.IdempotencyStore
	validate    *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, idempotency: idempotency, validate: validator.New()}
}

// MountRoutes registers ticket routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermTicketsView))
		r.Get("/", h.listTickets)
		r.Get("/{ticketID}", h.getTicket)
		r.Get("/{ticketID}/replies", h.listReplies)
		r.Post("/{ticketID}/replies", h.addReply)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermTicketsManage))
		r.Post("/{ticketID}/convert-to-task", h.convertToTask)
	})
}

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:     r.URL.Query().Get("status"),
		Priority:   r.URL.Query().Get("priority"),
		AssigneeID: r.URL.Query().Get("assignee"),
	}
	list, err := h.service.ListTickets(r.Context(), filter)
	if err != nil {
		h.logger.Error("list tickets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.GetTicket(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.respondTicketError(w, err, "get ticket")
		return
	}
	httpx.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) listReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.service.ListReplies(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.respondTicketError(w, err, "list replies")
		return
	}
	if replies == nil {
		replies = []Reply{}
	}
	httpx.JSON(w, http.StatusOK, replies)
}

type addReplyRequest struct {
	Message        string `json:"message" validate:"required"`
	IsInternalNote bool   `json:"isInternalNote"`
}

func (h *Handler) addReply(w http.ResponseWriter, r *http.Request) {
	var req addReplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "message is required")
		return
	}
	actor := authz.ActorFromContext(r.Context())
	reply, err := h.service.AddReply(r.Context(), chi.URLParam(r, "ticketID"), actor.UserID, req.Message, req.IsInternalNote)
	if err != nil {
		h.respondTicketError(w, err, "add reply")
		return
	}
	httpx.JSON(w, http.StatusCreated, reply)
}

func (h *Handler) convertToTask(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if key != "" {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "tickets.convert"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Conflict", "request already processed")
				return
			}
			h.logger.Error("idempotency check", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}

	task, err := h.service.ConvertToTask(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		if key != "" && !errors.Is(err, ErrAlreadyConverted) {
			if delErr := h.idempotency.Delete(r.Context(), key); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		h.respondTicketError(w, err, "convert ticket")
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) respondTicketError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "ticket not found")
	case errors.Is(err, ErrAlreadyConverted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
