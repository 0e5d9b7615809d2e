package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/upteky/upteky-central/internal/attendance"
	"github.com/upteky/upteky-central/internal/auth"
	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/projects"
	"github.com/upteky/upteky-central/internal/shared"
	"github.com/upteky/upteky-central/internal/tasks"
	"github.com/upteky/upteky-central/internal/teams"
	"github.com/upteky/upteky-central/internal/tickets"
	"github.com/upteky/upteky-central/internal/timesheets"
	"github.com/upteky/upteky-central/internal/users"
	"github.com/upteky/upteky-central/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	PermissionsHandler *authz.Handler
	AttendanceHandler  *attendance.Handler
	TimesheetHandler   *timesheets.Handler
	TicketHandler      *tickets.Handler
	TaskHandler        *tasks.Handler
	TeamHandler        *teams.Handler
	ProjectHandler     *projects.Handler
	UserHandler        *users.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		r.Route("/timesheets", params.TimesheetHandler.MountRoutes)
		r.Route("/tickets", params.TicketHandler.MountRoutes)
		r.Route("/tasks", params.TaskHandler.MountRoutes)
		r.Route("/teams", params.TeamHandler.MountRoutes)
		r.Route("/project-assignments", params.ProjectHandler.MountRoutes)
		r.Route("/users", params.UserHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
