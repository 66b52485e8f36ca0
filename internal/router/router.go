package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/document"
	"github.com/saulo-duarte/studio-ops/internal/flexi"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/middlewares"
	"github.com/saulo-duarte/studio-ops/internal/project"
	projectsync "github.com/saulo-duarte/studio-ops/internal/project_sync"
	"github.com/saulo-duarte/studio-ops/internal/scorecard"
	"github.com/saulo-duarte/studio-ops/internal/task"
	"github.com/saulo-duarte/studio-ops/internal/telemetry"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	"github.com/saulo-duarte/studio-ops/internal/user"
)

type RouterConfig struct {
	CORSOrigins  []string
	CronSecret   string
	Capabilities capability.Set

	UserHandler      *user.Handler
	ProjectHandler   *project.Handler
	TaskHandler      *task.Handler
	TimeEntryHandler *timeentry.Handler
	MappingHandler   *mapping.Handler
	ScorecardHandler *scorecard.Handler
	SyncHandler      *projectsync.Handler
	FlexiHandler     *flexi.Handler
	DocumentHandler  *document.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Cors(cfg.CORSOrigins))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Handle("/metrics", telemetry.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		config.JSON(w, http.StatusOK, map[string]interface{}{
			"status":       "ok",
			"capabilities": cfg.Capabilities,
		})
	})

	r.Route("/cron", func(r chi.Router) {
		r.Use(auth.CronSecret(cfg.CronSecret))
		r.Post("/scorecard", cfg.ScorecardHandler.Cron)
		r.Post("/sync", cfg.SyncHandler.Cron)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/projects", project.Routes(cfg.ProjectHandler))
		r.Mount("/time-entries", timeentry.Routes(cfg.TimeEntryHandler))
		r.Mount("/mappings", mapping.Routes(cfg.MappingHandler))
		r.Mount("/scorecard", scorecard.Routes(cfg.ScorecardHandler))
		r.Mount("/sync", projectsync.Routes(cfg.SyncHandler))
		r.Mount("/flexi", flexi.Routes(cfg.FlexiHandler))
		r.Mount("/documents", document.Routes(cfg.DocumentHandler))

		r.Get("/projects/{projectId}/tasks", cfg.TaskHandler.ListByProject)
	})
	return r
}
