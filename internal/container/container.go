package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/database"
	"github.com/saulo-duarte/studio-ops/internal/document"
	"github.com/saulo-duarte/studio-ops/internal/flexi"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/saulo-duarte/studio-ops/internal/project"
	projectsync "github.com/saulo-duarte/studio-ops/internal/project_sync"
	"github.com/saulo-duarte/studio-ops/internal/router"
	"github.com/saulo-duarte/studio-ops/internal/scorecard"
	"github.com/saulo-duarte/studio-ops/internal/task"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	"github.com/saulo-duarte/studio-ops/internal/user"
	"github.com/saulo-duarte/studio-ops/internal/xero"
)

type Container struct {
	Settings     *config.Settings
	Capabilities capability.Set

	UserContainer      *user.UserContainer
	ProjectContainer   *project.ProjectContainer
	TaskContainer      *task.TaskContainer
	TimeEntryContainer *timeentry.TimeEntryContainer
	MappingContainer   *mapping.MappingContainer
	ScorecardContainer *scorecard.ScorecardContainer
	SyncContainer      *projectsync.SyncContainer
	FlexiContainer     *flexi.FlexiContainer
	DocumentContainer  *document.DocumentContainer
	XeroClient         *xero.Client
}

// New loads settings, connects to the database, applies migrations when
// asked to and wires every feature against the detected capabilities.
func New(ctx context.Context) (*Container, error) {
	config.Init()
	auth.Init()
	config.InitCrypto()

	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if err := config.Connect(ctx, settings.DatabaseDSN); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if settings.RunMigrations {
		if err := database.Up(config.DB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return Build(ctx, settings)
}

// Build wires the features on an already connected config.DB.
func Build(ctx context.Context, settings *config.Settings) (*Container, error) {
	log := config.WithContext(ctx)
	db := config.DB
	caps := capability.Detect(ctx, db)
	httpClient := &http.Client{Timeout: settings.HTTPTimeout}

	userContainer := user.NewUserContainer(db)
	taskContainer := task.NewTaskContainer(db)
	projectRepo := project.NewRepository(db)
	timeEntryContainer := timeentry.NewTimeEntryContainer(db, taskContainer.Repo, projectRepo)
	projectContainer := project.NewProjectContainer(db, timeEntryContainer.Repo)
	mappingContainer := mapping.NewMappingContainer(db, caps)

	var fetcher monday.Fetcher
	if mondayClient := monday.NewClient(settings.Monday, httpClient); mondayClient.Configured() {
		fetcher = mondayClient
	} else {
		log.Warn("Monday API token not set, project sync disabled")
	}

	xeroClient := xero.NewClient(xero.NewRepository(db), xero.NewOAuthConfig(settings.Xero), settings.Xero, httpClient)
	var finance xero.ReportSource
	if caps.XeroConnection && settings.Xero.ClientID != "" {
		finance = xeroClient
	} else {
		log.Warn("Xero not configured, financial metrics disabled")
	}

	scorecardContainer := scorecard.NewScorecardContainer(
		db,
		caps,
		timeEntryContainer.Repo,
		projectContainer.Repo,
		finance,
		settings.RecentWeeks,
	)

	syncContainer := projectsync.NewSyncContainer(
		db,
		caps,
		mappingContainer.Repo,
		fetcher,
		projectContainer.Repo,
		taskContainer.Repo,
		timeEntryContainer.Repo,
	)

	flexiContainer := flexi.NewFlexiContainer(db, caps, mappingContainer.Repo, timeEntryContainer.Repo)

	store, err := document.NewMinioStore(settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	documentContainer := document.NewDocumentContainer(db, caps, store, settings.Storage.URLExpiry)

	return &Container{
		Settings:           settings,
		Capabilities:       caps,
		UserContainer:      userContainer,
		ProjectContainer:   projectContainer,
		TaskContainer:      taskContainer,
		TimeEntryContainer: timeEntryContainer,
		MappingContainer:   mappingContainer,
		ScorecardContainer: scorecardContainer,
		SyncContainer:      syncContainer,
		FlexiContainer:     flexiContainer,
		DocumentContainer:  documentContainer,
		XeroClient:         xeroClient,
	}, nil
}

func (c *Container) Router() http.Handler {
	return router.New(router.RouterConfig{
		CORSOrigins:      c.Settings.CORSOrigins,
		CronSecret:       c.Settings.CronSecret,
		Capabilities:     c.Capabilities,
		UserHandler:      c.UserContainer.Handler,
		ProjectHandler:   c.ProjectContainer.Handler,
		TaskHandler:      c.TaskContainer.Handler,
		TimeEntryHandler: c.TimeEntryContainer.Handler,
		MappingHandler:   c.MappingContainer.Handler,
		ScorecardHandler: c.ScorecardContainer.Handler,
		SyncHandler:      c.SyncContainer.Handler,
		FlexiHandler:     c.FlexiContainer.Handler,
		DocumentHandler:  c.DocumentContainer.Handler,
	})
}
