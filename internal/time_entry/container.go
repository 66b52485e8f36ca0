package timeentry

import "gorm.io/gorm"

type TimeEntryContainer struct {
	Repo    TimeEntryRepository
	Service TimeEntryService
	Handler *Handler
}

func NewTimeEntryContainer(db *gorm.DB, tasks TaskLookup, projects ProjectLookup) *TimeEntryContainer {
	repo := NewRepository(db)
	service := NewService(repo, tasks, projects)

	return &TimeEntryContainer{
		Repo:    repo,
		Service: service,
		Handler: NewHandler(service),
	}
}
