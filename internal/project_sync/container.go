package projectsync

import (
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	"gorm.io/gorm"
)

type SyncContainer struct {
	Merger  MergeRepository
	Service SyncService
	Handler *Handler
}

func NewSyncContainer(
	db *gorm.DB,
	caps capability.Set,
	boards BoardSource,
	fetcher monday.Fetcher,
	projects project.ProjectRepository,
	tasks task.TaskRepository,
	entries EntryCounter,
) *SyncContainer {
	merger := NewMergeRepository(db)
	service := NewService(boards, fetcher, projects, tasks, entries, merger, caps)

	return &SyncContainer{
		Merger:  merger,
		Service: service,
		Handler: NewHandler(service),
	}
}
