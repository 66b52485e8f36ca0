package task

import "gorm.io/gorm"

type TaskContainer struct {
	Repo    TaskRepository
	Handler *Handler
}

func NewTaskContainer(db *gorm.DB) *TaskContainer {
	repo := NewRepository(db)

	return &TaskContainer{
		Repo:    repo,
		Handler: NewHandler(repo),
	}
}
