package project

import "gorm.io/gorm"

type ProjectContainer struct {
	Repo    ProjectRepository
	Service ProjectService
	Handler *Handler
}

func NewProjectContainer(db *gorm.DB, hours HoursReader) *ProjectContainer {
	repo := NewRepository(db)
	service := NewService(repo, hours)
	handler := NewHandler(service)

	return &ProjectContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
