package mapping

import (
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"gorm.io/gorm"
)

type MappingContainer struct {
	Repo    MappingRepository
	Service MappingService
	Handler *Handler
}

func NewMappingContainer(db *gorm.DB, caps capability.Set) *MappingContainer {
	repo := NewRepository(db)
	service := NewService(repo, caps)

	return &MappingContainer{
		Repo:    repo,
		Service: service,
		Handler: NewHandler(service),
	}
}
