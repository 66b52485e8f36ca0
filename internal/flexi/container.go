package flexi

import (
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"gorm.io/gorm"
)

type FlexiContainer struct {
	Repo    CreditRepository
	Service FlexiService
	Handler *Handler
}

func NewFlexiContainer(db *gorm.DB, caps capability.Set, boards BoardLister, hours HoursByClient) *FlexiContainer {
	repo := NewRepository(db)
	service := NewService(repo, boards, hours, caps)

	return &FlexiContainer{
		Repo:    repo,
		Service: service,
		Handler: NewHandler(service),
	}
}
