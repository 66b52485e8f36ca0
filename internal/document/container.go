package document

import (
	"time"

	"github.com/saulo-duarte/studio-ops/internal/capability"
	"gorm.io/gorm"
)

type DocumentContainer struct {
	Repo    DocumentRepository
	Service DocumentService
	Handler *Handler
}

// NewDocumentContainer wires the document service. store may be nil when no
// bucket is configured.
func NewDocumentContainer(db *gorm.DB, caps capability.Set, store ObjectStore, expiry time.Duration) *DocumentContainer {
	repo := NewRepository(db)
	service := NewService(repo, store, caps, expiry)

	return &DocumentContainer{
		Repo:    repo,
		Service: service,
		Handler: NewHandler(service),
	}
}
