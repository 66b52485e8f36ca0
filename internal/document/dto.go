package document

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDocumentDTO struct {
	Name        string     `json:"name"`
	ObjectKey   string     `json:"object_key"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	ProjectID   *uuid.UUID `json:"project_id"`
}

type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
