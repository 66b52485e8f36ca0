package task

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusActive   TaskStatus = "active"
	StatusArchived TaskStatus = "archived"
)

// Task mirrors one Monday.com subitem of a project item.
type Task struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalItemID string         `gorm:"column:external_item_id;not null;index" json:"external_item_id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	BoardID        string         `json:"board_id"`
	Name           string         `gorm:"not null" json:"name"`
	Status         TaskStatus     `gorm:"type:text;not null;default:active" json:"status"`
	QuotedHours    *float64       `json:"quoted_hours,omitempty"`
	RawData        datatypes.JSON `json:"-"`
	LastSyncedAt   *time.Time     `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
