package timeentry

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/gorm"
)

type TimeEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_time_entries_user_task_date,priority:1" json:"user_id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_time_entries_user_task_date,priority:2;index" json:"task_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Date      util.Date `gorm:"not null;uniqueIndex:idx_time_entries_user_task_date,priority:3;index" json:"date"`
	Hours     float64   `gorm:"type:numeric(6,2);not null" json:"hours"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Task    *task.Task       `gorm:"foreignKey:TaskID;constraint:OnDelete:RESTRICT" json:"-"`
	Project *project.Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
