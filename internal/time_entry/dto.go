package timeentry

import (
	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
)

type CreateTimeEntryDTO struct {
	TaskID uuid.UUID `json:"task_id"`
	Date   util.Date `json:"date"`
	Hours  float64   `json:"hours"`
	Notes  string    `json:"notes"`
}

type UpdateTimeEntryDTO struct {
	Hours *float64 `json:"hours"`
	Notes *string  `json:"notes"`
}
