package scorecard

import (
	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/datatypes"
)

// SyncResult reports a reconcile run. A run with errors still reports the
// entries it managed to write.
type SyncResult struct {
	Synced int      `json:"synced"`
	Errors []string `json:"errors"`
	Weeks  []string `json:"weeks"`
}

func (r *SyncResult) merge(other SyncResult) {
	r.Synced += other.Synced
	r.Errors = append(r.Errors, other.Errors...)
	r.Weeks = append(r.Weeks, other.Weeks...)
}

// EntryView is one cell of the scorecard grid. Placeholders have an empty ID
// and Saved false; they exist only in the response.
type EntryView struct {
	ID            string     `json:"id"`
	MetricID      uuid.UUID  `json:"metric_id"`
	WeekStartDate util.Date  `json:"week_start_date"`
	Value         float64    `json:"value"`
	TargetValue   *float64   `json:"target_value,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Saved         bool       `json:"saved"`
	UpdatedBy     *uuid.UUID `json:"updated_by,omitempty"`
}

type WeekEntries struct {
	WeekStart util.Date   `json:"week_start"`
	Entries   []EntryView `json:"entries"`
}

type SaveEntryDTO struct {
	MetricID    uuid.UUID `json:"metric_id"`
	WeekStart   util.Date `json:"week_start_date"`
	Value       float64   `json:"value"`
	TargetValue *float64  `json:"target_value"`
	Notes       *string   `json:"notes"`
}

type SaveCategoryDTO struct {
	ID           *uuid.UUID `json:"id"`
	Name         string     `json:"name"`
	DisplayOrder int        `json:"display_order"`
}

type SaveMetricDTO struct {
	ID               *uuid.UUID       `json:"id"`
	CategoryID       uuid.UUID        `json:"category_id"`
	Name             string           `json:"name"`
	Unit             string           `json:"unit"`
	IsAutomated      bool             `json:"is_automated"`
	AutomationSource AutomationSource `json:"automation_source"`
	AutomationConfig datatypes.JSON   `json:"automation_config"`
	TargetValue      *float64         `json:"target_value"`
	DisplayOrder     int              `json:"display_order"`
}

type SyncRequest struct {
	Week  *util.Date `json:"week"`
	Weeks int        `json:"weeks"`
}
