package scorecard

import (
	"time"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "metric_categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Metric struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"category_id"`
	Name             string           `gorm:"not null" json:"name"`
	Unit             string           `json:"unit"`
	IsAutomated      bool             `gorm:"not null;default:false" json:"is_automated"`
	AutomationSource AutomationSource `gorm:"type:text" json:"automation_source,omitempty"`
	AutomationConfig datatypes.JSON   `json:"automation_config,omitempty"`
	TargetValue      *float64         `json:"target_value,omitempty"`
	DisplayOrder     int              `gorm:"not null;default:0" json:"display_order"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (m *Metric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// WeeklyEntry is the persisted value of one metric for one Monday-start week.
type WeeklyEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MetricID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_entries_metric_week,priority:1" json:"metric_id"`
	WeekStartDate util.Date  `gorm:"not null;uniqueIndex:idx_weekly_entries_metric_week,priority:2;index" json:"week_start_date"`
	Value         float64    `gorm:"type:numeric(14,2);not null;default:0" json:"value"`
	TargetValue   *float64   `json:"target_value,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (e *WeeklyEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
