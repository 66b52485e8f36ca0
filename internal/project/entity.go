package project

import (
	"time"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project mirrors one Monday.com item. Leads live here too, with StatusLead.
type Project struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalItemID string         `gorm:"column:external_item_id;not null;index" json:"external_item_id"`
	BoardID        string         `gorm:"column:board_id;index" json:"board_id"`
	Name           string         `gorm:"not null" json:"name"`
	Status         ProjectStatus  `gorm:"type:text;not null;default:active;index" json:"status"`
	ClientName     string         `json:"client_name"`
	QuotedHours    *float64       `json:"quoted_hours,omitempty"`
	QuoteValue     *float64       `json:"quote_value,omitempty"`
	UpstreamStatus string         `json:"upstream_status,omitempty"`
	CreatedOn      *util.Date     `gorm:"column:upstream_created_on" json:"created_on,omitempty"`
	DueDate        *util.Date     `json:"due_date,omitempty"`
	TimelineStart  *util.Date     `json:"timeline_start,omitempty"`
	TimelineEnd    *util.Date     `json:"timeline_end,omitempty"`
	RawData        datatypes.JSON `json:"-"`
	LastSyncedAt   *time.Time     `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Project) IsLocked() bool {
	return p.Status == StatusLocked
}
