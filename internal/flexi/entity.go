package flexi

import (
	"time"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/gorm"
)

// Credit is a block of prepaid Flexi-Design hours bought by a client.
type Credit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName  string     `gorm:"not null;index" json:"client_name"`
	Hours       float64    `gorm:"type:numeric(8,2);not null" json:"hours"`
	PurchasedOn util.Date  `gorm:"not null" json:"purchased_on"`
	Notes       string     `json:"notes,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Credit) TableName() string {
	return "flexi_credits"
}

func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Balance is what a client has left of their purchased hours.
type Balance struct {
	ClientName string     `json:"client_name"`
	Purchased  float64    `json:"purchased_hours"`
	Used       float64    `json:"used_hours"`
	Remaining  float64    `json:"remaining_hours"`
	LastBought *util.Date `json:"last_purchased_on,omitempty"`
}
