package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ColumnMapping points a semantic field at a Monday column. A nil BoardID
// makes it the global fallback for that field.
type ColumnMapping struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ColumnType       Field     `gorm:"type:text;not null;uniqueIndex:idx_column_mappings_type_board,priority:1" json:"column_type"`
	BoardID          *string   `gorm:"uniqueIndex:idx_column_mappings_type_board,priority:2" json:"board_id"`
	ExternalColumnID string    `gorm:"not null" json:"external_column_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (m *ColumnMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *ColumnMapping) IsGlobal() bool {
	return m.BoardID == nil || *m.BoardID == ""
}

type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoardID   string    `gorm:"column:board_id;not null;uniqueIndex" json:"board_id"`
	Name      string    `json:"name"`
	Kind      BoardKind `gorm:"type:text;not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Board) TableName() string {
	return "monday_boards"
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
