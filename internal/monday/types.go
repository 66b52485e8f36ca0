package monday

import (
	"time"
)

// Item states reported by Monday. Only active items count as present on a board.
const (
	StateActive   = "active"
	StateArchived = "archived"
	StateDeleted  = "deleted"
)

type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ColumnValue is one cell of an item as returned by the API. Value holds the
// column's JSON payload encoded as a string, or nil for empty cells.
type ColumnValue struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Text  string  `json:"text"`
	Value *string `json:"value"`
}

type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	State        string        `json:"state"`
	CreatedAt    *time.Time    `json:"created_at"`
	Group        *Group        `json:"group"`
	Board        *Board        `json:"board"`
	ColumnValues []ColumnValue `json:"column_values"`
	Subitems     []Item        `json:"subitems"`
}

// IsActive reports whether the item should be treated as present upstream.
// An empty state is treated as active; older API versions omit it.
func (it *Item) IsActive() bool {
	return it.State == "" || it.State == StateActive
}

// Column returns the cell with the given column id, or nil.
func (it *Item) Column(id string) *ColumnValue {
	if id == "" {
		return nil
	}
	for i := range it.ColumnValues {
		if it.ColumnValues[i].ID == id {
			return &it.ColumnValues[i]
		}
	}
	return nil
}

// BoardID returns the id of the board the item lives on, falling back to
// fallback when the API did not include it.
func (it *Item) BoardID(fallback string) string {
	if it.Board != nil && it.Board.ID != "" {
		return it.Board.ID
	}
	return fallback
}
