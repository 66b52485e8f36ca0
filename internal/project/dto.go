package project

import (
	"github.com/google/uuid"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
)

// LeadQuery selects leads whose chosen date falls inside [From, To].
type LeadQuery struct {
	From      util.Date
	To        util.Date
	DateField LeadDateField
}

type HoursSummary struct {
	ProjectID    uuid.UUID `json:"project_id"`
	ProjectHours float64   `json:"project_hours"`
	TaskHours    float64   `json:"task_hours"`
	TotalHours   float64   `json:"total_hours"`
	QuotedHours  *float64  `json:"quoted_hours,omitempty"`
}

type ProjectDetail struct {
	Project
	Hours HoursSummary `json:"hours"`
}
