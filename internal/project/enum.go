package project

type ProjectStatus string

const (
	StatusActive   ProjectStatus = "active"
	StatusArchived ProjectStatus = "archived"
	StatusLocked   ProjectStatus = "locked"
	StatusLead     ProjectStatus = "lead"
)

var AllStatuses = []ProjectStatus{
	StatusActive,
	StatusArchived,
	StatusLocked,
	StatusLead,
}

func (s ProjectStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// LeadDateField selects which date places a lead inside a reporting window.
type LeadDateField string

const (
	LeadDateCreated LeadDateField = "created"
	LeadDateDue     LeadDateField = "due"
)
