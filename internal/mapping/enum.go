package mapping

type Field string

const (
	FieldClient      Field = "client"
	FieldQuotedHours Field = "quoted_hours"
	FieldTimeline    Field = "timeline"
	FieldQuoteValue  Field = "quote_value"
	FieldDueDate     Field = "due_date"
	FieldStatus      Field = "status"
)

var Fields = []Field{FieldClient, FieldQuotedHours, FieldTimeline, FieldQuoteValue, FieldDueDate, FieldStatus}

func (f Field) IsValid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// BoardKind decides the status synced items on a board receive.
type BoardKind string

const (
	BoardMain      BoardKind = "main"
	BoardFlexi     BoardKind = "flexi"
	BoardCompleted BoardKind = "completed"
	BoardLeads     BoardKind = "leads"
)

func (k BoardKind) IsValid() bool {
	switch k {
	case BoardMain, BoardFlexi, BoardCompleted, BoardLeads:
		return true
	}
	return false
}
