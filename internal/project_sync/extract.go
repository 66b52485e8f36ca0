package projectsync

import (
	"encoding/json"

	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/saulo-duarte/studio-ops/internal/project"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"gorm.io/datatypes"
)

// fields are the semantic attributes pulled out of an item through the column mappings.
// mapped holds the fields that resolved to a column; only those may be written back.
type fields struct {
	ClientName     string
	QuotedHours    *float64
	QuoteValue     *float64
	UpstreamStatus string
	DueDate        *util.Date
	TimelineStart  *util.Date
	TimelineEnd    *util.Date

	mapped map[mapping.Field]bool
}

func (f fields) has(field mapping.Field) bool {
	return f.mapped[field]
}

// extract reads every mapped field of item. Unmapped fields are left out of
// mapped; a mapped column with an empty cell yields the zero value.
func extract(item *monday.Item, boardID string, idx mapping.Index) fields {
	f := fields{mapped: make(map[mapping.Field]bool)}
	cell := func(field mapping.Field) *monday.ColumnValue {
		id := idx.ColumnID(field, boardID)
		if id == "" {
			return nil
		}
		f.mapped[field] = true
		return item.Column(id)
	}

	if v := monday.Decode(cell(mapping.FieldClient)); !v.IsEmpty() {
		f.ClientName = v.Text
	}
	if n, ok := monday.Number(cell(mapping.FieldQuotedHours)); ok {
		f.QuotedHours = &n
	}
	if n, ok := monday.Number(cell(mapping.FieldQuoteValue)); ok {
		f.QuoteValue = &n
	}
	if v := monday.Decode(cell(mapping.FieldStatus)); !v.IsEmpty() {
		f.UpstreamStatus = v.Text
	}

	switch v := monday.Decode(cell(mapping.FieldDueDate)); v.Kind {
	case monday.KindDate:
		f.DueDate = &v.Date
	case monday.KindTimeline:
		f.DueDate = &v.To
	}

	switch v := monday.Decode(cell(mapping.FieldTimeline)); v.Kind {
	case monday.KindTimeline:
		f.TimelineStart, f.TimelineEnd = &v.From, &v.To
	case monday.KindDate:
		f.TimelineStart, f.TimelineEnd = &v.Date, &v.Date
	}
	return f
}

// apply copies the mapped fields onto p and leaves the rest untouched.
func (f fields) apply(p *project.Project) {
	if f.has(mapping.FieldClient) {
		p.ClientName = f.ClientName
	}
	if f.has(mapping.FieldQuotedHours) {
		p.QuotedHours = f.QuotedHours
	}
	if f.has(mapping.FieldQuoteValue) {
		p.QuoteValue = f.QuoteValue
	}
	if f.has(mapping.FieldStatus) {
		p.UpstreamStatus = f.UpstreamStatus
	}
	if f.has(mapping.FieldDueDate) {
		p.DueDate = f.DueDate
	}
	if f.has(mapping.FieldTimeline) {
		p.TimelineStart, p.TimelineEnd = f.TimelineStart, f.TimelineEnd
	}
}

// rawData keeps the item's column values for fields added to the mappings later.
func rawData(item *monday.Item) datatypes.JSON {
	payload := map[string]interface{}{
		"id":            item.ID,
		"name":          item.Name,
		"state":         item.State,
		"column_values": item.ColumnValues,
	}
	if item.Group != nil {
		payload["group"] = item.Group
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
