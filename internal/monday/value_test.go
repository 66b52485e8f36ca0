package monday_test

import (
	"testing"

	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/stretchr/testify/assert"
)

func raw(s string) *string { return &s }

func TestNumberFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		cell monday.ColumnValue
		want float64
		ok   bool
	}{
		{"json number", monday.ColumnValue{Value: raw(`42.5`)}, 42.5, true},
		{"quoted number", monday.ColumnValue{Value: raw(`"12"`), Text: "99"}, 12, true},
		{"nested number", monday.ColumnValue{Value: raw(`{"number": 7}`)}, 7, true},
		{"nested amount string", monday.ColumnValue{Value: raw(`{"amount": "$1,200.50"}`)}, 1200.5, true},
		{"double encoded object", monday.ColumnValue{Value: raw(`"{\"value\": 3}"`)}, 3, true},
		{"display text currency", monday.ColumnValue{Text: "£2,500"}, 2500, true},
		{"accounting negative text", monday.ColumnValue{Text: "(300.00)"}, -300, true},
		{"null payload uses text", monday.ColumnValue{Value: raw(`null`), Text: "8 h"}, 8, true},
		{"nothing numeric", monday.ColumnValue{Value: raw(`{"label": "x"}`), Text: "pending"}, 0, false},
		{"empty", monday.ColumnValue{}, 0, false},
		{"quoted NaN", monday.ColumnValue{Value: raw(`"NaN"`), Text: "NaN"}, 0, false},
		{"quoted infinity", monday.ColumnValue{Value: raw(`"Infinity"`)}, 0, false},
		{"text inf", monday.ColumnValue{Text: "-Inf"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := monday.Number(&tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("date payload", func(t *testing.T) {
		v := monday.Decode(&monday.ColumnValue{Type: "date", Value: raw(`{"date":"2024-03-15","changed_at":"x"}`), Text: "2024-03-15"})
		assert.Equal(t, monday.KindDate, v.Kind)
		assert.Equal(t, "2024-03-15", v.Date.String())
	})

	t.Run("timeline payload", func(t *testing.T) {
		v := monday.Decode(&monday.ColumnValue{Type: "timeline", Value: raw(`{"from":"2024-01-01","to":"2024-01-31"}`)})
		assert.Equal(t, monday.KindTimeline, v.Kind)
		assert.Equal(t, "2024-01-01", v.From.String())
		assert.Equal(t, "2024-01-31", v.To.String())
	})

	t.Run("timeline from text", func(t *testing.T) {
		v := monday.Decode(&monday.ColumnValue{Type: "timeline", Text: "2024-02-01 - 2024-02-10"})
		assert.Equal(t, monday.KindTimeline, v.Kind)
		assert.Equal(t, "2024-02-10", v.To.String())
	})

	t.Run("status label", func(t *testing.T) {
		v := monday.Decode(&monday.ColumnValue{Type: "status", Value: raw(`{"index":1}`), Text: "Qualified"})
		assert.Equal(t, monday.KindStatus, v.Kind)
		assert.Equal(t, "Qualified", v.Text)
	})

	t.Run("empty status", func(t *testing.T) {
		assert.True(t, monday.Decode(&monday.ColumnValue{Type: "status"}).IsEmpty())
	})

	t.Run("text column", func(t *testing.T) {
		v := monday.Decode(&monday.ColumnValue{Type: "text", Text: " Acme Ltd "})
		assert.Equal(t, monday.KindText, v.Kind)
		assert.Equal(t, "Acme Ltd", v.Text)
	})

	t.Run("nil cell", func(t *testing.T) {
		assert.True(t, monday.Decode(nil).IsEmpty())
	})
}
