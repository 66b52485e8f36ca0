package monday

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saulo-duarte/studio-ops/internal/amount"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
)

type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindDate
	KindTimeline
	KindStatus
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindTimeline:
		return "timeline"
	case KindStatus:
		return "status"
	}
	return "empty"
}

// Value is a decoded cell. Only the fields matching Kind are set.
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
	Date   util.Date
	From   util.Date
	To     util.Date
}

func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// payload returns the cell's JSON payload with the outer string encoding removed.
func (c *ColumnValue) payload() json.RawMessage {
	if c == nil || c.Value == nil {
		return nil
	}
	raw := strings.TrimSpace(*c.Value)
	if raw == "" || raw == "null" {
		return nil
	}
	// Some API paths double encode the payload as a JSON string.
	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			trimmed := strings.TrimSpace(inner)
			if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
				return json.RawMessage(trimmed)
			}
		}
	}
	return json.RawMessage(raw)
}

// Decode interprets a cell according to its column type.
func Decode(c *ColumnValue) Value {
	if c == nil {
		return Value{}
	}

	switch c.Type {
	case "numbers", "numeric", "formula", "mirror", "lookup":
		if n, ok := Number(c); ok {
			return Value{Kind: KindNumber, Number: n, Text: c.Text}
		}
	case "date":
		if d, ok := decodeDate(c); ok {
			return Value{Kind: KindDate, Date: d, Text: c.Text}
		}
	case "timeline", "timerange":
		if from, to, ok := decodeTimeline(c); ok {
			return Value{Kind: KindTimeline, From: from, To: to, Text: c.Text}
		}
	case "status", "color":
		if label := strings.TrimSpace(c.Text); label != "" {
			return Value{Kind: KindStatus, Text: label}
		}
		return Value{}
	}

	if text := strings.TrimSpace(c.Text); text != "" {
		return Value{Kind: KindText, Text: text}
	}
	return Value{}
}

type numberStep func(c *ColumnValue) (float64, bool)

// numberSteps is the fallback order used to pull a number out of a cell.
var numberSteps = []numberStep{
	numberFromJSON,
	numberFromQuoted,
	numberFromObject,
	numberFromText,
}

// Number extracts a numeric cell value: a JSON number, then a quoted number,
// then a nested object field (number, value, amount), then the display text.
// NaN and infinities are never returned.
func Number(c *ColumnValue) (float64, bool) {
	if c == nil {
		return 0, false
	}
	for _, step := range numberSteps {
		if n, ok := step(c); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
	}
	return 0, false
}

func numberFromJSON(c *ColumnValue) (float64, bool) {
	var n float64
	if raw := c.payload(); raw != nil && json.Unmarshal(raw, &n) == nil {
		return n, true
	}
	return 0, false
}

func numberFromQuoted(c *ColumnValue) (float64, bool) {
	raw := c.payload()
	if raw == nil {
		return 0, false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

func numberFromObject(c *ColumnValue) (float64, bool) {
	raw := c.payload()
	if raw == nil {
		return 0, false
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return 0, false
	}
	for _, key := range []string{"number", "value", "amount"} {
		field, ok := obj[key]
		if !ok {
			continue
		}
		var n float64
		if json.Unmarshal(field, &n) == nil {
			return n, true
		}
		var s string
		if json.Unmarshal(field, &s) == nil {
			if n, ok := amount.Parse(s); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func numberFromText(c *ColumnValue) (float64, bool) {
	return amount.Parse(c.Text)
}

func decodeDate(c *ColumnValue) (util.Date, bool) {
	var payload struct {
		Date string `json:"date"`
	}
	if raw := c.payload(); raw != nil && json.Unmarshal(raw, &payload) == nil && payload.Date != "" {
		if d, err := util.ParseDate(payload.Date); err == nil {
			return d, true
		}
	}
	return parseLooseDate(c.Text)
}

func decodeTimeline(c *ColumnValue) (util.Date, util.Date, bool) {
	var payload struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if raw := c.payload(); raw != nil && json.Unmarshal(raw, &payload) == nil {
		from, errFrom := util.ParseDate(payload.From)
		to, errTo := util.ParseDate(payload.To)
		if errFrom == nil && errTo == nil {
			return from, to, true
		}
	}

	// Display text looks like "2024-01-01 - 2024-01-31".
	if parts := strings.SplitN(c.Text, " - ", 2); len(parts) == 2 {
		from, okFrom := parseLooseDate(parts[0])
		to, okTo := parseLooseDate(parts[1])
		if okFrom && okTo {
			return from, to, true
		}
	}
	return util.Date{}, util.Date{}, false
}

func parseLooseDate(s string) (util.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return util.Date{}, false
	}
	if d, err := util.ParseDate(s); err == nil {
		return d, true
	}
	if len(s) > len(util.DateLayout) {
		if d, err := util.ParseDate(s[:len(util.DateLayout)]); err == nil {
			return d, true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return util.DateOf(t), true
	}
	return util.Date{}, false
}
