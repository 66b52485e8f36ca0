package xero

import (
	"strings"

	"github.com/saulo-duarte/studio-ops/internal/amount"
)

// FinancialSummary is the slice of a profit and loss report the scorecard uses.
type FinancialSummary struct {
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"net_profit"`
}

type reportCell struct {
	Value string `json:"Value"`
}

type reportRow struct {
	RowType string       `json:"RowType"`
	Title   string       `json:"Title"`
	Cells   []reportCell `json:"Cells"`
	Rows    []reportRow  `json:"Rows"`
}

type reportsResponse struct {
	Reports []struct {
		ReportID   string      `json:"ReportID"`
		ReportName string      `json:"ReportName"`
		Rows       []reportRow `json:"Rows"`
	} `json:"Reports"`
}

type sectionKind int

const (
	sectionOther sectionKind = iota
	sectionRevenue
	sectionExpense
)

func classifySection(title string) sectionKind {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "income"), strings.Contains(t, "revenue"), strings.Contains(t, "sales") && !strings.Contains(t, "cost"):
		return sectionRevenue
	case strings.Contains(t, "expense"), strings.Contains(t, "cost of sales"), strings.Contains(t, "direct cost"):
		return sectionExpense
	}
	return sectionOther
}

// rowAmount reads the figure column of a row: the second cell.
func rowAmount(r reportRow) (float64, bool) {
	if len(r.Cells) < 2 {
		return 0, false
	}
	return amount.Parse(r.Cells[1].Value)
}

func rowLabel(r reportRow) string {
	if len(r.Cells) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(r.Cells[0].Value))
}

// sectionTotal prefers the section's summary row and falls back to summing its rows.
func sectionTotal(section reportRow) float64 {
	var sum float64
	for _, r := range section.Rows {
		if r.RowType == "SummaryRow" {
			if v, ok := rowAmount(r); ok {
				return v
			}
		}
	}
	for _, r := range section.Rows {
		if r.RowType == "Row" {
			if v, ok := rowAmount(r); ok {
				sum += v
			}
		}
	}
	return sum
}

func summarize(rows []reportRow) FinancialSummary {
	var s FinancialSummary
	netProfit, haveNet := 0.0, false

	for _, section := range rows {
		if section.RowType != "Section" {
			continue
		}
		switch classifySection(section.Title) {
		case sectionRevenue:
			s.Revenue += sectionTotal(section)
		case sectionExpense:
			s.Expenses += sectionTotal(section)
		}
		for _, r := range section.Rows {
			if rowLabel(r) == "net profit" {
				if v, ok := rowAmount(r); ok {
					netProfit, haveNet = v, true
				}
			}
		}
	}

	s.Revenue = amount.Round2(s.Revenue)
	s.Expenses = amount.Round2(s.Expenses)
	if haveNet {
		s.NetProfit = amount.Round2(netProfit)
	} else {
		s.NetProfit = amount.Round2(s.Revenue - s.Expenses)
	}
	return s
}
