package scorecard

import (
	"context"
	"sync"

	"github.com/saulo-duarte/studio-ops/internal/amount"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/project"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/saulo-duarte/studio-ops/internal/xero"
	"github.com/sirupsen/logrus"
)

// PipelineHorizonMonths is how far ahead pipeline value looks for due leads.
const PipelineHorizonMonths = 3

type HoursSource interface {
	SumHours(ctx context.Context, from, to util.Date, projectStatus string) (float64, error)
}

type LeadSource interface {
	ListLeads(ctx context.Context, q project.LeadQuery) ([]project.Project, error)
}

// Calculator turns an automated metric into a weekly value. A nil value with
// a nil error means there is nothing to write for that week.
type Calculator struct {
	hours   HoursSource
	leads   LeadSource
	finance xero.ReportSource
	reports *reportCache
}

func NewCalculator(hours HoursSource, leads LeadSource, finance xero.ReportSource) *Calculator {
	return &Calculator{hours: hours, leads: leads, finance: finance, reports: newReportCache()}
}

// Batch returns a calculator sharing the same sources with an empty report
// cache. Use one batch per reconcile run.
func (c *Calculator) Batch() *Calculator {
	batch := *c
	batch.reports = newReportCache()
	return &batch
}

func (c *Calculator) Calculate(ctx context.Context, m *Metric, weekStart, weekEnd util.Date) (*float64, error) {
	if m == nil || !m.IsAutomated {
		return nil, nil
	}

	switch m.AutomationSource {
	case SourceTimeTracking:
		return c.timeTracking(ctx, m, weekStart, weekEnd)
	case SourceLeads:
		return c.leadMetric(ctx, m, weekStart, weekEnd)
	case SourceFinancial:
		return c.financial(ctx, m, weekStart, weekEnd)
	default:
		// capacity is not implemented; unknown sources have nothing to report.
		return nil, nil
	}
}

func (c *Calculator) timeTracking(ctx context.Context, m *Metric, weekStart, weekEnd util.Date) (*float64, error) {
	var cfg TimeTrackingConfig
	if err := decodeConfig(m.AutomationConfig, &cfg); err != nil {
		return nil, err
	}

	total, err := c.hours.SumHours(ctx, weekStart, weekEnd, cfg.ProjectStatus)
	if err != nil {
		return nil, err
	}
	return value(total), nil
}

func (c *Calculator) leadMetric(ctx context.Context, m *Metric, weekStart, weekEnd util.Date) (*float64, error) {
	var cfg LeadsConfig
	if err := decodeConfig(m.AutomationConfig, &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	leads, err := c.leads.ListLeads(ctx, project.LeadQuery{
		From:      weekStart,
		To:        weekEnd,
		DateField: cfg.DateField,
	})
	if err != nil {
		return nil, err
	}

	filter := cfg.filter()
	var count, sum float64
	for _, lead := range leads {
		if !filter.admits(lead.UpstreamStatus) {
			continue
		}
		quote := 0.0
		if lead.QuoteValue != nil {
			quote = *lead.QuoteValue
		}

		switch cfg.LeadType {
		case LeadNew, LeadQualified:
			count++
		case LeadQuotesSubmitted:
			if quote > 0 {
				count++
			}
		case LeadQuoteValue:
			sum += quote
		}
	}

	switch cfg.LeadType {
	case LeadNew, LeadQualified, LeadQuotesSubmitted:
		return value(count), nil
	case LeadQuoteValue:
		return value(sum), nil
	}
	return nil, apperror.Invalid("unknown lead_type " + string(cfg.LeadType))
}

func (c *Calculator) financial(ctx context.Context, m *Metric, weekStart, weekEnd util.Date) (*float64, error) {
	var cfg FinancialConfig
	if err := decodeConfig(m.AutomationConfig, &cfg); err != nil {
		return nil, err
	}

	switch cfg.Calculation {
	case PercentOfQuarterlyTarget:
		if cfg.QuarterlyTarget == nil || *cfg.QuarterlyTarget <= 0 {
			return nil, nil
		}
		summary, err := c.quarterToDate(ctx, weekEnd)
		if err != nil {
			return nil, err
		}
		return value(summary.Revenue / *cfg.QuarterlyTarget * 100), nil

	case PercentProfitQTD:
		summary, err := c.quarterToDate(ctx, weekEnd)
		if err != nil {
			return nil, err
		}
		if summary.Revenue == 0 {
			return nil, nil
		}
		return value((summary.Revenue - summary.Expenses) / summary.Revenue * 100), nil

	case PipelineValue:
		leads, err := c.leads.ListLeads(ctx, project.LeadQuery{
			From:      weekStart,
			To:        weekStart.AddMonths(PipelineHorizonMonths).AddDays(-1),
			DateField: project.LeadDateDue,
		})
		if err != nil {
			return nil, err
		}
		var total float64
		for _, lead := range leads {
			if lead.QuoteValue != nil {
				total += *lead.QuoteValue
			}
		}
		return value(total), nil
	}

	config.WithContext(ctx).WithFields(logrus.Fields{
		"metric_id":   m.ID,
		"calculation": cfg.Calculation,
	}).Warn("Unknown financial calculation")
	return nil, nil
}

// quarterToDate fetches the report from the start of weekEnd's quarter through weekEnd.
func (c *Calculator) quarterToDate(ctx context.Context, weekEnd util.Date) (*xero.FinancialSummary, error) {
	if c.finance == nil {
		return nil, apperror.NotConfigured(capability.StepXero)
	}
	return c.reports.get(ctx, c.finance, util.QuarterStart(weekEnd), weekEnd)
}

func value(v float64) *float64 {
	rounded := amount.Round2(v)
	return &rounded
}

type reportEntry struct {
	once    sync.Once
	summary *xero.FinancialSummary
	err     error
}

// reportCache fetches each distinct report window once, even across goroutines.
type reportCache struct {
	mu      sync.Mutex
	entries map[string]*reportEntry
}

func newReportCache() *reportCache {
	return &reportCache{entries: make(map[string]*reportEntry)}
}

func (rc *reportCache) get(ctx context.Context, src xero.ReportSource, from, to util.Date) (*xero.FinancialSummary, error) {
	key := from.String() + "/" + to.String()

	rc.mu.Lock()
	entry, ok := rc.entries[key]
	if !ok {
		entry = &reportEntry{}
		rc.entries[key] = entry
	}
	rc.mu.Unlock()

	entry.once.Do(func() {
		entry.summary, entry.err = src.ProfitAndLoss(ctx, from, to)
	})
	return entry.summary, entry.err
}
