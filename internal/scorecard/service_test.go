package scorecard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/dbtest"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/scorecard"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/saulo-duarte/studio-ops/internal/xero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	repo     scorecard.ScorecardRepository
	entries  timeentry.TimeEntryRepository
	finance  *stubFinance
	category *scorecard.Category
	ctx      context.Context
}

func newEnv(t *testing.T, opts ...scorecard.Option) (*env, scorecard.ScorecardService) {
	t.Helper()
	db := dbtest.Open(t,
		&scorecard.Category{}, &scorecard.Metric{}, &scorecard.WeeklyEntry{},
		&project.Project{}, &timeentry.TimeEntry{},
	)

	e := &env{
		db:      db,
		repo:    scorecard.NewRepository(db),
		entries: timeentry.NewRepository(db),
		finance: &stubFinance{summary: xero.FinancialSummary{Revenue: 1000, Expenses: 400}},
		ctx:     context.Background(),
	}
	e.category = &scorecard.Category{Name: "Operations", DisplayOrder: 1}
	require.NoError(t, e.repo.SaveCategory(e.ctx, e.category))

	calc := scorecard.NewCalculator(e.entries, project.NewRepository(db), e.finance)
	return e, scorecard.NewService(e.repo, calc, capability.All(), opts...)
}

func (e *env) metric(t *testing.T, name string, source scorecard.AutomationSource, cfg string, target *float64) *scorecard.Metric {
	t.Helper()
	m := &scorecard.Metric{
		CategoryID:       e.category.ID,
		Name:             name,
		IsAutomated:      source != "",
		AutomationSource: source,
		TargetValue:      target,
	}
	if cfg != "" {
		m.AutomationConfig = datatypes.JSON(cfg)
	}
	require.NoError(t, e.repo.SaveMetric(e.ctx, m))
	return m
}

func (e *env) logHours(t *testing.T, date string, hours float64) {
	t.Helper()
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{
		UserID:    uuid.New(),
		TaskID:    uuid.New(),
		ProjectID: uuid.New(),
		Date:      util.MustParseDate(date),
		Hours:     hours,
	}))
}

func (e *env) countEntries(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&scorecard.WeeklyEntry{}).Count(&n).Error)
	return n
}

func TestWeeklyBillableHoursScenario(t *testing.T) {
	e, svc := newEnv(t)
	m := e.metric(t, "Weekly Billable Hours", scorecard.SourceTimeTracking, "", f64(40))
	e.logHours(t, "2024-01-02", 3)
	e.logHours(t, "2024-01-07", 2.5)
	e.logHours(t, "2024-01-08", 9)

	result, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Empty(t, result.Errors)

	entry, err := e.repo.FindEntry(e.ctx, m.ID, util.MustParseDate("2024-01-01"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 5.5, entry.Value)
	require.NotNil(t, entry.TargetValue)
	assert.Equal(t, 40.0, *entry.TargetValue)
}

func TestReconcileWeekIsIdempotent(t *testing.T) {
	e, svc := newEnv(t)
	e.metric(t, "Hours", scorecard.SourceTimeTracking, "", nil)
	e.metric(t, "Leads", scorecard.SourceLeads, `{"lead_type":"new"}`, nil)
	e.logHours(t, "2024-03-12", 4)

	week := util.MustParseDate("2024-03-11")
	for i := 0; i < 2; i++ {
		_, err := svc.ReconcileWeek(e.ctx, week)
		require.NoError(t, err)
		assert.Equal(t, int64(2), e.countEntries(t))
	}

	// A mid-week date reconciles the same Monday row.
	_, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-03-14"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.countEntries(t))
}

func TestReconcileWeekPreservesManualFields(t *testing.T) {
	e, svc := newEnv(t)
	m := e.metric(t, "Hours", scorecard.SourceTimeTracking, "", f64(30))
	e.logHours(t, "2024-03-12", 4)
	week := util.MustParseDate("2024-03-11")

	_, err := svc.ReconcileWeek(e.ctx, week)
	require.NoError(t, err)

	notes := "holiday week"
	_, err = svc.SaveEntry(e.ctx, scorecard.SaveEntryDTO{
		MetricID: m.ID, WeekStart: week, Value: 4, TargetValue: f64(20), Notes: &notes,
	})
	require.NoError(t, err)

	e.logHours(t, "2024-03-13", 2)
	_, err = svc.ReconcileWeek(e.ctx, week)
	require.NoError(t, err)

	entry, err := e.repo.FindEntry(e.ctx, m.ID, week)
	require.NoError(t, err)
	assert.Equal(t, 6.0, entry.Value)
	assert.Equal(t, 20.0, *entry.TargetValue)
	assert.Equal(t, "holiday week", *entry.Notes)
}

func TestReconcileWeekSkipsNullValues(t *testing.T) {
	e, svc := newEnv(t)
	e.metric(t, "Capacity", scorecard.SourceCapacity, "", nil)
	e.metric(t, "Mystery", "mystery", "", nil)
	e.metric(t, "Manual", "", "", nil)

	result, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-03-11"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, int64(0), e.countEntries(t))
}

func TestReconcileWeekReportsMetricFailures(t *testing.T) {
	e, svc := newEnv(t)
	e.finance.err = apperror.Upstream("xero", errors.New("connection reset"))
	e.metric(t, "Profit", scorecard.SourceFinancial, `{"calculation":"percent_profit_qtd"}`, nil)
	e.metric(t, "Hours", scorecard.SourceTimeTracking, "", nil)

	result, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-03-11"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Profit")
}

func TestReconcileRecentWeeks(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC) }
	e, svc := newEnv(t, scorecard.WithClock(clock))
	e.metric(t, "Hours", scorecard.SourceTimeTracking, "", nil)
	e.metric(t, "Profit", scorecard.SourceFinancial, `{"calculation":"percent_profit_qtd"}`, nil)

	result, err := svc.ReconcileRecentWeeks(e.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-26", "2024-03-04", "2024-03-11"}, result.Weeks)
	assert.Equal(t, 6, result.Synced)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(6), e.countEntries(t))

	// Each week has its own quarter-to-date window.
	assert.Equal(t, int32(3), e.finance.calls.Load())
}

func TestGetEntriesForWeeksNeverWrites(t *testing.T) {
	e, svc := newEnv(t)
	hours := e.metric(t, "Hours", scorecard.SourceTimeTracking, "", nil)
	manual := e.metric(t, "NPS", "", "", f64(50))
	e.logHours(t, "2024-03-12", 4)

	_, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-03-11"))
	require.NoError(t, err)
	before := e.countEntries(t)

	weeks := []util.Date{util.MustParseDate("2024-03-04"), util.MustParseDate("2024-03-11")}
	var grid []scorecard.WeekEntries
	for i := 0; i < 3; i++ {
		grid, err = svc.GetEntriesForWeeks(e.ctx, weeks)
		require.NoError(t, err)
		assert.Equal(t, before, e.countEntries(t))
	}

	require.Len(t, grid, 2)
	for _, week := range grid {
		require.Len(t, week.Entries, 2)
	}

	byMetric := func(entries []scorecard.EntryView, id uuid.UUID) scorecard.EntryView {
		for _, v := range entries {
			if v.MetricID == id {
				return v
			}
		}
		t.Fatalf("metric %s missing", id)
		return scorecard.EntryView{}
	}

	saved := byMetric(grid[1].Entries, hours.ID)
	assert.True(t, saved.Saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 4.0, saved.Value)

	placeholder := byMetric(grid[0].Entries, manual.ID)
	assert.False(t, placeholder.Saved)
	assert.Empty(t, placeholder.ID)
	assert.Equal(t, 0.0, placeholder.Value)
	assert.Equal(t, "2024-03-04", placeholder.WeekStartDate.String())
}

func TestScorecardNotConfigured(t *testing.T) {
	db := dbtest.Open(t)
	svc := scorecard.NewService(scorecard.NewRepository(db), scorecard.NewCalculator(nil, nil, nil), capability.Set{})

	_, err := svc.ReconcileWeek(context.Background(), util.MustParseDate("2024-03-11"))
	assert.True(t, apperror.Is(err, apperror.KindNotConfigured))

	_, err = svc.GetEntriesForWeeks(context.Background(), []util.Date{util.MustParseDate("2024-03-11")})
	assert.True(t, apperror.Is(err, apperror.KindNotConfigured))
}

func TestDeleteMetricWithEntriesIsRejected(t *testing.T) {
	e, svc := newEnv(t)
	m := e.metric(t, "Hours", scorecard.SourceTimeTracking, "", nil)
	e.logHours(t, "2024-03-12", 1)

	_, err := svc.ReconcileWeek(e.ctx, util.MustParseDate("2024-03-11"))
	require.NoError(t, err)

	err = svc.DeleteMetric(e.ctx, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindIntegrity))

	unused := e.metric(t, "Unused", "", "", nil)
	assert.NoError(t, svc.DeleteMetric(e.ctx, unused.ID))
}
