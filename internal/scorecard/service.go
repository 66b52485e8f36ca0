package scorecard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/telemetry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrMetricHasEntries = errors.New("metric has weekly entries")

type ScorecardService interface {
	ReconcileWeek(ctx context.Context, weekStart util.Date) (*SyncResult, error)
	ReconcileRecentWeeks(ctx context.Context, n int) (*SyncResult, error)
	GetEntriesForWeeks(ctx context.Context, weekStarts []util.Date) ([]WeekEntries, error)
	SaveEntry(ctx context.Context, dto SaveEntryDTO) (*WeeklyEntry, error)

	ListCategories(ctx context.Context) ([]Category, error)
	SaveCategory(ctx context.Context, dto SaveCategoryDTO) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListMetrics(ctx context.Context) ([]Metric, error)
	SaveMetric(ctx context.Context, dto SaveMetricDTO) (*Metric, error)
	DeleteMetric(ctx context.Context, id uuid.UUID) error
}

type Option func(*scorecardService)

// WithClock replaces the clock used to find the current week.
func WithClock(now func() time.Time) Option {
	return func(s *scorecardService) {
		s.now = now
	}
}

type scorecardService struct {
	repo ScorecardRepository
	calc *Calculator
	caps capability.Set
	now  func() time.Time
}

func NewService(repo ScorecardRepository, calc *Calculator, caps capability.Set, opts ...Option) ScorecardService {
	s := &scorecardService{repo: repo, calc: calc, caps: caps, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scorecardService) requireScorecard() error {
	return capability.Require(s.caps.Scorecard, capability.StepScorecard)
}

func (s *scorecardService) ReconcileWeek(ctx context.Context, weekStart util.Date) (*SyncResult, error) {
	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	result := s.reconcileWeek(ctx, s.calc.Batch(), util.WeekStart(weekStart))
	return &result, nil
}

// ReconcileRecentWeeks reconciles the n most recent weeks concurrently, one
// goroutine per week. Each week touches only its own rows.
func (s *scorecardService) ReconcileRecentWeeks(ctx context.Context, n int) (*SyncResult, error) {
	log := config.WithContext(ctx)

	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, apperror.Invalid("weeks must be positive")
	}

	weeks := util.RecentWeekStarts(util.DateOf(s.now()), n)
	results := make([]SyncResult, len(weeks))
	calc := s.calc.Batch()

	var g errgroup.Group
	for i, week := range weeks {
		g.Go(func() error {
			results[i] = s.reconcileWeek(ctx, calc, week)
			return nil
		})
	}
	_ = g.Wait()

	total := &SyncResult{Errors: []string{}, Weeks: []string{}}
	for _, r := range results {
		total.merge(r)
	}

	log.WithFields(logrus.Fields{
		"weeks":  len(weeks),
		"synced": total.Synced,
		"errors": len(total.Errors),
	}).Info("Recent weeks reconciled")
	return total, nil
}

// reconcileWeek writes the computed value of every automated metric for one
// week. Failures are collected per metric and never abort the batch.
func (s *scorecardService) reconcileWeek(ctx context.Context, calc *Calculator, weekStart util.Date) SyncResult {
	log := config.WithContext(ctx).WithField("week_start", weekStart.String())
	weekEnd := util.WeekEnd(weekStart)
	result := SyncResult{Errors: []string{}, Weeks: []string{weekStart.String()}}

	metrics, err := s.repo.ListAutomatedMetrics(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list automated metrics")
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to list metrics: %v", weekStart, err))
		return result
	}

	for i := range metrics {
		m := &metrics[i]
		mlog := log.WithFields(logrus.Fields{
			"metric_id": m.ID,
			"source":    m.AutomationSource,
		})

		v, err := calc.Calculate(ctx, m, weekStart, weekEnd)
		if err != nil {
			mlog.WithError(err).Warn("Metric calculation failed")
			telemetry.MetricErrors.WithLabelValues(string(m.AutomationSource)).Inc()
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", m.Name, weekStart, err))
			continue
		}
		if v == nil {
			continue
		}

		if err := s.upsertValue(ctx, m, weekStart, *v); err != nil {
			mlog.WithError(err).Error("Failed to write weekly entry")
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", m.Name, weekStart, err))
			continue
		}
		result.Synced++
	}

	telemetry.EntriesSynced.Add(float64(result.Synced))
	log.WithFields(logrus.Fields{
		"synced": result.Synced,
		"errors": len(result.Errors),
	}).Info("Week reconciled")
	return result
}

// upsertValue changes only the value of an existing entry so that targets and
// notes edited by people survive. New entries take the metric's target.
func (s *scorecardService) upsertValue(ctx context.Context, m *Metric, weekStart util.Date, v float64) error {
	existing, err := s.repo.FindEntry(ctx, m.ID, weekStart)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Value == v {
			return nil
		}
		return s.repo.UpdateEntryValue(ctx, existing.ID, v)
	}

	return s.repo.CreateEntry(ctx, &WeeklyEntry{
		MetricID:      m.ID,
		WeekStartDate: weekStart,
		Value:         v,
		TargetValue:   m.TargetValue,
	})
}

// GetEntriesForWeeks returns a full grid for the requested weeks: persisted
// entries where they exist and unsaved zero placeholders elsewhere. It never writes.
func (s *scorecardService) GetEntriesForWeeks(ctx context.Context, weekStarts []util.Date) ([]WeekEntries, error) {
	log := config.WithContext(ctx)

	if err := s.requireScorecard(); err != nil {
		return nil, err
	}

	weeks := make([]util.Date, 0, len(weekStarts))
	seen := make(map[string]bool, len(weekStarts))
	for _, w := range weekStarts {
		ws := util.WeekStart(w)
		if !seen[ws.String()] {
			seen[ws.String()] = true
			weeks = append(weeks, ws)
		}
	}

	metrics, err := s.repo.ListMetrics(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list metrics")
		return nil, err
	}
	entries, err := s.repo.ListEntriesForWeeks(ctx, weeks)
	if err != nil {
		log.WithError(err).Error("Failed to list weekly entries")
		return nil, err
	}

	type key struct {
		metric uuid.UUID
		week   string
	}
	byKey := make(map[key]*WeeklyEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		byKey[key{e.MetricID, e.WeekStartDate.String()}] = e
	}

	out := make([]WeekEntries, 0, len(weeks))
	for _, week := range weeks {
		grid := WeekEntries{WeekStart: week, Entries: make([]EntryView, 0, len(metrics))}
		for _, m := range metrics {
			if e, ok := byKey[key{m.ID, week.String()}]; ok {
				grid.Entries = append(grid.Entries, EntryView{
					ID:            e.ID.String(),
					MetricID:      m.ID,
					WeekStartDate: week,
					Value:         e.Value,
					TargetValue:   e.TargetValue,
					Notes:         e.Notes,
					Saved:         true,
					UpdatedBy:     e.UpdatedBy,
				})
				continue
			}
			grid.Entries = append(grid.Entries, EntryView{
				MetricID:      m.ID,
				WeekStartDate: week,
				TargetValue:   m.TargetValue,
			})
		}
		out = append(out, grid)
	}
	return out, nil
}

// SaveEntry records a manual edit of one cell, creating the row if needed.
func (s *scorecardService) SaveEntry(ctx context.Context, dto SaveEntryDTO) (*WeeklyEntry, error) {
	log := config.WithContext(ctx)

	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	if dto.WeekStart.IsZero() {
		return nil, apperror.Invalid("week_start_date is required")
	}
	if _, err := s.loadMetric(ctx, dto.MetricID); err != nil {
		return nil, err
	}

	week := util.WeekStart(dto.WeekStart)
	entry, err := s.repo.FindEntry(ctx, dto.MetricID, week)
	if err != nil {
		log.WithError(err).Error("Failed to look up weekly entry")
		return nil, err
	}
	if entry == nil {
		entry = &WeeklyEntry{MetricID: dto.MetricID, WeekStartDate: week}
	}
	entry.Value = dto.Value
	entry.TargetValue = dto.TargetValue
	entry.Notes = dto.Notes

	if claims, err := auth.GetUserClaimsFromContext(ctx); err == nil {
		if uid, err := uuid.Parse(claims.UserID); err == nil {
			entry.UpdatedBy = &uid
		}
	}

	if err := s.repo.SaveEntry(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to save weekly entry")
		return nil, err
	}
	return entry, nil
}

func (s *scorecardService) loadMetric(ctx context.Context, id uuid.UUID) (*Metric, error) {
	m, err := s.repo.GetMetric(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMetricNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "metric not found", err)
		}
		return nil, err
	}
	return m, nil
}

func (s *scorecardService) ListCategories(ctx context.Context) ([]Category, error) {
	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx)
}

func (s *scorecardService) SaveCategory(ctx context.Context, dto SaveCategoryDTO) (*Category, error) {
	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperror.Invalid("category name is required")
	}

	c := &Category{}
	if dto.ID != nil {
		existing, err := s.repo.GetCategory(ctx, *dto.ID)
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, apperror.Wrap(apperror.KindNotFound, "category not found", err)
			}
			return nil, err
		}
		c = existing
	}
	c.Name = name
	c.DisplayOrder = dto.DisplayOrder

	if err := s.repo.SaveCategory(ctx, c); err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to save category")
		return nil, err
	}
	return c, nil
}

func (s *scorecardService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.requireScorecard(); err != nil {
		return err
	}
	count, err := s.repo.CountMetricsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Integrity("category still has metrics")
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *scorecardService) ListMetrics(ctx context.Context) ([]Metric, error) {
	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	return s.repo.ListMetrics(ctx)
}

func (s *scorecardService) SaveMetric(ctx context.Context, dto SaveMetricDTO) (*Metric, error) {
	log := config.WithContext(ctx)

	if err := s.requireScorecard(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperror.Invalid("metric name is required")
	}
	if len(dto.AutomationConfig) > 0 && !json.Valid(dto.AutomationConfig) {
		return nil, apperror.Invalid("automation_config must be valid JSON")
	}
	if _, err := s.repo.GetCategory(ctx, dto.CategoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, apperror.Wrap(apperror.KindInvalid, "unknown category", err)
		}
		return nil, err
	}

	m := &Metric{}
	if dto.ID != nil {
		existing, err := s.loadMetric(ctx, *dto.ID)
		if err != nil {
			return nil, err
		}
		m = existing
	}
	m.CategoryID = dto.CategoryID
	m.Name = name
	m.Unit = dto.Unit
	m.IsAutomated = dto.IsAutomated
	m.AutomationSource = dto.AutomationSource
	m.AutomationConfig = dto.AutomationConfig
	m.TargetValue = dto.TargetValue
	m.DisplayOrder = dto.DisplayOrder

	if err := s.repo.SaveMetric(ctx, m); err != nil {
		log.WithError(err).Error("Failed to save metric")
		return nil, err
	}
	log.WithField("metric_id", m.ID).Info("Metric saved")
	return m, nil
}

// DeleteMetric removes a metric that has never recorded a value.
func (s *scorecardService) DeleteMetric(ctx context.Context, id uuid.UUID) error {
	if err := s.requireScorecard(); err != nil {
		return err
	}
	if _, err := s.loadMetric(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountEntriesByMetric(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Wrap(apperror.KindIntegrity, "metric has recorded weekly entries", ErrMetricHasEntries)
	}
	return s.repo.DeleteMetric(ctx, id)
}
