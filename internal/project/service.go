package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	ErrProjectNotFound   = ErrNotFound
	ErrHasTimeEntries    = errors.New("project has recorded time entries")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// HoursReader exposes the time entry aggregates a project needs.
type HoursReader interface {
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	SumByProject(ctx context.Context, projectID uuid.UUID) (float64, error)
	SumByProjectTasks(ctx context.Context, projectID uuid.UUID) (float64, error)
}

type ProjectService interface {
	ListProjects(ctx context.Context, statuses ...ProjectStatus) ([]Project, error)
	GetProjectByID(ctx context.Context, id string) (*Project, error)
	GetProjectDetail(ctx context.Context, id string) (*ProjectDetail, error)
	Lock(ctx context.Context, id string) error
	Unlock(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
}

type projectService struct {
	repo  ProjectRepository
	hours HoursReader
}

func NewService(repo ProjectRepository, hours HoursReader) ProjectService {
	return &projectService{repo: repo, hours: hours}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Invalid("invalid project id")
	}
	return parsed, nil
}

func (s *projectService) load(ctx context.Context, id string) (*Project, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "project not found", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) ListProjects(ctx context.Context, statuses ...ProjectStatus) ([]Project, error) {
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, apperror.Invalid("unknown project status " + string(st))
		}
	}
	return s.repo.List(ctx, statuses...)
}

func (s *projectService) GetProjectByID(ctx context.Context, id string) (*Project, error) {
	return s.load(ctx, id)
}

func (s *projectService) GetProjectDetail(ctx context.Context, id string) (*ProjectDetail, error) {
	log := config.WithContext(ctx)

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	projectHours, err := s.hours.SumByProject(ctx, p.ID)
	if err != nil {
		log.WithError(err).Error("Failed to sum project hours")
		return nil, err
	}
	taskHours, err := s.hours.SumByProjectTasks(ctx, p.ID)
	if err != nil {
		log.WithError(err).Error("Failed to sum task hours")
		return nil, err
	}

	return &ProjectDetail{
		Project: *p,
		Hours: HoursSummary{
			ProjectID:    p.ID,
			ProjectHours: projectHours,
			TaskHours:    taskHours,
			TotalHours:   ReportedHours(p.Status, projectHours, taskHours),
			QuotedHours:  p.QuotedHours,
		},
	}, nil
}

// ReportedHours picks the figure shown for a project. Locked projects often
// carry entries whose project reference and task reference disagree after
// upstream moves, so the larger of the two aggregates is reported for them.
func ReportedHours(status ProjectStatus, projectHours, taskHours float64) float64 {
	if status == StatusLocked && taskHours > projectHours {
		return taskHours
	}
	return projectHours
}

func (s *projectService) Lock(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusLocked)
}

func (s *projectService) Unlock(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusActive)
}

func (s *projectService) transition(ctx context.Context, id string, to ProjectStatus) error {
	log := config.WithContext(ctx)

	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if to == StatusActive && p.Status != StatusLocked {
		return apperror.Wrap(apperror.KindInvalid, "only locked projects can be unlocked", ErrInvalidTransition)
	}
	if p.Status == to {
		return nil
	}

	if err := s.repo.SetStatus(ctx, p.ID, to); err != nil {
		log.WithError(err).Error("Failed to change project status")
		return err
	}

	log.WithFields(logrus.Fields{
		"project_id": p.ID,
		"from":       p.Status,
		"to":         to,
	}).Info("Project status changed")
	return nil
}

// DeleteProject removes a project and its tasks. Projects with recorded hours
// are never deleted.
func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	log := config.WithContext(ctx)

	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.hours.CountByProject(ctx, p.ID)
	if err != nil {
		log.WithError(err).Error("Failed to count time entries before deletion")
		return err
	}
	if count > 0 {
		log.WithFields(logrus.Fields{
			"project_id":  p.ID,
			"entry_count": count,
		}).Warn("Refusing to delete project with time entries")
		return apperror.Wrap(apperror.KindIntegrity, "project has recorded time entries; archive it instead", ErrHasTimeEntries)
	}

	if err := s.repo.DeleteWithTasks(ctx, p.ID); err != nil {
		log.WithError(err).Error("Failed to delete project")
		return err
	}

	log.WithField("project_id", p.ID).Info("Project deleted")
	return nil
}
