package timeentry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/sirupsen/logrus"
)

const MaxHoursPerEntry = 24

var (
	ErrProjectLocked  = errors.New("project is locked")
	ErrInvalidHours   = errors.New("hours must be greater than 0 and at most 24")
	ErrDuplicateEntry = errors.New("time entry already exists for this task and date")
	ErrNotOwner       = errors.New("time entry belongs to another user")
)

type TaskLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
}

type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

type TimeEntryService interface {
	Create(ctx context.Context, dto CreateTimeEntryDTO) (*TimeEntry, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateTimeEntryDTO) (*TimeEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListMineForWeek(ctx context.Context, weekStart util.Date) ([]TimeEntry, error)
}

type timeEntryService struct {
	repo     TimeEntryRepository
	tasks    TaskLookup
	projects ProjectLookup
}

func NewService(repo TimeEntryRepository, tasks TaskLookup, projects ProjectLookup) TimeEntryService {
	return &timeEntryService{repo: repo, tasks: tasks, projects: projects}
}

func validHours(h float64) bool {
	return h > 0 && h <= MaxHoursPerEntry
}

func currentUser(ctx context.Context) (*auth.Claims, uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, uuid.Nil, apperror.Wrap(apperror.KindUnauthorized, "unauthorized", err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, uuid.Nil, apperror.Invalid("malformed user id in token")
	}
	return claims, id, nil
}

// ensureUnlocked rejects any mutation touching a locked project, whoever the caller is.
func (s *timeEntryService) ensureUnlocked(ctx context.Context, projectID uuid.UUID) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return apperror.Wrap(apperror.KindNotFound, "project not found", err)
		}
		return err
	}
	if p.IsLocked() {
		config.WithContext(ctx).WithField("project_id", projectID).Warn("Rejected time entry change on locked project")
		return apperror.Wrap(apperror.KindIntegrity, "project is locked; time entries cannot be changed", ErrProjectLocked)
	}
	return nil
}

func (s *timeEntryService) Create(ctx context.Context, dto CreateTimeEntryDTO) (*TimeEntry, error) {
	log := config.WithContext(ctx)

	_, userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !validHours(dto.Hours) {
		return nil, apperror.Wrap(apperror.KindInvalid, ErrInvalidHours.Error(), ErrInvalidHours)
	}
	if dto.Date.IsZero() {
		return nil, apperror.Invalid("date is required")
	}

	t, err := s.tasks.GetByID(ctx, dto.TaskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "task not found", err)
		}
		log.WithError(err).Error("Failed to load task for time entry")
		return nil, err
	}
	if err := s.ensureUnlocked(ctx, t.ProjectID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserTaskDate(ctx, userID, t.ID, dto.Date)
	if err != nil {
		log.WithError(err).Error("Failed to check for existing time entry")
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Wrap(apperror.KindIntegrity, ErrDuplicateEntry.Error(), ErrDuplicateEntry)
	}

	entry := &TimeEntry{
		UserID:    userID,
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Date:      dto.Date,
		Hours:     dto.Hours,
		Notes:     dto.Notes,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to create time entry")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"task_id":  entry.TaskID,
		"hours":    entry.Hours,
	}).Info("Time entry created")
	return entry, nil
}

// loadOwned fetches an entry the caller may modify: their own, or any entry for admins.
func (s *timeEntryService) loadOwned(ctx context.Context, id uuid.UUID) (*TimeEntry, error) {
	claims, userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "time entry not found", err)
		}
		return nil, err
	}
	if entry.UserID != userID && !claims.IsAdmin() {
		return nil, apperror.Wrap(apperror.KindForbidden, "forbidden", ErrNotOwner)
	}
	return entry, nil
}

func (s *timeEntryService) Update(ctx context.Context, id uuid.UUID, dto UpdateTimeEntryDTO) (*TimeEntry, error) {
	log := config.WithContext(ctx)

	entry, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnlocked(ctx, entry.ProjectID); err != nil {
		return nil, err
	}

	if dto.Hours != nil {
		if !validHours(*dto.Hours) {
			return nil, apperror.Wrap(apperror.KindInvalid, ErrInvalidHours.Error(), ErrInvalidHours)
		}
		entry.Hours = *dto.Hours
	}
	if dto.Notes != nil {
		entry.Notes = *dto.Notes
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to update time entry")
		return nil, err
	}
	return entry, nil
}

func (s *timeEntryService) Delete(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)

	entry, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureUnlocked(ctx, entry.ProjectID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		log.WithError(err).Error("Failed to delete time entry")
		return err
	}
	log.WithField("entry_id", entry.ID).Info("Time entry deleted")
	return nil
}

func (s *timeEntryService) ListMineForWeek(ctx context.Context, weekStart util.Date) ([]TimeEntry, error) {
	_, userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	start := util.WeekStart(weekStart)
	return s.repo.ListByUserBetween(ctx, userID, start, util.WeekEnd(start))
}
