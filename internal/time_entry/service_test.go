package timeentry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/dbtest"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      timeentry.TimeEntryService
	repo     timeentry.TimeEntryRepository
	projects project.ProjectRepository
	tasks    task.TaskRepository
	project  *project.Project
	task     *task.Task
	ctx      context.Context
	userID   uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t, &project.Project{}, &task.Task{}, &timeentry.TimeEntry{})

	f := &fixture{
		repo:     timeentry.NewRepository(db),
		projects: project.NewRepository(db),
		tasks:    task.NewRepository(db),
		userID:   uuid.New(),
	}
	f.svc = timeentry.NewService(f.repo, f.tasks, f.projects)
	f.ctx = auth.WithClaims(context.Background(), &auth.Claims{UserID: f.userID.String(), Role: auth.RoleMember})

	f.project = &project.Project{ExternalItemID: "100", BoardID: "1", Name: "Brand refresh", Status: project.StatusActive}
	require.NoError(t, f.projects.Create(f.ctx, f.project))
	f.task = &task.Task{ExternalItemID: "101", ProjectID: f.project.ID, BoardID: "2", Name: "Logo", Status: task.StatusActive}
	require.NoError(t, f.tasks.Create(f.ctx, f.task))
	return f
}

func TestCreateValidatesHours(t *testing.T) {
	f := setup(t)
	day := util.MustParseDate("2024-03-12")

	tests := []struct {
		name  string
		hours float64
		ok    bool
	}{
		{"zero", 0, false},
		{"negative", -1, false},
		{"over a day", 24.5, false},
		{"full day", 24, true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, timeentry.CreateTimeEntryDTO{
				TaskID: f.task.ID,
				Date:   day.AddDays(i),
				Hours:  tt.hours,
			})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.Is(err, apperror.KindInvalid))
			}
		})
	}
}

func TestCreateRejectsDuplicateDay(t *testing.T) {
	f := setup(t)
	dto := timeentry.CreateTimeEntryDTO{TaskID: f.task.ID, Date: util.MustParseDate("2024-03-12"), Hours: 2}

	_, err := f.svc.Create(f.ctx, dto)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, dto)
	assert.True(t, apperror.Is(err, apperror.KindIntegrity))
}

func TestLockedProjectRejectsEveryMutation(t *testing.T) {
	f := setup(t)
	entry, err := f.svc.Create(f.ctx, timeentry.CreateTimeEntryDTO{
		TaskID: f.task.ID, Date: util.MustParseDate("2024-03-11"), Hours: 3,
	})
	require.NoError(t, err)

	require.NoError(t, f.projects.SetStatus(f.ctx, f.project.ID, project.StatusLocked))

	admin := auth.WithClaims(context.Background(), &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleAdmin})
	hours := 5.0

	for _, ctx := range []context.Context{f.ctx, admin} {
		_, err = f.svc.Create(ctx, timeentry.CreateTimeEntryDTO{
			TaskID: f.task.ID, Date: util.MustParseDate("2024-03-13"), Hours: 1,
		})
		assert.ErrorIs(t, err, timeentry.ErrProjectLocked)

		_, err = f.svc.Update(ctx, entry.ID, timeentry.UpdateTimeEntryDTO{Hours: &hours})
		assert.ErrorIs(t, err, timeentry.ErrProjectLocked)

		err = f.svc.Delete(ctx, entry.ID)
		assert.ErrorIs(t, err, timeentry.ErrProjectLocked)
	}

	stored, err := f.repo.GetByID(f.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stored.Hours)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	f := setup(t)
	entry, err := f.svc.Create(f.ctx, timeentry.CreateTimeEntryDTO{
		TaskID: f.task.ID, Date: util.MustParseDate("2024-03-11"), Hours: 3,
	})
	require.NoError(t, err)

	other := auth.WithClaims(context.Background(), &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleMember})
	hours := 1.0
	_, err = f.svc.Update(other, entry.ID, timeentry.UpdateTimeEntryDTO{Hours: &hours})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	admin := auth.WithClaims(context.Background(), &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleAdmin})
	updated, err := f.svc.Update(admin, entry.ID, timeentry.UpdateTimeEntryDTO{Hours: &hours})
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.Hours)
}

func TestListMineForWeek(t *testing.T) {
	f := setup(t)
	for _, d := range []string{"2024-03-10", "2024-03-11", "2024-03-17", "2024-03-18"} {
		_, err := f.svc.Create(f.ctx, timeentry.CreateTimeEntryDTO{TaskID: f.task.ID, Date: util.MustParseDate(d), Hours: 1})
		require.NoError(t, err)
	}

	entries, err := f.svc.ListMineForWeek(f.ctx, util.MustParseDate("2024-03-13"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-03-11", entries[0].Date.String())
	assert.Equal(t, "2024-03-17", entries[1].Date.String())
}
