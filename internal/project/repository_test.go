package project_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/dbtest"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openWithForeignKeys(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.Open(t, &project.Project{}, &task.Task{}, &timeentry.TimeEntry{})
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	return db
}

func createProjectWithTask(t *testing.T, ctx context.Context, repo project.ProjectRepository, tasks task.TaskRepository) (*project.Project, *task.Task) {
	t.Helper()
	p := &project.Project{ExternalItemID: uuid.NewString(), Name: "Brand refresh", Status: project.StatusActive}
	require.NoError(t, repo.Create(ctx, p))
	tk := &task.Task{ExternalItemID: uuid.NewString(), ProjectID: p.ID, Name: "Design"}
	require.NoError(t, tasks.Create(ctx, tk))
	return p, tk
}

func TestDeleteWithTasks(t *testing.T) {
	db := openWithForeignKeys(t)
	ctx := context.Background()
	repo, tasks := project.NewRepository(db), task.NewRepository(db)

	p, _ := createProjectWithTask(t, ctx, repo, tasks)
	require.NoError(t, repo.DeleteWithTasks(ctx, p.ID))

	_, err := repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, project.ErrNotFound)
	remaining, err := tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteWithTasks_RecordedHoursBlockDeletion(t *testing.T) {
	db := openWithForeignKeys(t)
	ctx := context.Background()
	repo, tasks, entries := project.NewRepository(db), task.NewRepository(db), timeentry.NewRepository(db)

	p, tk := createProjectWithTask(t, ctx, repo, tasks)
	require.NoError(t, entries.Create(ctx, &timeentry.TimeEntry{
		UserID:    uuid.New(),
		TaskID:    tk.ID,
		ProjectID: p.ID,
		Date:      util.MustParseDate("2024-03-04"),
		Hours:     4,
	}))

	require.Error(t, repo.DeleteWithTasks(ctx, p.ID))

	_, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	n, err := entries.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteWithTasks_RollsBackTasksWhenProjectDeleteFails(t *testing.T) {
	db := openWithForeignKeys(t)
	ctx := context.Background()
	repo, tasks, entries := project.NewRepository(db), task.NewRepository(db), timeentry.NewRepository(db)

	p, tk := createProjectWithTask(t, ctx, repo, tasks)
	_, other := createProjectWithTask(t, ctx, repo, tasks)

	// The entry points at p but hangs off another project's task, so the task
	// delete succeeds and the project delete is refused.
	require.NoError(t, entries.Create(ctx, &timeentry.TimeEntry{
		UserID:    uuid.New(),
		TaskID:    other.ID,
		ProjectID: p.ID,
		Date:      util.MustParseDate("2024-03-05"),
		Hours:     2,
	}))

	require.Error(t, repo.DeleteWithTasks(ctx, p.ID))

	remaining, err := tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, tk.ID, remaining[0].ID)
}
