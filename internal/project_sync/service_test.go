package projectsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/dbtest"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/saulo-duarte/studio-ops/internal/project"
	projectsync "github.com/saulo-duarte/studio-ops/internal/project_sync"
	"github.com/saulo-duarte/studio-ops/internal/task"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubFetcher struct {
	items map[string][]monday.Item
	errs  map[string]error
}

func (s *stubFetcher) FetchBoardItems(ctx context.Context, boardID string) ([]monday.Item, error) {
	if err := s.errs[boardID]; err != nil {
		return nil, err
	}
	return s.items[boardID], nil
}

type env struct {
	db       *gorm.DB
	ctx      context.Context
	mappings mapping.MappingRepository
	projects project.ProjectRepository
	tasks    task.TaskRepository
	entries  timeentry.TimeEntryRepository
	fetcher  *stubFetcher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t,
		&mapping.ColumnMapping{}, &mapping.Board{},
		&project.Project{}, &task.Task{}, &timeentry.TimeEntry{},
	)
	return &env{
		db:       db,
		ctx:      context.Background(),
		mappings: mapping.NewRepository(db),
		projects: project.NewRepository(db),
		tasks:    task.NewRepository(db),
		entries:  timeentry.NewRepository(db),
		fetcher:  &stubFetcher{items: map[string][]monday.Item{}, errs: map[string]error{}},
	}
}

func (e *env) service(caps capability.Set) projectsync.SyncService {
	return projectsync.NewSyncContainer(e.db, caps, e.mappings, e.fetcher, e.projects, e.tasks, e.entries).Service
}

func (e *env) board(t *testing.T, id string, kind mapping.BoardKind) {
	t.Helper()
	require.NoError(t, e.mappings.UpsertBoard(e.ctx, &mapping.Board{BoardID: id, Name: string(kind) + " board", Kind: kind}))
}

func (e *env) project(t *testing.T, externalID, boardID string, status project.ProjectStatus) *project.Project {
	t.Helper()
	p := &project.Project{ExternalItemID: externalID, BoardID: boardID, Name: "Project " + externalID, Status: status}
	require.NoError(t, e.projects.Create(e.ctx, p))
	return p
}

func (e *env) entry(t *testing.T, p *project.Project, taskID uuid.UUID, date string, hours float64) {
	t.Helper()
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{
		UserID:    uuid.New(),
		TaskID:    taskID,
		ProjectID: p.ID,
		Date:      util.MustParseDate(date),
		Hours:     hours,
	}))
}

func strPtr(s string) *string { return &s }

func TestSyncAll_CreatesProjectsWithMappedFields(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	require.NoError(t, e.mappings.SaveMapping(e.ctx, &mapping.ColumnMapping{ColumnType: mapping.FieldClient, ExternalColumnID: "text0"}))
	require.NoError(t, e.mappings.SaveMapping(e.ctx, &mapping.ColumnMapping{ColumnType: mapping.FieldQuotedHours, ExternalColumnID: "numbers1"}))

	e.fetcher.items["main-1"] = []monday.Item{{
		ID:    "100",
		Name:  "Website refresh",
		State: monday.StateActive,
		ColumnValues: []monday.ColumnValue{
			{ID: "text0", Type: "text", Text: "Acme"},
			{ID: "numbers1", Type: "numbers", Text: "40", Value: strPtr(`"40"`)},
		},
		Subitems: []monday.Item{{ID: "101", Name: "Design"}},
	}}

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.TasksCreated)
	assert.Empty(t, report.Errors)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].ClientName)
	require.NotNil(t, rows[0].QuotedHours)
	assert.InDelta(t, 40.0, *rows[0].QuotedHours, 0.001)
	assert.Equal(t, project.StatusActive, rows[0].Status)
	assert.NotNil(t, rows[0].LastSyncedAt)

	tasks, err := e.tasks.ListByProject(e.ctx, rows[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Design", tasks[0].Name)
}

func TestSyncAll_MovedItemUpdatesBoardReference(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	e.board(t, "done-1", mapping.BoardCompleted)
	existing := e.project(t, "100", "main-1", project.StatusActive)

	e.fetcher.items["done-1"] = []monday.Item{{ID: "100", Name: "Website refresh"}}

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 0, report.Created)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, existing.ID, rows[0].ID)
	assert.Equal(t, "done-1", rows[0].BoardID)
	assert.Equal(t, project.StatusLocked, rows[0].Status)
}

func TestSyncAll_HighestPrecedenceBoardWins(t *testing.T) {
	e := newEnv(t)
	e.board(t, "leads-1", mapping.BoardLeads)
	e.board(t, "main-1", mapping.BoardMain)
	e.board(t, "done-1", mapping.BoardCompleted)

	e.fetcher.items["leads-1"] = []monday.Item{{ID: "1", Name: "Lead"}, {ID: "2", Name: "Won lead"}}
	e.fetcher.items["main-1"] = []monday.Item{{ID: "2", Name: "Won lead"}, {ID: "3", Name: "Finished"}}
	e.fetcher.items["done-1"] = []monday.Item{{ID: "3", Name: "Finished"}}

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Items)

	want := map[string]project.ProjectStatus{
		"1": project.StatusLead,
		"2": project.StatusActive,
		"3": project.StatusLocked,
	}
	for id, status := range want {
		rows, err := e.projects.FindByExternalItemID(e.ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 1, id)
		assert.Equal(t, status, rows[0].Status, id)
	}
}

func TestSyncAll_KeepsManualLock(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	e.project(t, "100", "main-1", project.StatusLocked)
	e.fetcher.items["main-1"] = []monday.Item{{ID: "100", Name: "Still on main"}}

	_, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, project.StatusLocked, rows[0].Status)
}

func TestSyncAll_SkipsInactiveItems(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	e.fetcher.items["main-1"] = []monday.Item{
		{ID: "1", Name: "Live", State: monday.StateActive},
		{ID: "2", Name: "Gone", State: monday.StateArchived},
		{ID: "3", Name: "Deleted", State: monday.StateDeleted},
	}

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Items)
	assert.Equal(t, 1, report.Created)
}

func TestSyncAll_RetiresProjectsMissingUpstream(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)

	withHours := e.project(t, "200", "main-1", project.StatusActive)
	tracked := &task.Task{ExternalItemID: "201", ProjectID: withHours.ID, Name: "Build"}
	require.NoError(t, e.tasks.Create(e.ctx, tracked))
	e.entry(t, withHours, tracked.ID, "2024-03-04", 2)

	unused := e.project(t, "300", "main-1", project.StatusActive)
	require.NoError(t, e.tasks.Create(e.ctx, &task.Task{ExternalItemID: "301", ProjectID: unused.ID, Name: "Idle"}))

	locked := e.project(t, "400", "main-1", project.StatusLocked)
	lockedTask := &task.Task{ExternalItemID: "401", ProjectID: locked.ID, Name: "Done"}
	require.NoError(t, e.tasks.Create(e.ctx, lockedTask))
	e.entry(t, locked, lockedTask.ID, "2024-03-04", 1)

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.False(t, report.StaleSkipped)
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, 1, report.Deleted)

	got, err := e.projects.GetByID(e.ctx, withHours.ID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusArchived, got.Status)

	_, err = e.projects.GetByID(e.ctx, unused.ID)
	assert.Error(t, err)
	orphans, err := e.tasks.ListByProject(e.ctx, unused.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	got, err = e.projects.GetByID(e.ctx, locked.ID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusLocked, got.Status)
}

func TestSyncAll_BoardFailureSkipsStaleCleanup(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	e.board(t, "flexi-1", mapping.BoardFlexi)
	e.project(t, "500", "flexi-1", project.StatusActive)

	e.fetcher.items["main-1"] = []monday.Item{{ID: "1", Name: "Fine"}}
	e.fetcher.errs["flexi-1"] = apperror.Upstream("monday", errors.New("rate limited"))

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.True(t, report.StaleSkipped)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, 0, report.Deleted)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "500")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSyncAll_RemovedSubitems(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	p := e.project(t, "100", "main-1", project.StatusActive)

	tracked := &task.Task{ExternalItemID: "101", ProjectID: p.ID, Name: "Tracked"}
	idle := &task.Task{ExternalItemID: "102", ProjectID: p.ID, Name: "Idle"}
	require.NoError(t, e.tasks.Create(e.ctx, tracked))
	require.NoError(t, e.tasks.Create(e.ctx, idle))
	e.entry(t, p, tracked.ID, "2024-03-05", 3)

	e.fetcher.items["main-1"] = []monday.Item{{ID: "100", Name: "Project", Subitems: []monday.Item{{ID: "103", Name: "New"}}}}

	report, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksCreated)
	assert.Equal(t, 1, report.TasksArchived)
	assert.Equal(t, 1, report.TasksDeleted)

	got, err := e.tasks.GetByID(e.ctx, tracked.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusArchived, got.Status)

	_, err = e.tasks.GetByID(e.ctx, idle.ID)
	assert.Error(t, err)
}

func TestSyncAll_ReportsProgress(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	e.fetcher.items["main-1"] = []monday.Item{{ID: "1", Name: "One"}}

	var phases []string
	_, err := e.service(capability.All()).SyncAll(e.ctx, func(p projectsync.Progress) {
		phases = append(phases, p.Phase)
	})
	require.NoError(t, err)
	require.NotEmpty(t, phases)
	assert.Equal(t, projectsync.PhaseStart, phases[0])
	assert.Equal(t, projectsync.PhaseDone, phases[len(phases)-1])
	assert.Contains(t, phases, projectsync.PhaseFetch)
}

func TestSyncAll_NotConfigured(t *testing.T) {
	e := newEnv(t)

	_, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	assert.Equal(t, apperror.KindNotConfigured, apperror.KindOf(err))

	caps := capability.All()
	caps.ProjectSync = false
	e.board(t, "main-1", mapping.BoardMain)
	_, err = e.service(caps).SyncAll(e.ctx, nil)
	assert.Equal(t, apperror.KindNotConfigured, apperror.KindOf(err))
}

func TestMergeDuplicates(t *testing.T) {
	e := newEnv(t)
	older := e.project(t, "100", "main-1", project.StatusActive)
	newer := e.project(t, "100", "flexi-1", project.StatusActive)

	olderTask := &task.Task{ExternalItemID: "101", ProjectID: older.ID, Name: "Design"}
	newerTask := &task.Task{ExternalItemID: "101", ProjectID: newer.ID, Name: "Design"}
	require.NoError(t, e.tasks.Create(e.ctx, olderTask))
	require.NoError(t, e.tasks.Create(e.ctx, newerTask))

	e.entry(t, newer, newerTask.ID, "2024-03-04", 2)
	e.entry(t, newer, newerTask.ID, "2024-03-05", 3)

	removed, err := e.service(capability.All()).MergeDuplicates(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[0].ID)

	tasks, err := e.tasks.ListByProject(e.ctx, newer.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	n, err := e.entries.CountByProject(e.ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	hours, err := e.entries.SumByProject(e.ctx, newer.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, hours, 0.001)
}

func TestSyncAll_UnmappedFieldsKeepStoredValues(t *testing.T) {
	e := newEnv(t)
	e.board(t, "main-1", mapping.BoardMain)
	quoted := 40.0
	require.NoError(t, e.projects.Create(e.ctx, &project.Project{
		ExternalItemID: "100",
		BoardID:        "main-1",
		Name:           "Website refresh",
		Status:         project.StatusActive,
		ClientName:     "Acme",
		QuotedHours:    &quoted,
	}))

	e.fetcher.items["main-1"] = []monday.Item{{
		ID:    "100",
		Name:  "Website refresh v2",
		State: monday.StateActive,
		ColumnValues: []monday.ColumnValue{
			{ID: "text0", Type: "text", Text: ""},
			{ID: "numbers1", Type: "numbers", Text: "12", Value: strPtr(`"12"`)},
		},
	}}

	_, err := e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Website refresh v2", rows[0].Name)
	assert.Equal(t, "Acme", rows[0].ClientName)
	require.NotNil(t, rows[0].QuotedHours)
	assert.InDelta(t, 40.0, *rows[0].QuotedHours, 0.001)

	// A mapped column with an empty cell clears its field.
	require.NoError(t, e.mappings.SaveMapping(e.ctx, &mapping.ColumnMapping{ColumnType: mapping.FieldClient, ExternalColumnID: "text0"}))
	_, err = e.service(capability.All()).SyncAll(e.ctx, nil)
	require.NoError(t, err)

	rows, err = e.projects.FindByExternalItemID(e.ctx, "100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].ClientName)
	require.NotNil(t, rows[0].QuotedHours)
	assert.InDelta(t, 40.0, *rows[0].QuotedHours, 0.001)
}

func TestMergeDuplicates_ClashOverDailyLimitStaysOnOwnTask(t *testing.T) {
	e := newEnv(t)
	older := e.project(t, "200", "main-1", project.StatusActive)
	newer := e.project(t, "200", "main-1", project.StatusActive)

	olderTask := &task.Task{ExternalItemID: "201", ProjectID: older.ID, Name: "Build"}
	newerTask := &task.Task{ExternalItemID: "201", ProjectID: newer.ID, Name: "Build"}
	require.NoError(t, e.tasks.Create(e.ctx, olderTask))
	require.NoError(t, e.tasks.Create(e.ctx, newerTask))

	userID := uuid.New()
	day := util.MustParseDate("2024-03-04")
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{UserID: userID, TaskID: olderTask.ID, ProjectID: older.ID, Date: day, Hours: 15}))
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{UserID: userID, TaskID: newerTask.ID, ProjectID: newer.ID, Date: day, Hours: 15}))

	removed, err := e.service(capability.All()).MergeDuplicates(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "200")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	kept := rows[0]

	var entries []timeentry.TimeEntry
	require.NoError(t, e.db.Where("project_id = ?", kept.ID).Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, en := range entries {
		assert.LessOrEqual(t, en.Hours, float64(timeentry.MaxHoursPerEntry))
	}
	assert.NotEqual(t, entries[0].TaskID, entries[1].TaskID)

	tasks, err := e.tasks.ListByProject(e.ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	hours, err := e.entries.SumByProject(e.ctx, kept.ID)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, hours, 0.001)
}

func TestMergeDuplicates_SumsClashWithinDailyLimit(t *testing.T) {
	e := newEnv(t)
	older := e.project(t, "300", "main-1", project.StatusActive)
	newer := e.project(t, "300", "main-1", project.StatusActive)

	olderTask := &task.Task{ExternalItemID: "301", ProjectID: older.ID, Name: "Build"}
	newerTask := &task.Task{ExternalItemID: "301", ProjectID: newer.ID, Name: "Build"}
	require.NoError(t, e.tasks.Create(e.ctx, olderTask))
	require.NoError(t, e.tasks.Create(e.ctx, newerTask))

	userID := uuid.New()
	day := util.MustParseDate("2024-03-04")
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{UserID: userID, TaskID: olderTask.ID, ProjectID: older.ID, Date: day, Hours: 6}))
	require.NoError(t, e.entries.Create(e.ctx, &timeentry.TimeEntry{UserID: userID, TaskID: newerTask.ID, ProjectID: newer.ID, Date: day, Hours: 3}))

	_, err := e.service(capability.All()).MergeDuplicates(e.ctx)
	require.NoError(t, err)

	rows, err := e.projects.FindByExternalItemID(e.ctx, "300")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var entries []timeentry.TimeEntry
	require.NoError(t, e.db.Where("project_id = ?", rows[0].ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.InDelta(t, 9.0, entries[0].Hours, 0.001)

	tasks, err := e.tasks.ListByProject(e.ctx, rows[0].ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
