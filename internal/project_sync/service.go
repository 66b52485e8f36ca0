package projectsync

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/monday"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"github.com/saulo-duarte/studio-ops/internal/task"
	"github.com/saulo-duarte/studio-ops/internal/telemetry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/sirupsen/logrus"
)

var ErrNoBoards = errors.New("no monday boards configured")

type BoardSource interface {
	ListBoards(ctx context.Context) ([]mapping.Board, error)
	ListMappings(ctx context.Context) ([]mapping.ColumnMapping, error)
}

type EntryCounter interface {
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
}

type SyncService interface {
	SyncAll(ctx context.Context, progress ProgressFunc) (*SyncReport, error)
	MergeDuplicates(ctx context.Context) (int, error)
}

type syncService struct {
	boards   BoardSource
	fetcher  monday.Fetcher
	projects project.ProjectRepository
	tasks    task.TaskRepository
	entries  EntryCounter
	merger   MergeRepository
	caps     capability.Set
	now      func() time.Time
}

func NewService(
	boards BoardSource,
	fetcher monday.Fetcher,
	projects project.ProjectRepository,
	tasks task.TaskRepository,
	entries EntryCounter,
	merger MergeRepository,
	caps capability.Set,
) SyncService {
	return &syncService{
		boards:   boards,
		fetcher:  fetcher,
		projects: projects,
		tasks:    tasks,
		entries:  entries,
		merger:   merger,
		caps:     caps,
		now:      time.Now,
	}
}

// precedence ranks board kinds when one item shows up on several boards.
func precedence(kind mapping.BoardKind) int {
	switch kind {
	case mapping.BoardCompleted:
		return 3
	case mapping.BoardMain, mapping.BoardFlexi:
		return 2
	case mapping.BoardLeads:
		return 1
	}
	return 0
}

func statusFor(kind mapping.BoardKind) project.ProjectStatus {
	switch kind {
	case mapping.BoardCompleted:
		return project.StatusLocked
	case mapping.BoardLeads:
		return project.StatusLead
	}
	return project.StatusActive
}

type candidate struct {
	item  monday.Item
	board mapping.Board
}

// SyncAll mirrors every configured board into projects and tasks, then
// archives or deletes projects that disappeared upstream and merges duplicates.
func (s *syncService) SyncAll(ctx context.Context, progress ProgressFunc) (*SyncReport, error) {
	log := config.WithContext(ctx)
	started := s.now()

	if err := capability.Require(s.caps.ProjectSync && s.caps.TimeTracking, capability.StepProjectSync); err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, apperror.NotConfigured(capability.StepMonday)
	}

	boards, err := s.boards.ListBoards(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list boards")
		return nil, err
	}
	if len(boards) == 0 {
		return nil, apperror.Wrap(apperror.KindNotConfigured, "not configured: "+capability.StepProjectSync, ErrNoBoards)
	}

	idx := mapping.Index{}
	if s.caps.ColumnMappings {
		mappings, err := s.boards.ListMappings(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list column mappings")
			return nil, err
		}
		idx = mapping.NewIndex(mappings)
	}

	report := &SyncReport{Boards: len(boards), Errors: []string{}}
	progress.report(PhaseStart, "Syncing %d boards", len(boards))

	candidates, allFetched := s.collect(ctx, boards, report, progress)
	report.Items = len(candidates)

	progress.report(PhaseProjects, "Updating %s projects", humanize.Comma(int64(len(candidates))))
	for _, c := range candidates {
		if err := s.syncItem(ctx, c, idx, report); err != nil {
			log.WithError(err).WithField("item_id", c.item.ID).Warn("Failed to sync item")
			report.fail("item %s (%s): %v", c.item.ID, c.item.Name, err)
		}
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.item.ID] = true
	}

	if allFetched {
		progress.report(PhaseStale, "Checking for projects removed upstream")
		s.retireStale(ctx, seen, report)
	} else {
		report.StaleSkipped = true
		progress.report(PhaseStale, "Skipping stale cleanup because a board failed to load")
		log.Warn("Stale project cleanup skipped after board fetch failure")
	}

	progress.report(PhaseDedupe, "Merging duplicate projects")
	merged, err := s.MergeDuplicates(ctx)
	if err != nil {
		report.fail("merge duplicates: %v", err)
	}
	report.Merged = merged

	outcome := telemetry.OutcomeSuccess
	if len(report.Errors) > 0 {
		outcome = telemetry.OutcomePartial
	}
	telemetry.SyncRuns.WithLabelValues(outcome).Inc()

	progress.report(PhaseDone, "Synced %s items in %s with %d errors (started %s)",
		humanize.Comma(int64(report.Items)),
		s.now().Sub(started).Round(time.Millisecond),
		len(report.Errors),
		humanize.Time(started))

	log.WithFields(logrus.Fields{
		"boards":   report.Boards,
		"items":    report.Items,
		"created":  report.Created,
		"updated":  report.Updated,
		"moved":    report.Moved,
		"archived": report.Archived,
		"deleted":  report.Deleted,
		"merged":   report.Merged,
		"errors":   len(report.Errors),
	}).Info("Project sync finished")
	return report, nil
}

// collect fetches every board and keeps, per item, the board with the highest
// precedence. The second result is false when any board failed to load.
func (s *syncService) collect(ctx context.Context, boards []mapping.Board, report *SyncReport, progress ProgressFunc) ([]candidate, bool) {
	log := config.WithContext(ctx)
	byItem := make(map[string]candidate)
	allFetched := true

	for _, b := range boards {
		progress.report(PhaseFetch, "Fetching %s board %q", b.Kind, b.Name)

		items, err := s.fetcher.FetchBoardItems(ctx, b.BoardID)
		if err != nil {
			allFetched = false
			log.WithError(err).WithField("board_id", b.BoardID).Warn("Failed to fetch board")
			report.fail("board %s (%s): %v", b.BoardID, b.Name, err)
			progress.report(PhaseError, "Board %q failed: %s", b.Name, apperror.PublicMessage(err))
			continue
		}
		progress.report(PhaseFetch, "Fetched %s items from %q", humanize.Comma(int64(len(items))), b.Name)

		for _, it := range items {
			if !it.IsActive() {
				continue
			}
			current, ok := byItem[it.ID]
			if ok && precedence(current.board.Kind) >= precedence(b.Kind) {
				continue
			}
			byItem[it.ID] = candidate{item: it, board: b}
		}
	}

	out := make([]candidate, 0, len(byItem))
	for _, c := range byItem {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].item.ID < out[j].item.ID })
	return out, allFetched
}

// syncItem upserts one project by external item id, then its tasks. An item
// that moved boards updates the existing row's board reference.
func (s *syncService) syncItem(ctx context.Context, c candidate, idx mapping.Index, report *SyncReport) error {
	now := s.now()
	boardID := c.board.BoardID

	existing, err := s.projects.FindByExternalItemID(ctx, c.item.ID)
	if err != nil {
		return err
	}

	status := statusFor(c.board.Kind)
	p := &project.Project{ExternalItemID: c.item.ID}
	isNew := len(existing) == 0
	if !isNew {
		p = &existing[0]
		// A manual lock outlives the item's presence on an active board.
		if p.IsLocked() && status == project.StatusActive {
			status = project.StatusLocked
		}
	}
	moved := !isNew && p.BoardID != boardID

	f := extract(&c.item, boardID, idx)
	p.BoardID = boardID
	p.Name = c.item.Name
	p.Status = status
	f.apply(p)
	p.RawData = rawData(&c.item)
	p.LastSyncedAt = &now
	if c.item.CreatedAt != nil {
		created := util.DateOf(*c.item.CreatedAt)
		p.CreatedOn = &created
	}

	switch {
	case isNew:
		if err := s.projects.Create(ctx, p); err != nil {
			return err
		}
		report.Created++
		telemetry.SyncedItems.WithLabelValues("created").Inc()
	default:
		if err := s.projects.Update(ctx, p); err != nil {
			return err
		}
		if moved {
			report.Moved++
			telemetry.SyncedItems.WithLabelValues("moved").Inc()
		} else {
			report.Updated++
			telemetry.SyncedItems.WithLabelValues("updated").Inc()
		}
	}

	return s.syncTasks(ctx, p, &c.item, boardID, idx, now, report)
}

func (s *syncService) syncTasks(ctx context.Context, p *project.Project, item *monday.Item, boardID string, idx mapping.Index, now time.Time, report *SyncReport) error {
	existing, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	byExternal := make(map[string]*task.Task, len(existing))
	for i := range existing {
		byExternal[existing[i].ExternalItemID] = &existing[i]
	}

	seen := make(map[string]bool, len(item.Subitems))
	for i := range item.Subitems {
		sub := &item.Subitems[i]
		if !sub.IsActive() {
			continue
		}
		seen[sub.ID] = true

		subBoard := sub.BoardID(boardID)
		f := extract(sub, subBoard, idx)

		t, ok := byExternal[sub.ID]
		if !ok {
			t = &task.Task{ExternalItemID: sub.ID, ProjectID: p.ID}
		}
		t.BoardID = subBoard
		t.Name = sub.Name
		t.Status = task.StatusActive
		if f.has(mapping.FieldQuotedHours) {
			t.QuotedHours = f.QuotedHours
		}
		t.RawData = rawData(sub)
		t.LastSyncedAt = &now

		if ok {
			if err := s.tasks.Update(ctx, t); err != nil {
				return err
			}
			report.TasksUpdated++
			continue
		}
		if err := s.tasks.Create(ctx, t); err != nil {
			return err
		}
		report.TasksCreated++
	}

	for i := range existing {
		t := &existing[i]
		if seen[t.ExternalItemID] {
			continue
		}
		n, err := s.entries.CountByTask(ctx, t.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			if t.Status != task.StatusArchived {
				if err := s.tasks.SetStatus(ctx, t.ID, task.StatusArchived); err != nil {
					return err
				}
				report.TasksArchived++
			}
			continue
		}
		if err := s.tasks.Delete(ctx, t.ID); err != nil {
			return err
		}
		report.TasksDeleted++
	}
	return nil
}

// retireStale handles projects absent from every board. Projects with
// recorded hours are archived, locked ones stay locked, the rest are deleted.
func (s *syncService) retireStale(ctx context.Context, seen map[string]bool, report *SyncReport) {
	log := config.WithContext(ctx)

	all, err := s.projects.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list projects for stale check")
		report.fail("stale check: %v", err)
		return
	}

	for i := range all {
		p := &all[i]
		if p.ExternalItemID == "" || seen[p.ExternalItemID] {
			continue
		}

		n, err := s.entries.CountByProject(ctx, p.ID)
		if err != nil {
			report.fail("project %s: %v", p.ExternalItemID, err)
			continue
		}

		if n > 0 {
			if p.Status == project.StatusArchived || p.IsLocked() {
				continue
			}
			if err := s.projects.SetStatus(ctx, p.ID, project.StatusArchived); err != nil {
				report.fail("archive project %s: %v", p.ExternalItemID, err)
				continue
			}
			report.Archived++
			telemetry.SyncedItems.WithLabelValues("archived").Inc()
			continue
		}

		if err := s.projects.DeleteWithTasks(ctx, p.ID); err != nil {
			report.fail("delete project %s: %v", p.ExternalItemID, err)
			continue
		}
		report.Deleted++
		telemetry.SyncedItems.WithLabelValues("deleted").Inc()
		log.WithField("external_item_id", p.ExternalItemID).Info("Deleted project missing upstream")
	}
}

// MergeDuplicates collapses projects sharing an external item id. It returns
// the number of redundant rows removed.
func (s *syncService) MergeDuplicates(ctx context.Context) (int, error) {
	log := config.WithContext(ctx)

	if err := capability.Require(s.caps.ProjectSync && s.caps.TimeTracking, capability.StepProjectSync); err != nil {
		return 0, err
	}

	ids, err := s.merger.DuplicateExternalIDs(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to find duplicate projects")
		return 0, err
	}

	removed := 0
	var errs []error
	for _, id := range ids {
		n, err := s.merger.MergeProjects(ctx, id)
		if err != nil {
			log.WithError(err).WithField("external_item_id", id).Error("Failed to merge duplicate projects")
			errs = append(errs, err)
			continue
		}
		removed += n
	}

	if removed > 0 {
		telemetry.SyncedItems.WithLabelValues("merged").Add(float64(removed))
		log.WithField("removed", removed).Info("Merged duplicate projects")
	}
	return removed, errors.Join(errs...)
}
