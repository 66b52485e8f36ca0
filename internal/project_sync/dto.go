package projectsync

import "fmt"

// Progress phases reported while a sync runs.
const (
	PhaseStart    = "start"
	PhaseFetch    = "fetch"
	PhaseProjects = "projects"
	PhaseStale    = "stale"
	PhaseDedupe   = "dedupe"
	PhaseDone     = "done"
	PhaseError    = "error"
)

type Progress struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

type ProgressFunc func(Progress)

func (f ProgressFunc) report(phase, format string, args ...interface{}) {
	if f == nil {
		return
	}
	f(Progress{Phase: phase, Message: fmt.Sprintf(format, args...)})
}

type SyncReport struct {
	Boards        int      `json:"boards"`
	Items         int      `json:"items"`
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Moved         int      `json:"moved"`
	Archived      int      `json:"archived"`
	Deleted       int      `json:"deleted"`
	TasksCreated  int      `json:"tasks_created"`
	TasksUpdated  int      `json:"tasks_updated"`
	TasksArchived int      `json:"tasks_archived"`
	TasksDeleted  int      `json:"tasks_deleted"`
	Merged        int      `json:"merged"`
	StaleSkipped  bool     `json:"stale_skipped"`
	Errors        []string `json:"errors"`
}

func (r *SyncReport) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
