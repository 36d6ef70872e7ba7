package task

import (
	"fmt"

	"github.com/kazz187/agentfeed/internal/feed"
)

// Task is the view of a task_assigned entry that executors work from.
type Task struct {
	// ID is details.task_id. Legacy assignments have none.
	ID            string
	Description   string
	Priority      Priority
	Kind          Kind
	FilesToCreate []string
	FilesToModify []string
	FilesToDelete []string
	Requirements  []string
	Notes         string
	// Command is an optional shell command for run_tests.
	Command    string
	AssignedBy string
	AssignedAt string
	Entry      *feed.Entry
}

// FromEntry builds a Task from a task_assigned entry. An unknown kind is kept out of Kind and
// reported through the returned error so callers can still dispatch by the remaining fields.
func FromEntry(e *feed.Entry) (*Task, error) {
	if e == nil {
		return nil, fmt.Errorf("nil entry")
	}
	if e.Action != feed.ActionTaskAssigned {
		return nil, fmt.Errorf("entry action %q is not %s", e.Action, feed.ActionTaskAssigned)
	}
	assignedBy := e.Detail("assigned_by")
	if assignedBy == "" {
		assignedBy = e.Agent
	}
	t := &Task{
		ID:            e.Detail("task_id"),
		Description:   e.Detail("task"),
		Priority:      ParsePriority(e.Detail("priority")),
		FilesToCreate: e.DetailStrings("files_to_create"),
		FilesToModify: e.DetailStrings("files_to_modify"),
		FilesToDelete: e.DetailStrings("files_to_delete"),
		Requirements:  e.DetailStrings("requirements"),
		Notes:         e.Detail("notes"),
		Command:       e.Detail("command"),
		AssignedBy:    assignedBy,
		AssignedAt:    e.Timestamp,
		Entry:         e,
	}
	kind, ok := ParseKind(e.Detail("kind"))
	if !ok {
		return t, fmt.Errorf("unknown task kind %q", e.Detail("kind"))
	}
	t.Kind = kind
	return t, nil
}

// Legacy reports whether the assignment predates correlation ids.
func (t *Task) Legacy() bool {
	return t.ID == ""
}
