package feed

import (
	"time"
)

// Writer appends entries under a fixed agent identity.
type Writer struct {
	path  string
	agent string
	now   func() time.Time
}

type WriterOption func(*Writer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

func NewWriter(path, agent string, opts ...WriterOption) *Writer {
	w := &Writer{
		path:  path,
		agent: agent,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) Path() string  { return w.path }
func (w *Writer) Agent() string { return w.agent }

// Log appends an entry stamped with the current UTC time and returns it.
func (w *Writer) Log(action string, details map[string]any) (*Entry, error) {
	if details == nil {
		details = map[string]any{}
	}
	entry := &Entry{
		Timestamp: FormatTimestamp(w.now()),
		Agent:     w.agent,
		Action:    action,
		Details:   details,
	}
	if err := Append(w.path, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Completion is a manually reported task_complete.
type Completion struct {
	Task         string
	Files        []string
	TestsPassing bool
	Notes        string
	CommitHash   string
}

func (w *Writer) TaskComplete(c Completion) (*Entry, error) {
	details := map[string]any{
		"task":          c.Task,
		"tests_passing": c.TestsPassing,
	}
	setList(details, "files", c.Files)
	setString(details, "notes", c.Notes)
	setString(details, "commit_hash", c.CommitHash)
	return w.Log(ActionTaskComplete, details)
}

// Assignment is the payload of a task_assigned entry.
type Assignment struct {
	Task          string
	Priority      string
	FilesToCreate []string
	FilesToModify []string
	FilesToDelete []string
	Requirements  []string
	Notes         string
	TaskID        string
	Kind          string
	Command       string
	AssignedBy    string
	AssignedVia   string
}

func (w *Writer) AssignTask(a Assignment) (*Entry, error) {
	priority := a.Priority
	if priority == "" {
		priority = "MEDIUM"
	}
	details := map[string]any{
		"task":     a.Task,
		"priority": priority,
	}
	setList(details, "files_to_create", a.FilesToCreate)
	setList(details, "files_to_modify", a.FilesToModify)
	setList(details, "files_to_delete", a.FilesToDelete)
	setList(details, "requirements", a.Requirements)
	setString(details, "notes", a.Notes)
	setString(details, "task_id", a.TaskID)
	setString(details, "kind", a.Kind)
	setString(details, "command", a.Command)
	setString(details, "assigned_by", a.AssignedBy)
	setString(details, "assigned_via", a.AssignedVia)
	return w.Log(ActionTaskAssigned, details)
}

// Issue is a problem or blocker reported with issue_found.
type Issue struct {
	Issue        string
	Severity     string
	File         string
	Line         int
	NeedsDCInput bool
}

func (w *Writer) FoundIssue(i Issue) (*Entry, error) {
	severity := i.Severity
	if severity == "" {
		severity = "MEDIUM"
	}
	details := map[string]any{
		"issue":          i.Issue,
		"severity":       severity,
		"needs_dc_input": i.NeedsDCInput,
	}
	setString(details, "file", i.File)
	if i.Line > 0 {
		details["line"] = i.Line
	}
	return w.Log(ActionIssueFound, details)
}

// Message appends message_to_<recipient> carrying the sender and the channel it came through.
func (w *Writer) Message(recipient, message, via string) (*Entry, error) {
	details := map[string]any{
		"message": message,
		"from":    w.agent,
	}
	setString(details, "via", via)
	return w.Log(MessageAction(recipient), details)
}

func setString(details map[string]any, key, value string) {
	if value != "" {
		details[key] = value
	}
}

func setList(details map[string]any, key string, values []string) {
	if len(values) > 0 {
		details[key] = values
	}
}
