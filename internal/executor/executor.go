package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kazz187/agentfeed/internal/task"
)

// Executor turns an assignment into an action on the project tree.
type Executor interface {
	Execute(ctx context.Context, t *task.Task) (*Result, error)
}

// Result is what the worker records for a finished task. Success=false is a handled failure:
// the worker logs it as task_failed without a traceback.
type Result struct {
	Success       bool
	Message       string
	FilesModified []string
	Details       map[string]any
}

// DefaultDenylist holds substrings that make a path undeletable.
var DefaultDenylist = []string{"__init__.py", "main.py", "config", ".env"}

var errEscapesRoot = errors.New("path escapes project root")

// FileExecutor executes tasks against files under a project root.
type FileExecutor struct {
	root      string
	denylist  []string
	signature string
	logger    *slog.Logger
}

type Option func(*FileExecutor)

// WithDenylist replaces DefaultDenylist. Matching is case-insensitive substring matching.
func WithDenylist(patterns []string) Option {
	return func(e *FileExecutor) {
		e.denylist = nil
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				e.denylist = append(e.denylist, strings.ToLower(p))
			}
		}
	}
}

// WithSignature sets the identity written into generated files and edit markers.
func WithSignature(agentID string) Option {
	return func(e *FileExecutor) {
		e.signature = agentID
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *FileExecutor) {
		e.logger = logger
	}
}

// New returns a FileExecutor confined to root, using DefaultDenylist unless overridden.
func New(root string, opts ...Option) (*FileExecutor, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	e := &FileExecutor{
		root:      abs,
		signature: "agentfeed",
		logger:    slog.Default(),
	}
	WithDenylist(DefaultDenylist)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root is the absolute project root every task path resolves against.
func (e *FileExecutor) Root() string { return e.root }

// Execute classifies t and runs the matching action. Handled failures come back as a Result
// with Success=false; a returned error means an I/O failure and carries a stack.
func (e *FileExecutor) Execute(ctx context.Context, t *task.Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind := Classify(t)
	e.logger.InfoContext(ctx, "executing task", "kind", kind, "task", t.Description)

	switch kind {
	case task.KindCreateFile:
		return e.createFiles(t)
	case task.KindEditFile:
		return e.editFiles(t)
	case task.KindDeleteFile:
		return e.deleteFiles(t)
	case task.KindAddCode:
		return addCode(t), nil
	case task.KindRunTests:
		return runTests(t), nil
	default:
		return acknowledge(t), nil
	}
}

// Classify decides how a task is handled. An explicit kind wins, then the file lists in
// create, modify, delete order, then keywords in the description.
func Classify(t *task.Task) task.Kind {
	if t.Kind != task.KindNone {
		return t.Kind
	}
	switch {
	case len(t.FilesToCreate) > 0:
		return task.KindCreateFile
	case len(t.FilesToModify) > 0:
		return task.KindEditFile
	case len(t.FilesToDelete) > 0:
		return task.KindDeleteFile
	}

	desc := strings.ToLower(t.Description)
	switch {
	case strings.Contains(desc, "create file"),
		strings.Contains(desc, "new file"),
		strings.Contains(desc, "create") && strings.Contains(desc, "."):
		return task.KindCreateFile
	case containsAny(desc, "edit", "modify", "update"):
		return task.KindEditFile
	case containsAny(desc, "delete", "remove"):
		return task.KindDeleteFile
	case containsAny(desc, "function", "add"):
		return task.KindAddCode
	case containsAny(desc, "run test", "execute test"):
		return task.KindRunTests
	default:
		return task.KindGeneric
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// resolve maps a task path to an absolute path inside the root and the slash-separated
// path relative to it that is reported back in results.
func (e *FileExecutor) resolve(name string) (abs, rel string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.New("empty path")
	}
	if filepath.IsAbs(name) {
		abs = filepath.Clean(name)
	} else {
		abs = filepath.Join(e.root, name)
	}
	r, err := filepath.Rel(e.root, abs)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s: %w", name, errEscapesRoot)
	}
	return abs, filepath.ToSlash(r), nil
}

func (e *FileExecutor) denied(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range e.denylist {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func failure(message string, details map[string]any) *Result {
	if details == nil {
		details = map[string]any{}
	}
	return &Result{Success: false, Message: message, FilesModified: []string{}, Details: details}
}
