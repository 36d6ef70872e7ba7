package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kazz187/agentfeed/internal/authz"
	"github.com/kazz187/agentfeed/internal/executor"
	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/internal/task"
	"github.com/kazz187/agentfeed/pkg/cerr"
	"github.com/kazz187/agentfeed/pkg/clog"
	"github.com/kazz187/agentfeed/pkg/panicerr"
)

const (
	// StartedBy is recorded in task_started entries written by this loop.
	StartedBy = "autonomous_worker"

	recentDispatchSize = 1024
)

type Config struct {
	AgentID        string
	FeedPath       string
	PollInterval   time.Duration
	HeartbeatEvery int
	// MetricsTextfile, when set, receives the registry in text exposition format after every cycle.
	MetricsTextfile string
}

// Worker polls the feed and runs authorized assignments through an Executor, one at a time.
type Worker struct {
	cfg      Config
	policy   *authz.Policy
	executor executor.Executor
	states   *StateStore
	writer   *feed.Writer
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	// recent holds keys dispatched by this process so a task is never started twice in one
	// lifetime, even if the feed is truncated and its lifecycle entries disappear.
	recent *lru.Cache[string, struct{}]

	state  *State
	cycles int
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithClock sets the timestamp source for entries the worker writes.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.writer = feed.NewWriter(w.cfg.FeedPath, w.cfg.AgentID, feed.WithClock(now))
		w.states.now = now
	}
}

func New(cfg Config, policy *authz.Policy, exec executor.Executor, states *StateStore, opts ...Option) (*Worker, error) {
	if cfg.AgentID == "" {
		return nil, errors.New("worker: agent id is required")
	}
	if cfg.FeedPath == "" {
		return nil, errors.New("worker: feed path is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	recent, err := lru.New[string, struct{}](recentDispatchSize)
	if err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	registry := prometheus.NewRegistry()
	w := &Worker{
		cfg:      cfg,
		policy:   policy,
		executor: exec,
		states:   states,
		writer:   feed.NewWriter(cfg.FeedPath, cfg.AgentID),
		logger:   slog.Default(),
		registry: registry,
		metrics:  MustNewMetrics(registry),
		recent:   recent,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Registry exposes the worker's collectors.
func (w *Worker) Registry() *prometheus.Registry { return w.registry }

// Cursor returns last_processed_timestamp, empty before the first task.
func (w *Worker) Cursor() string { return w.state.Cursor() }

// Init loads persisted state and makes sure the feed exists. Run calls it when needed.
func (w *Worker) Init(ctx context.Context) error {
	if w.state != nil {
		return nil
	}
	if err := feed.Ensure(w.cfg.FeedPath); err != nil {
		return cerr.NewError(cerr.Unavailable, "feed unavailable", err)
	}
	st, err := w.states.Load(ctx)
	if err != nil {
		if !cerr.IsCode(err, cerr.DataLoss) {
			return err
		}
		w.logger.WarnContext(ctx, "could not load state, starting from the beginning of the feed", "error", err)
		st = &State{}
	}
	w.state = st
	w.logger.InfoContext(ctx, "loaded state", "last_processed_timestamp", st.Cursor())
	return nil
}

// Run polls until ctx is cancelled, then saves state and returns nil. A returned error is fatal:
// the feed could not be appended to or the state could not be saved.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Init(ctx); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "autonomous worker started",
		"agent", w.cfg.AgentID,
		"feed", w.cfg.FeedPath,
		"interval", w.cfg.PollInterval,
		"authorized", w.policy.Identities(),
	)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := w.RunCycle(ctx); err != nil {
			w.logger.ErrorContext(ctx, "fatal worker error", "error", err, "stack", cerr.StackOf(err))
			return err
		}
		select {
		case <-ctx.Done():
			w.logger.Info("autonomous worker stopping")
			if err := w.states.Save(context.WithoutCancel(ctx), w.state); err != nil {
				return err
			}
			return nil
		case <-ticker.C:
		}
	}
}

// RunCycle performs one poll and processes every candidate found, returning how many were processed.
func (w *Worker) RunCycle(ctx context.Context) (int, error) {
	if err := w.Init(ctx); err != nil {
		return 0, err
	}
	w.cycles++
	w.metrics.cycles.Inc()
	defer w.writeMetrics()

	entries, err := feed.ReadAll(w.cfg.FeedPath)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to read feed", "error", err)
		return 0, nil
	}

	sel := Select(entries, w.policy, w.cfg.AgentID, w.state.Cursor())
	w.metrics.unauthorizedPending.Set(float64(len(sel.Unauthorized)))
	for _, e := range sel.Unauthorized {
		w.logger.DebugContext(ctx, "ignoring unauthorized assignment", "agent", e.Agent, "assigned_by", e.Detail("assigned_by"), "timestamp", e.Timestamp)
	}

	if len(sel.Candidates) == 0 {
		if w.cfg.HeartbeatEvery > 0 && w.cycles%w.cfg.HeartbeatEvery == 0 {
			w.logger.InfoContext(ctx, "heartbeat: worker active, no pending tasks", "cycles", w.cycles)
		}
		return 0, nil
	}

	w.logger.InfoContext(ctx, "found pending tasks", "count", len(sel.Candidates))
	processed := 0
	for _, e := range sel.Candidates {
		if ctx.Err() != nil {
			break
		}
		// An interrupt after task_started must not leave the task half-recorded.
		dispatched, err := w.process(context.WithoutCancel(ctx), e)
		if err != nil {
			return processed, err
		}
		if dispatched {
			processed++
		}
	}
	return processed, nil
}

// process runs one assignment through its lifecycle and reports whether it reached the executor.
func (w *Worker) process(ctx context.Context, e *feed.Entry) (bool, error) {
	t, perr := task.FromEntry(e)
	if t == nil {
		w.logger.WarnContext(ctx, "skipping malformed assignment", "error", perr)
		return false, w.advance(ctx, e)
	}
	if perr != nil {
		w.logger.WarnContext(ctx, "assignment has an unknown kind, classifying by content", "error", perr)
	}

	// Legacy assignments have no unique key; timestamps may collide between racing writers.
	if !t.Legacy() {
		if w.recent.Contains(t.ID) {
			w.logger.WarnContext(ctx, "skipping task already dispatched by this process", "task_id", t.ID)
			return false, w.advance(ctx, e)
		}
		w.recent.Add(t.ID, struct{}{})
	}

	if t.ID == "" {
		t.ID = task.NewID()
	}
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttributes(ctx, map[string]any{
		clog.TaskIDKey:     t.ID,
		clog.AssignedByKey: t.AssignedBy,
		"priority":         string(t.Priority),
	})

	kind := executor.Classify(t)
	w.logger.InfoContext(ctx, "executing task", "task", t.Description, "kind", kind)
	w.metrics.dispatched.WithLabelValues(string(kind)).Inc()

	if _, err := w.writer.Log(feed.ActionTaskStarted, map[string]any{
		"task":        t.Description,
		"priority":    string(t.Priority),
		"assigned_by": t.AssignedBy,
		"started_by":  StartedBy,
		"task_id":     t.ID,
	}); err != nil {
		return false, cerr.NewError(cerr.Unavailable, "failed to append task_started", err)
	}

	result, err := panicerr.Call(ctx, func(ctx context.Context) (*executor.Result, error) {
		return w.executor.Execute(ctx, t)
	})
	switch {
	case err != nil:
		reason := failureError
		if panicerr.IsPanic(err) {
			reason = failurePanic
		}
		w.logger.ErrorContext(ctx, "task failed", "error", err, "reason", reason)
		if aerr := w.recordFailure(t, err.Error(), traceback(err), reason); aerr != nil {
			return false, aerr
		}
	case result == nil || !result.Success:
		msg := "executor returned no result"
		if result != nil {
			msg = result.Message
		}
		w.logger.WarnContext(ctx, "task unsuccessful", "message", msg)
		if aerr := w.recordFailure(t, msg, "", failureUnsuccessful); aerr != nil {
			return false, aerr
		}
	default:
		files := result.FilesModified
		if files == nil {
			files = []string{}
		}
		details := map[string]any{
			"task":           t.Description,
			"priority":       string(t.Priority),
			"assigned_by":    t.AssignedBy,
			"result":         result.Message,
			"files_modified": files,
			"success":        true,
			"task_id":        t.ID,
		}
		if len(result.Details) > 0 {
			details["details"] = result.Details
		}
		if _, err := w.writer.Log(feed.ActionTaskComplete, details); err != nil {
			return false, cerr.NewError(cerr.Unavailable, "failed to append task_complete", err)
		}
		w.metrics.completed.Inc()
		w.logger.InfoContext(ctx, "task completed", "message", result.Message, "files", files)
	}

	return true, w.advance(ctx, e)
}

func (w *Worker) recordFailure(t *task.Task, msg, tb, reason string) error {
	w.metrics.failed.WithLabelValues(reason).Inc()
	if _, err := w.writer.Log(feed.ActionTaskFailed, map[string]any{
		"task":      t.Description,
		"error":     msg,
		"traceback": tb,
		"task_id":   t.ID,
	}); err != nil {
		return cerr.NewError(cerr.Unavailable, "failed to append task_failed", err)
	}
	return nil
}

// advance moves the cursor to the assignment and persists it.
func (w *Worker) advance(ctx context.Context, e *feed.Entry) error {
	ts := e.Timestamp
	w.state.LastProcessedTimestamp = &ts
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		w.metrics.lastProcessed.Set(float64(parsed.Unix()))
	}
	if err := w.states.Save(ctx, w.state); err != nil {
		return err
	}
	return nil
}

func traceback(err error) string {
	stack := cerr.StackOf(err)
	if stack == "" {
		return ""
	}
	return strings.TrimRight(stack, "\n")
}

func (w *Worker) writeMetrics() {
	if w.cfg.MetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(w.cfg.MetricsTextfile, w.registry); err != nil {
		w.logger.Warn("failed to write metrics textfile", "path", w.cfg.MetricsTextfile, "error", err)
	}
}
