package worker

import (
	"slices"

	"github.com/kazz187/agentfeed/internal/authz"
	"github.com/kazz187/agentfeed/internal/feed"
)

// Selection is the outcome of filtering a feed snapshot for one identity.
type Selection struct {
	// Candidates are authorized, unhandled assignments newer than the cursor, oldest first.
	Candidates []*feed.Entry
	// Unauthorized are assignments newer than the cursor whose assigner is not allowed.
	Unauthorized []*feed.Entry
	// Handled are authorized assignments newer than the cursor that agentID already dealt with.
	Handled []*feed.Entry
}

// Select applies the worker's filter to a feed snapshot. after is the persisted cursor; an empty
// cursor admits every assignment.
func Select(entries []*feed.Entry, policy *authz.Policy, agentID, after string) Selection {
	idx := newHandledIndex(entries, agentID)

	var sel Selection
	for _, e := range entries {
		if e.Action != feed.ActionTaskAssigned || e.Timestamp <= after {
			continue
		}
		if !policy.IsAuthorized(e) {
			sel.Unauthorized = append(sel.Unauthorized, e)
			continue
		}
		if idx.handled(e) {
			sel.Handled = append(sel.Handled, e)
			continue
		}
		sel.Candidates = append(sel.Candidates, e)
	}
	slices.SortStableFunc(sel.Candidates, func(a, b *feed.Entry) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return sel
}

// handledIndex summarises agentID's own lifecycle entries.
type handledIndex struct {
	taskIDs map[string]struct{}
	// latest is the newest own task_started/task_complete timestamp, used for assignments without a task_id.
	latest string
}

func newHandledIndex(entries []*feed.Entry, agentID string) *handledIndex {
	idx := &handledIndex{taskIDs: map[string]struct{}{}}
	for _, e := range entries {
		if e.Agent != agentID {
			continue
		}
		switch e.Action {
		case feed.ActionTaskStarted, feed.ActionTaskComplete, feed.ActionTaskFailed:
		default:
			continue
		}
		if id := e.Detail("task_id"); id != "" {
			idx.taskIDs[id] = struct{}{}
		}
		if e.Action != feed.ActionTaskFailed && e.Timestamp > idx.latest {
			idx.latest = e.Timestamp
		}
	}
	return idx
}

func (idx *handledIndex) handled(assignment *feed.Entry) bool {
	if id := assignment.Detail("task_id"); id != "" {
		_, ok := idx.taskIDs[id]
		return ok
	}
	return idx.latest > assignment.Timestamp
}
