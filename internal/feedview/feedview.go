package feedview

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/pkg/color"
)

const separator = "======================================================================"

// Renderer prints feed entries for a human reading a terminal.
type Renderer struct {
	w     io.Writer
	paint *color.Painter
	self  string
}

// New returns a Renderer for the identity self. Entries written by self are grouped as own activity.
func New(w io.Writer, paint *color.Painter, self string) *Renderer {
	return &Renderer{w: w, paint: paint, self: self}
}

// shortTime trims fractional seconds and the zone.
func shortTime(ts string) string {
	if len(ts) > 19 {
		return ts[:19]
	}
	return ts
}

// Line writes a single summary line.
func (r *Renderer) Line(e *feed.Entry) {
	fmt.Fprintf(r.w, "%s %s %s", r.paint.Dim(shortTime(e.Timestamp)), r.paint.AgentPrefix(e.Agent), r.paint.Action(e.Action))
	if s := Summary(e); s != "" {
		fmt.Fprintf(r.w, "  %s", s)
	}
	fmt.Fprintln(r.w)
}

// Summary picks the most telling detail of an entry.
func Summary(e *feed.Entry) string {
	switch {
	case e.IsMessage():
		return fmt.Sprintf("%s: %s", e.Detail("from"), e.Detail("message"))
	case e.Action == feed.ActionTaskFailed:
		return fmt.Sprintf("%s (%s)", e.Detail("task"), e.Detail("error"))
	case e.Action == feed.ActionIssueFound:
		return fmt.Sprintf("[%s] %s", e.Detail("severity"), e.Detail("issue"))
	case e.Detail("task") != "":
		if p := e.Detail("priority"); p != "" && e.Action == feed.ActionTaskAssigned {
			return fmt.Sprintf("[%s] %s", p, e.Detail("task"))
		}
		return e.Detail("task")
	}
	return ""
}

// Block writes the detailed rendering used by the watcher.
func (r *Renderer) Block(e *feed.Entry) {
	fmt.Fprintln(r.w, separator)
	fmt.Fprintf(r.w, "New entry %s\n", r.paint.Dim(shortTime(e.Timestamp)))
	fmt.Fprintf(r.w, "  Agent:  %s\n", r.paint.AgentPrefix(e.Agent))
	fmt.Fprintf(r.w, "  Action: %s\n", r.paint.Action(e.Action))

	switch {
	case e.Action == feed.ActionTaskAssigned:
		fmt.Fprintf(r.w, "\n  NEW TASK [%s]\n", e.Detail("priority"))
		fmt.Fprintf(r.w, "  %s\n", e.Detail("task"))
		r.list("Create", e.DetailStrings("files_to_create"))
		r.list("Modify", e.DetailStrings("files_to_modify"))
		r.list("Delete", e.DetailStrings("files_to_delete"))
		r.list("Requirements", e.DetailStrings("requirements"))
		if id := e.Detail("task_id"); id != "" {
			fmt.Fprintf(r.w, "  id: %s\n", r.paint.Dim(id))
		}
	case e.IsMessage():
		fmt.Fprintf(r.w, "\n  MESSAGE from %s\n", e.Detail("from"))
		fmt.Fprintf(r.w, "  %s\n", e.Detail("message"))
	case e.Action == feed.ActionTaskStarted:
		fmt.Fprintf(r.w, "\n  STARTED: %s\n", e.Detail("task"))
	case e.Action == feed.ActionTaskComplete:
		fmt.Fprintf(r.w, "\n  COMPLETE: %s\n", e.Detail("task"))
		if res := e.Detail("result"); res != "" {
			fmt.Fprintf(r.w, "  %s\n", res)
		}
		r.list("Files", e.DetailStrings("files_modified"))
	case e.Action == feed.ActionTaskFailed:
		fmt.Fprintf(r.w, "\n  FAILED: %s\n", e.Detail("task"))
		fmt.Fprintf(r.w, "  %s\n", e.Detail("error"))
	default:
		r.details(e)
	}
	fmt.Fprintln(r.w, separator)
}

func (r *Renderer) list(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(r.w, "  %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(r.w, "    - %s\n", item)
	}
}

func (r *Renderer) details(e *feed.Entry) {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if items, ok := e.Details[k].([]any); ok {
			strs := make([]string, len(items))
			for i, item := range items {
				strs[i] = fmt.Sprint(item)
			}
			r.list(k, strs)
			continue
		}
		fmt.Fprintf(r.w, "  %s: %v\n", k, e.Details[k])
	}
}

// Groups splits entries the way the reader presents them.
type Groups struct {
	Tasks []*feed.Entry
	Own   []*feed.Entry
	Other []*feed.Entry
}

// Group sorts entries into assignments addressed to the feed, entries written by self, and the rest.
func (r *Renderer) Group(entries []*feed.Entry) Groups {
	var g Groups
	for _, e := range entries {
		switch {
		case e.Agent == r.self:
			g.Own = append(g.Own, e)
		case e.Action == feed.ActionTaskAssigned || e.IsMessage() && strings.EqualFold(e.Recipient(), r.self):
			g.Tasks = append(g.Tasks, e)
		default:
			g.Other = append(g.Other, e)
		}
	}
	return g
}

// Grouped writes the reader view: the last ten tasks, the last five own entries and the last five others.
func (r *Renderer) Grouped(entries []*feed.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(r.w, "(no entries in feed yet)")
		return
	}
	g := r.Group(entries)
	r.section("TASKS", lastN(g.Tasks, 10))
	r.section(fmt.Sprintf("RECENT %s ACTIVITY", r.self), lastN(g.Own, 5))
	r.section("OTHER", lastN(g.Other, 5))
}

func (r *Renderer) section(title string, entries []*feed.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n[%s]\n", title)
	fmt.Fprintln(r.w, strings.Repeat("-", len(separator)))
	for _, e := range entries {
		r.Line(e)
	}
}

func lastN(entries []*feed.Entry, n int) []*feed.Entry {
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
