package feed

import (
	"fmt"
	"strings"
	"time"
)

// Action is the open set of entry kinds. Unknown actions are carried through untouched.
type Action = string

const (
	ActionTaskAssigned   Action = "task_assigned"
	ActionTaskStarted    Action = "task_started"
	ActionTaskComplete   Action = "task_complete"
	ActionTaskFailed     Action = "task_failed"
	ActionIssueFound     Action = "issue_found"
	ActionStatusUpdate   Action = "status_update"
	ActionQuestion       Action = "question"
	ActionSessionStart   Action = "session_start"
	ActionCodeRefactor   Action = "code_refactor"
	ActionDesignDecision Action = "design_decision"

	messagePrefix = "message_to_"
)

// TimestampLayout renders UTC with a fixed width so timestamps order correctly as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000+00:00"

// Entry is one line of the feed.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Agent     string         `json:"agent"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
}

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MessageAction returns the action used for a direct message to recipient, e.g. message_to_jc.
func MessageAction(recipient string) string {
	return messagePrefix + strings.ToLower(recipient)
}

// IsMessage reports whether the entry is a message_to_* entry.
func (e *Entry) IsMessage() bool {
	return strings.HasPrefix(e.Action, messagePrefix)
}

// Recipient returns the lower-cased recipient of a message_to_* entry.
func (e *Entry) Recipient() string {
	return strings.TrimPrefix(e.Action, messagePrefix)
}

// Detail returns details[key] if it holds a string.
func (e *Entry) Detail(key string) string {
	if e.Details == nil {
		return ""
	}
	s, _ := e.Details[key].(string)
	return s
}

// DetailStrings returns details[key] as a string slice. A single string is treated as a one-element list
// and non-string elements are rendered with fmt.
func (e *Entry) DetailStrings(key string) []string {
	if e.Details == nil {
		return nil
	}
	switch v := e.Details[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// DetailBool returns details[key] if it holds a bool.
func (e *Entry) DetailBool(key string) bool {
	if e.Details == nil {
		return false
	}
	b, _ := e.Details[key].(bool)
	return b
}
