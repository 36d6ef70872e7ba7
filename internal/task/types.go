package task

import "strings"

// Priority of an assignment. Ordering between priorities is informational only.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority upper-cases s and falls back to MEDIUM for anything unrecognised.
func ParsePriority(s string) Priority {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// Kind is an explicit command type. An empty Kind means the executor falls back to
// inspecting file lists and the free-text description.
type Kind string

const (
	KindNone       Kind = ""
	KindCreateFile Kind = "create_file"
	KindEditFile   Kind = "edit_file"
	KindDeleteFile Kind = "delete_file"
	KindRunTests   Kind = "run_tests"
	KindAddCode    Kind = "add_code"
	KindGeneric    Kind = "generic"
)

var kinds = []Kind{KindCreateFile, KindEditFile, KindDeleteFile, KindRunTests, KindAddCode, KindGeneric}

func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind accepts the kinds above case-insensitively. Unknown values yield KindNone and false.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == KindNone {
		return KindNone, true
	}
	for _, known := range kinds {
		if k == known {
			return k, true
		}
	}
	return KindNone, false
}
