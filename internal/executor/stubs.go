package executor

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/kazz187/agentfeed/internal/task"
)

func addCode(t *task.Task) *Result {
	return &Result{
		Success:       true,
		Message:       "Code addition task acknowledged - requires manual implementation",
		FilesModified: []string{},
		Details: map[string]any{
			"action":                    "code_addition",
			"requires_manual_execution": true,
			"reason":                    "Complex code modifications need manual review",
		},
	}
}

// runTests does not execute anything. A supplied command is parsed and recorded in normalised
// form so whoever picks the task up can run it as-is.
func runTests(t *task.Task) *Result {
	details := map[string]any{
		"action":                    "test_execution",
		"requires_manual_execution": true,
		"reason":                    "Test execution requires environment setup",
	}
	if strings.TrimSpace(t.Command) != "" {
		normalized, programs, err := parseCommand(t.Command)
		if err != nil {
			return failure(fmt.Sprintf("Invalid test command: %v", err), map[string]any{
				"action":  "test_execution",
				"command": t.Command,
			})
		}
		details["command"] = normalized
		details["programs"] = programs
	}
	return &Result{
		Success:       true,
		Message:       "Test task acknowledged - requires manual execution",
		FilesModified: []string{},
		Details:       details,
	}
}

func acknowledge(t *task.Task) *Result {
	return &Result{
		Success:       true,
		Message:       "Task acknowledged but requires manual execution: " + t.Description,
		FilesModified: []string{},
		Details: map[string]any{
			"action":                    "generic",
			"requires_manual_execution": true,
		},
	}
}

// parseCommand parses a bash command line, returning it reprinted on one line per statement
// and the literal names of the programs it calls.
func parseCommand(command string) (string, []string, error) {
	f, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(command), "")
	if err != nil {
		return "", nil, err
	}

	programs := []string{}
	seen := map[string]bool{}
	syntax.Walk(f, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		if name := call.Args[0].Lit(); name != "" && !seen[name] {
			seen[name] = true
			programs = append(programs, name)
		}
		return true
	})

	var b strings.Builder
	if err := syntax.NewPrinter(syntax.SingleLine(true)).Print(&b, f); err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(b.String()), programs, nil
}
