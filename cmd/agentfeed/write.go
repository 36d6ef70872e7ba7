package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/internal/task"
)

func kindNames() []string {
	kinds := task.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// parseDetails turns key=value arguments into entry details. A value that is valid JSON
// (number, bool, list, object, quoted string) keeps its JSON type; anything else is a string.
func parseDetails(pairs []string) (map[string]any, error) {
	details := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid detail %q, expected key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			details[key] = decoded
			continue
		}
		details[key] = value
	}
	return details, nil
}

func logEntry(env *config.Env, action string, pairs []string) error {
	details, err := parseDetails(pairs)
	if err != nil {
		return err
	}
	e, err := feed.NewWriter(env.FeedEnv.Path, env.AgentID).Log(action, details)
	if err != nil {
		return err
	}
	fmt.Printf("Logged %s as %s at %s\n", e.Action, e.Agent, e.Timestamp)
	return nil
}

func assign(env *config.Env) error {
	a := feed.Assignment{
		Task:          *assignTask,
		Priority:      string(task.ParsePriority(*assignPriority)),
		FilesToCreate: *assignCreate,
		FilesToModify: *assignModify,
		FilesToDelete: *assignDelete,
		Requirements:  *assignRequirements,
		Notes:         *assignNotes,
		TaskID:        task.NewID(),
		Kind:          *assignKind,
		Command:       *assignCommand,
		AssignedBy:    *assignAs,
		AssignedVia:   *assignVia,
	}
	e, err := feed.NewWriter(env.FeedEnv.Path, env.AgentID).AssignTask(a)
	if err != nil {
		return err
	}
	fmt.Printf("Assigned task %s [%s]: %s\n", a.TaskID, e.Detail("priority"), a.Task)
	return nil
}
