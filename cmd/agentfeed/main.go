package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/agentfeed/internal/config"
)

var (
	app = kingpin.New("agentfeed", "Append-only coordination feed for cooperating agents")

	// Worker commands
	runCmd       = app.Command("run", "Run the autonomous worker until interrupted")
	superviseCmd = app.Command("supervise", "Keep the worker running and restart it when the binary changes")

	// Reader commands
	watchCmd = app.Command("watch", "Print new feed entries as they are appended")

	tailCmd = app.Command("tail", "Show recent feed entries grouped by kind")
	tailN   = tailCmd.Flag("lines", "Number of entries to read").Short('n').Default("20").Int()
	tailAll = tailCmd.Flag("all", "Read the whole feed").Bool()

	pendingCmd = app.Command("pending", "List authorized assignments the worker has not handled yet")

	// Writer commands
	logCmd    = app.Command("log", "Append an entry as this agent")
	logAction = logCmd.Arg("action", "Entry action, e.g. status_update").Required().String()
	logPairs  = logCmd.Arg("details", "key=value pairs; values that parse as JSON are stored as JSON").Strings()

	assignCmd          = app.Command("assign", "Append a task_assigned entry")
	assignTask         = assignCmd.Arg("task", "Task description").Required().String()
	assignPriority     = assignCmd.Flag("priority", "LOW, MEDIUM or HIGH").Short('p').Default("MEDIUM").String()
	assignCreate       = assignCmd.Flag("create", "File to create (repeatable)").Strings()
	assignModify       = assignCmd.Flag("modify", "File to modify (repeatable)").Strings()
	assignDelete       = assignCmd.Flag("delete", "File to delete (repeatable)").Strings()
	assignRequirements = assignCmd.Flag("requirement", "Requirement (repeatable)").Short('r').Strings()
	assignNotes        = assignCmd.Flag("notes", "Free-form notes").String()
	assignKind         = assignCmd.Flag("kind", "Explicit task kind").Enum(kindNames()...)
	assignCommand      = assignCmd.Flag("command", "Test command for run_tests tasks").String()
	assignAs           = assignCmd.Flag("as", "Record the task as assigned by this identity").String()
	assignVia          = assignCmd.Flag("via", "How the assignment was relayed").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case runCmd.FullCommand():
		err = runWorker(env)
	case superviseCmd.FullCommand():
		err = supervise(env)
	case watchCmd.FullCommand():
		err = watch(env)
	case tailCmd.FullCommand():
		err = tail(env, *tailN, *tailAll)
	case pendingCmd.FullCommand():
		err = pending(env)
	case logCmd.FullCommand():
		err = logEntry(env, *logAction, *logPairs)
	case assignCmd.FullCommand():
		err = assign(env)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
