package main

import (
	"context"
	"fmt"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/internal/worker"
)

// pending reports what the worker would pick up on its next cycle. It creates neither the
// worker state nor the feed.
func pending(env *config.Env) error {
	ctx := context.Background()
	setupLogger(env, nil)

	states, err := newStateStore(ctx, env)
	if err != nil {
		return err
	}
	st, err := states.Peek(ctx)
	if err != nil {
		return err
	}
	policy, err := newPolicy(env)
	if err != nil {
		return err
	}
	entries, err := feed.Snapshot(env.FeedEnv.Path)
	if err != nil {
		return err
	}

	sel := worker.Select(entries, policy, env.AgentID, st.Cursor())
	if len(sel.Candidates) == 0 {
		fmt.Println("No pending tasks")
	} else {
		fmt.Printf("%d pending tasks:\n", len(sel.Candidates))
		for i, e := range sel.Candidates {
			fmt.Printf("  %d. [%s] %s\n", i+1, e.Detail("priority"), e.Detail("task"))
		}
	}
	if n := len(sel.Unauthorized); n > 0 {
		fmt.Printf("(%d unauthorized assignments ignored)\n", n)
	}
	return nil
}
