package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/internal/feedview"
	"github.com/kazz187/agentfeed/pkg/color"
)

func watch(env *config.Env) error {
	logger := setupLogger(env, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := feed.Ensure(env.FeedEnv.Path); err != nil {
		return err
	}
	tailer, err := feed.NewTailer(env.FeedEnv.Path)
	if err != nil {
		return err
	}
	view := feedview.New(os.Stdout, color.NewPainter(true), env.AgentID)

	fmt.Printf("Watching %s as %s (Ctrl+C to stop)\n", env.FeedEnv.Path, env.AgentID)
	return feed.Subscribe(ctx, tailer, env.PollInterval, logger, func(e *feed.Entry) error {
		view.Block(e)
		return nil
	})
}
