package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/pkg/sentinel"
)

func supervise(env *config.Env) error {
	logger := setupLogger(env, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	s, err := sentinel.New(sentinel.Config{
		Args:   []string{runCmd.FullCommand()},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return s.Run(ctx)
}
