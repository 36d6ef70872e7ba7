package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/kazz187/agentfeed/internal/authz"
	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/executor"
	"github.com/kazz187/agentfeed/internal/worker"
	"github.com/kazz187/agentfeed/pkg/clog"
	"github.com/kazz187/agentfeed/pkg/storage"
)

func runWorker(env *config.Env) error {
	logFile := clog.NewRollingFile(env.LogFile, env.LogMaxSizeMB, env.LogMaxBackups)
	defer logFile.Close()
	logger := setupLogger(env, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx = clog.ContextWithSlog(ctx)
	clog.AddAttribute(ctx, clog.AgentKey, env.AgentID)

	states, err := newStateStore(ctx, env)
	if err != nil {
		return err
	}
	policy, err := newPolicy(env)
	if err != nil {
		return err
	}
	exec, err := executor.New(env.ProjectRoot,
		executor.WithDenylist(env.DeleteDenylist),
		executor.WithSignature(env.AgentID),
		executor.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	w, err := worker.New(worker.Config{
		AgentID:         env.AgentID,
		FeedPath:        env.FeedEnv.Path,
		PollInterval:    env.PollInterval,
		HeartbeatEvery:  env.HeartbeatEvery,
		MetricsTextfile: env.MetricsTextfile,
	}, policy, exec, states, worker.WithLogger(logger))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func newStorage(ctx context.Context, env *config.Env) (storage.Storage, error) {
	switch env.StorageEnv.Type {
	case "s3":
		store, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return store, nil
	}
}

func newStateStore(ctx context.Context, env *config.Env) (*worker.StateStore, error) {
	store, err := newStorage(ctx, env)
	if err != nil {
		return nil, err
	}
	return worker.NewStateStore(store, env.StateKey), nil
}

// newPolicy builds the allow-list from AGENTFEED_AUTHORIZED_ASSIGNERS plus the optional YAML file.
func newPolicy(env *config.Env) (*authz.Policy, error) {
	policy := authz.New(env.AuthorizedAssigner...)
	if env.AuthorizationFile != "" {
		if err := policy.LoadFile(env.AuthorizationFile); err != nil {
			return nil, err
		}
	}
	if len(policy.Identities()) == 0 {
		slog.Warn("no authorized assigners configured, every assignment will be ignored")
	}
	return policy, nil
}
