package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/pkg/clog"
)

// consoleHandler renders for a terminal in the local env and as JSON elsewhere.
func consoleHandler(env *config.Env, w io.Writer) slog.Handler {
	if env.IsLocal() {
		return clog.NewTextHandler(w, clog.WithColor(true), clog.WithLevel(env.SlogLevel()))
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: env.SlogLevel()})
}

// setupLogger installs the default logger. When logFile is non-nil, records are
// also written to it as plain text.
func setupLogger(env *config.Env, logFile io.Writer) *slog.Logger {
	handler := consoleHandler(env, os.Stdout)
	if logFile != nil {
		handler = clog.NewFanoutHandler(handler, clog.NewTextHandler(logFile, clog.WithColor(false), clog.WithLevel(env.SlogLevel())))
	}
	logger := slog.New(clog.NewAttributesHandler(handler))
	slog.SetDefault(logger)
	return logger
}
