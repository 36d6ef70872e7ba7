package main

import (
	"fmt"
	"os"

	"github.com/kazz187/agentfeed/internal/config"
	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/internal/feedview"
	"github.com/kazz187/agentfeed/pkg/color"
)

func tail(env *config.Env, n int, all bool) error {
	var (
		entries []*feed.Entry
		err     error
	)
	if all {
		entries, err = feed.ReadAll(env.FeedEnv.Path)
	} else {
		entries, err = feed.ReadTail(env.FeedEnv.Path, n)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Agent feed %s (%s view)\n", env.FeedEnv.Path, env.AgentID)
	feedview.New(os.Stdout, color.NewPainter(true), env.AgentID).Grouped(entries)
	return nil
}
