package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	AgentID  string `envconfig:"AGENT_ID" default:"JC"`
}

type FeedEnv struct {
	Path         string        `envconfig:"FEED_PATH" default:"docs/agent-feed.jsonl"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
}

type WorkerEnv struct {
	ProjectRoot        string   `envconfig:"PROJECT_ROOT" default:"."`
	LogFile            string   `envconfig:"WORKER_LOG" default:"worker.log"`
	LogMaxSizeMB       int      `envconfig:"WORKER_LOG_MAX_SIZE_MB" default:"10"`
	LogMaxBackups      int      `envconfig:"WORKER_LOG_MAX_BACKUPS" default:"3"`
	AuthorizedAssigner []string `envconfig:"AUTHORIZED_ASSIGNERS" default:"DC"`
	AuthorizationFile  string   `envconfig:"AUTHORIZATION_FILE"`
	DeleteDenylist     []string `envconfig:"DELETE_DENYLIST" default:"__init__.py,main.py,config,.env"`
	HeartbeatEvery     int      `envconfig:"HEARTBEAT_EVERY" default:"12"`
	MetricsTextfile    string   `envconfig:"METRICS_TEXTFILE"`
}

type StorageEnv struct {
	Type     string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir  string `envconfig:"STORAGE_BASE_DIR" default:".agentfeed"`
	StateKey string `envconfig:"STATE_KEY" default:"worker_state.json"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"agentfeed/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type Env struct {
	BaseEnv
	FeedEnv
	WorkerEnv
	StorageEnv
}

const namespace = "AGENTFEED"

// LoadEnv reads .env files (if present) into the process environment and then
// processes AGENTFEED_* variables. Variables already set win over .env values.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	if e.AgentID == "" {
		return errors.New("AGENTFEED_AGENT_ID must not be empty")
	}
	if e.PollInterval <= 0 {
		return fmt.Errorf("AGENTFEED_POLL_INTERVAL must be positive, got %s", e.PollInterval)
	}
	switch e.StorageEnv.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown AGENTFEED_STORAGE_TYPE %q", e.StorageEnv.Type)
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// IsLocal reports whether logs should be rendered for a terminal.
func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}
