package sentinel

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// GracePeriod is the time to wait after SIGTERM before sending SIGKILL.
	GracePeriod = 10 * time.Second

	// InitialBackoff is the initial delay before restarting after an abnormal exit.
	InitialBackoff = 5 * time.Second

	// MaxBackoff is the maximum delay between restarts.
	MaxBackoff = 10 * time.Minute

	// BackoffFactor is the multiplier for each successive backoff.
	BackoffFactor = 2.0

	// SuccessRunTime is how long the child must run before backoff resets.
	SuccessRunTime = 30 * time.Second

	// DebounceInterval is the delay after an fsnotify event before checking the checksum.
	DebounceInterval = 100 * time.Millisecond
)

// Config describes the child to supervise.
type Config struct {
	// BinaryPath is executed and watched. Defaults to the running executable.
	BinaryPath string
	// Args are passed to the child, e.g. []string{"run"}.
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Sentinel keeps a worker child process alive. It restarts the child with exponential
// backoff when it exits and replaces it when the binary on disk changes.
type Sentinel struct {
	cfg      Config
	lastHash [sha256.Size]byte
	backoff  time.Duration
	logger   *slog.Logger
}

func New(cfg Config) (*Sentinel, error) {
	if cfg.BinaryPath == "" {
		p, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable path: %w", err)
		}
		cfg.BinaryPath = p
	}
	// Resolve symlinks so we watch the real file location.
	p, err := filepath.EvalSymlinks(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("resolve symlinks for %s: %w", cfg.BinaryPath, err)
	}
	cfg.BinaryPath = p
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hash, err := HashFile(cfg.BinaryPath)
	if err != nil {
		return nil, err
	}
	return &Sentinel{
		cfg:      cfg,
		lastHash: hash,
		backoff:  InitialBackoff,
		logger:   logger.With("component", "sentinel"),
	}, nil
}

// Run blocks until ctx is cancelled. On cancellation the child receives SIGTERM,
// which the worker treats as a clean shutdown, and Run returns once it has exited.
func (s *Sentinel) Run(ctx context.Context) error {
	s.logger.Info("starting sentinel", "binary", s.cfg.BinaryPath, "args", s.cfg.Args, "hash", fmt.Sprintf("%x", s.lastHash[:8]))

	updateCh := make(chan struct{}, 1)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		s.watchBinary(ctx, updateCh)
	}()
	defer func() { <-watchDone }()

	for {
		if ctx.Err() != nil {
			return nil
		}

		child, err := s.startChild()
		if err != nil {
			s.logger.Error("failed to start child", "error", err)
			s.sleepBackoff(ctx)
			s.increaseBackoff()
			continue
		}
		startTime := time.Now()

		childDone := make(chan error, 1)
		go func() {
			childDone <- child.Wait()
		}()

		select {
		case err := <-childDone:
			elapsed := time.Since(startTime)
			if err != nil {
				s.logger.Warn("child exited with error", "elapsed", elapsed, "error", err)
				if elapsed >= SuccessRunTime {
					s.backoff = InitialBackoff
				}
				s.sleepBackoff(ctx)
				s.increaseBackoff()
			} else {
				// The worker runs until interrupted, so a clean exit still warrants a restart.
				s.logger.Info("child exited cleanly", "elapsed", elapsed)
				s.backoff = InitialBackoff
				s.sleep(ctx, time.Second)
			}

		case <-updateCh:
			s.logger.Info("binary update detected, restarting child")
			s.stopChild(child)
			<-childDone
			if h, err := HashFile(s.cfg.BinaryPath); err == nil {
				s.lastHash = h
				s.logger.Info("new binary hash", "hash", fmt.Sprintf("%x", s.lastHash[:8]))
			}
			s.backoff = InitialBackoff

		case <-ctx.Done():
			s.logger.Info("shutting down, stopping child")
			s.stopChild(child)
			<-childDone
			s.logger.Info("sentinel exiting")
			return nil
		}
	}
}

func (s *Sentinel) startChild() (*exec.Cmd, error) {
	cmd := exec.Command(s.cfg.BinaryPath, s.cfg.Args...)
	cmd.Stdout = s.cfg.Stdout
	cmd.Stderr = s.cfg.Stderr
	// Child inherits AGENTFEED_* and the rest of the environment.
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec %s: %w", s.cfg.BinaryPath, err)
	}
	s.logger.Info("started child process", "pid", cmd.Process.Pid)
	return cmd, nil
}

// stopChild sends SIGTERM and schedules a SIGKILL after the grace period.
// The caller drains the Wait result.
func (s *Sentinel) stopChild(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	s.logger.Info("sending SIGTERM to child", "pid", pid)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.logger.Warn("failed to send SIGTERM", "pid", pid, "error", err)
		return
	}

	go func() {
		time.Sleep(GracePeriod)
		if err := cmd.Process.Signal(syscall.Signal(0)); err == nil {
			s.logger.Warn("grace period expired, sending SIGKILL", "pid", pid)
			if err := cmd.Process.Kill(); err != nil {
				s.logger.Error("failed to send SIGKILL", "pid", pid, "error", err)
			}
		}
	}()
}

// watchBinary watches the binary's parent directory, since deploys usually
// replace the file with a rename, and notifies updateCh when the checksum changes.
func (s *Sentinel) watchBinary(ctx context.Context, updateCh chan<- struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("failed to create fsnotify watcher", "error", err)
		return
	}
	defer watcher.Close()

	watchDir := filepath.Dir(s.cfg.BinaryPath)
	binaryName := filepath.Base(s.cfg.BinaryPath)
	if err := watcher.Add(watchDir); err != nil {
		s.logger.Error("failed to watch directory", "dir", watchDir, "error", err)
		return
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != binaryName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(DebounceInterval, func() {
				newHash, err := HashFile(s.cfg.BinaryPath)
				if err != nil {
					s.logger.Warn("failed to hash binary after event", "error", err)
					return
				}
				if newHash == s.lastHash {
					return
				}
				select {
				case updateCh <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("fsnotify error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}

// HashFile computes the SHA256 hash of the file at the given path.
func HashFile(path string) ([sha256.Size]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("hash %s: %w", path, err)
	}

	var result [sha256.Size]byte
	copy(result[:], h.Sum(nil))
	return result, nil
}

func (s *Sentinel) sleepBackoff(ctx context.Context) {
	s.logger.Info("waiting before restart", "backoff", s.backoff)
	s.sleep(ctx, s.backoff)
}

func (s *Sentinel) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// increaseBackoff multiplies the backoff by the factor, capping at the maximum.
func (s *Sentinel) increaseBackoff() {
	s.backoff = time.Duration(float64(s.backoff) * BackoffFactor)
	if s.backoff > MaxBackoff {
		s.backoff = MaxBackoff
	}
}
