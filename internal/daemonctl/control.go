package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"vidscribe/internal/api"
	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/preflight"
)

// ErrDaemonNotRunning indicates no server holds the instance lock.
var ErrDaemonNotRunning = errors.New("vidscribe server not running")

// LaunchOptions controls detached server launch.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

// StopResult captures the stop outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Launch starts a detached `vidscribe serve` process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}
	args := []string{"serve"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch server: %w", err)
	}
	return proc.Process.Release()
}

// WaitForHealthy polls /health until it answers or timeout elapses.
func WaitForHealthy(ctx context.Context, client *Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		err := client.Health(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for server")
	}
	return fmt.Errorf("server failed to start: %w", lastErr)
}

// ProcessInfo reports whether a server holds the instance lock and its PID when
// the PID file is readable.
func ProcessInfo(cfg *config.Config) (bool, int, error) {
	if cfg == nil {
		return false, 0, errors.New("configuration not available")
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("probe server lock: %w", err)
	}
	if locked {
		_ = lock.Unlock()
		return false, 0, nil
	}
	pid, _ := readPID(cfg.PIDPath())
	return true, pid, nil
}

// Stop sends SIGTERM to the running server and escalates to SIGKILL when the lock
// is still held after gracePeriod.
func Stop(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	running, pid, err := ProcessInfo(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !running {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid <= 0 {
		return StopResult{}, fmt.Errorf("unable to determine server pid (pid file: %s)", cfg.PIDPath())
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate server process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return StopResult{}, fmt.Errorf("signal server process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if waitForRelease(cfg, gracePeriod) {
		return result, nil
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return result, fmt.Errorf("kill server process %d: %w", pid, err)
	}
	if err := os.Remove(cfg.PIDPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", cfg.PIDPath(), err)
	}
	result.ForcedKill = true
	return result, nil
}

func waitForRelease(cfg *config.Config, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		running, _, err := ProcessInfo(cfg)
		if err == nil && !running {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %q", path)
	}
	return pid, nil
}

// BuildStatusSnapshot returns the live server status, or a locally assembled one
// when the server is unreachable.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config) (api.DaemonStatus, error) {
	if cfg == nil {
		return api.DaemonStatus{}, errors.New("configuration not available")
	}
	if client, err := NewClient(cfg.Paths.APIBind); err == nil {
		queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		status, statusErr := client.Status(queryCtx)
		cancel()
		if statusErr == nil {
			return status, nil
		}
	}

	running, pid, _ := ProcessInfo(cfg)
	status := api.DaemonStatus{
		Running:      running,
		PID:          pid,
		Bind:         cfg.Paths.APIBind,
		DownloadsDir: cfg.Paths.DownloadsDir,
		LockFilePath: cfg.LockPath(),
		Proxy:        cfg.ProxyDisplay(),
		Dependencies: api.FromDependencyStatuses(preflight.CheckSystemDeps(ctx, cfg)),
		Checks:       api.FromCheckResults(preflight.RunAll(ctx, cfg)),
	}
	if stats, ok := offlineHistoryStats(ctx, cfg); ok {
		status.HistoryDBPath = cfg.HistoryPath()
		status.History = &stats
	}
	return status, nil
}

func offlineHistoryStats(ctx context.Context, cfg *config.Config) (api.HistoryStats, bool) {
	if !cfg.History.Enabled {
		return api.HistoryStats{}, false
	}
	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		return api.HistoryStats{}, false
	}
	store, err := history.Open(cfg)
	if err != nil {
		return api.HistoryStats{}, false
	}
	defer store.Close()

	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	stats, err := store.Stats(queryCtx)
	if err != nil {
		return api.HistoryStats{}, false
	}
	return api.FromHistoryStats(stats), true
}
