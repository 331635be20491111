package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"vidscribe/internal/audio"
	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/preflight"
	"vidscribe/internal/transcript"
)

// TranscriptFetcher produces normalized transcripts.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (transcript.Result, error)
}

// AudioExtractor produces audio artifacts under the downloads root.
type AudioExtractor interface {
	Extract(ctx context.Context, videoURL, format string) (audio.Result, error)
}

// HistoryStore records and lists operations.
type HistoryStore interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
	List(ctx context.Context, filter history.Filter) ([]history.Entry, error)
	Stats(ctx context.Context) (history.Stats, error)
}

// Services bundles the collaborators the HTTP surface dispatches to.
type Services struct {
	Transcripts TranscriptFetcher
	Audio       AudioExtractor
	// History is optional; nil disables recording.
	History HistoryStore
}

// Daemon owns the HTTP server and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	services Services
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt atomic.Int64
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StartedAt     time.Time
	Bind          string
	LockFilePath  string
	HistoryDBPath string
	Dependencies  []deps.Status
	Checks        []preflight.Result
	History       *history.Stats
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, svcs Services) (*Daemon, error) {
	if cfg == nil || svcs.Transcripts == nil || svcs.Audio == nil {
		return nil, errors.New("daemon requires config, transcript service, and audio service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		services: svcs,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Handler exposes the HTTP routes without binding a listener.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Start acquires the daemon lock and begins serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vidscribe server instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.startedAt.Store(time.Now().UnixNano())
	d.running.Store(true)
	d.logger.Info("vidscribe server started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
	)
	return nil
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start fails"),
		)
	}
	d.running.Store(false)
	d.logger.Info("vidscribe server stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the bound listener address, or the configured bind before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status including dependency and directory checks.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bind:         d.api.addr(),
		LockFilePath: d.lockPath,
		Dependencies: preflight.CheckSystemDeps(ctx, d.cfg),
		Checks:       preflight.RunAll(ctx, d.cfg),
	}
	if started := d.startedAt.Load(); started > 0 && status.Running {
		status.StartedAt = time.Unix(0, started)
	}
	if d.services.History != nil {
		status.HistoryDBPath = d.cfg.HistoryPath()
		if stats, err := d.services.History.Stats(ctx); err == nil {
			status.History = &stats
		} else {
			d.logger.Debug("history stats unavailable", logging.Error(err))
		}
	}
	return status
}
