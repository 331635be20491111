package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"vidscribe/internal/audio"
	"vidscribe/internal/config"
	"vidscribe/internal/daemon"
	"vidscribe/internal/deps"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/preflight"
	"vidscribe/internal/transcript"
	"vidscribe/internal/ytdlp"
)

// Options configures server process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the vidscribe server and blocks until the context is cancelled or a
// termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("vidscribe-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update vidscribe.log link: %v\n", err)
	}
	logDependencySnapshot(signalCtx, logger, cfg)
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "vidscribe-*.log", Exclude: []string{logPath}},
	)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	svcs, closeServices, err := buildServices(cfg, logger)
	if err != nil {
		logger.Error("initialize services", logging.Error(err))
		return err
	}
	defer closeServices()

	d, err := daemon.New(cfg, logger, svcs)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "server start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api_bind and that no other instance holds "+cfg.LockPath()),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("vidscribe server shutting down")
	return nil
}

func buildServices(cfg *config.Config, logger *slog.Logger) (daemon.Services, func(), error) {
	engine, err := ytdlp.NewFromConfig(cfg, logger)
	if err != nil {
		return daemon.Services{}, nil, fmt.Errorf("media engine: %w", err)
	}

	transcoder := media.TranscoderCheckFunc(deps.FFmpegChecker(cfg.Engine.FFmpegBinary, cfg.Engine.YtdlpBinary))
	svcs := daemon.Services{
		Transcripts: transcript.NewService(cfg, engine, logger),
		Audio: audio.NewService(cfg, engine, transcoder, logger,
			audio.WithInspector(ffprobe.Prober{Binary: cfg.Engine.FFprobeBinary}),
		),
	}

	closer := func() {}
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			return daemon.Services{}, nil, fmt.Errorf("open history store: %w", err)
		}
		svcs.History = store
		closer = func() {
			if err := store.Close(); err != nil {
				logger.Warn("close history store", logging.Error(err))
			}
		}
	}
	return svcs, closer, nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "vidscribe.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("proxy_configured", cfg.HasProxy()),
		logging.String("downloads_dir", cfg.Paths.DownloadsDir),
		logging.String("api_bind", cfg.Paths.APIBind),
	}
	if cfg.HasProxy() {
		attrs = append(attrs, logging.String("proxy", cfg.ProxyDisplay()))
	}
	for _, status := range preflight.CheckSystemDeps(ctx, cfg) {
		key := strings.ReplaceAll(strings.ToLower(status.Name), "-", "")
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
