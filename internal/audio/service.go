package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
)

const timestampLayout = "2006-01-02_150405"

// maxDirAttempts bounds collision retries when creating the output directory.
const maxDirAttempts = 5

var (
	// ErrTranscoderUnavailable is returned before any network call when ffmpeg cannot run.
	ErrTranscoderUnavailable = services.Tag(services.ErrPrecondition, errors.New(deps.FFmpegMissingMessage))
	// ErrArtifactMissing reports that the engine finished without leaving the expected file.
	ErrArtifactMissing = services.Tag(services.ErrPostcondition, errors.New("audio file not found after processing"))
	// ErrUnsupportedFormat rejects formats outside audio.allowed_formats.
	ErrUnsupportedFormat = services.Tag(services.ErrInvalidInput, errors.New("unsupported audio format"))
)

// fileExtensions lists codecs whose container extension differs from the codec name.
var fileExtensions = map[string]string{
	"aac":    "m4a",
	"vorbis": "ogg",
}

// Result describes a produced audio artifact.
type Result struct {
	ServerPath string
	// RelativePath is slash separated and relative to the downloads root.
	RelativePath    string
	Title           string
	Format          string
	DurationSeconds float64
}

// Inspector probes a produced artifact.
type Inspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for directory names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInspector enables post-download verification of the artifact.
func WithInspector(inspector Inspector) Option {
	return func(s *Service) { s.inspector = inspector }
}

// WithSuffixSource overrides the generator used for collision suffixes.
func WithSuffixSource(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.suffix = next
		}
	}
}

// Service orchestrates audio extraction.
type Service struct {
	cfg        *config.Config
	engine     media.Engine
	transcoder media.TranscoderCheck
	inspector  Inspector
	now        func() time.Time
	suffix     func() string
	logger     *slog.Logger
}

// NewService constructs the audio service.
func NewService(cfg *config.Config, engine media.Engine, transcoder media.TranscoderCheck, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		engine:     engine,
		transcoder: transcoder,
		now:        time.Now,
		suffix:     randomSuffix,
		logger:     logging.NewComponentLogger(logger, "audio"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract downloads the audio of videoURL and converts it to format. An empty
// format selects audio.default_format.
func (s *Service) Extract(ctx context.Context, videoURL, format string) (Result, error) {
	if s.cfg == nil || s.engine == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "audio", "extract", "service not configured", nil)
	}
	logger := logging.WithContext(ctx, s.logger)

	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return Result{}, services.Tag(services.ErrInvalidInput, errors.New("video url required"))
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = s.cfg.Audio.DefaultFormat
	}
	if !s.cfg.IsFormatAllowed(format) {
		return Result{}, fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFormat, format, strings.Join(s.cfg.Audio.AllowedFormats, ", "))
	}

	if err := s.checkTranscoder(); err != nil {
		logging.ErrorWithContext(logger, "transcoder unavailable", "transcoder_missing",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set engine.ffmpeg_binary"),
		)
		return Result{}, ErrTranscoderUnavailable
	}

	started := s.now()
	meta, err := s.engine.ProbeMetadata(ctx, videoURL)
	if err != nil {
		logger.Error("metadata probe failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "metadata_probe_failed"),
			logging.String(logging.FieldErrorHint, "check the video url and the media engine output"),
		)
		return Result{}, err
	}
	title := strings.TrimSpace(meta.Title)
	sanitized := textutil.FallbackName()
	if title != "" {
		sanitized = textutil.SanitizeFileName(title, s.cfg.Audio.TitleMaxLength)
	}

	root := s.cfg.Paths.DownloadsDir
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "audio", "prepare downloads dir", root, err)
	}
	base, dir, err := s.createOutputDir(root, started.Format(timestampLayout)+"_"+sanitized)
	if err != nil {
		return Result{}, err
	}
	logger.Info("audio extraction started",
		logging.String("title", title),
		logging.String("format", format),
		logging.String("dir", dir),
	)

	download, err := s.engine.DownloadAudio(ctx, videoURL, media.AudioRequest{Dir: dir, Stem: base, Format: format})
	if err != nil {
		s.removeIfEmpty(logger, dir)
		logger.Error("audio download failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "audio_download_failed"),
			logging.String(logging.FieldErrorHint, "see yt-dlp output in debug logs"),
		)
		return Result{}, err
	}

	fileName := base + "." + fileExtension(format)
	final := filepath.Join(dir, fileName)
	info, statErr := os.Stat(final)
	if statErr != nil || !info.Mode().IsRegular() {
		logging.ErrorWithContext(logger, "audio artifact missing", "audio_artifact_missing",
			logging.String("expected", final),
			logging.String("reported", download.Path),
			logging.String(logging.FieldErrorHint, "the transcoder may have produced a different extension"),
		)
		s.removeIfEmpty(logger, dir)
		return Result{}, ErrArtifactMissing
	}

	result := Result{
		ServerPath:   final,
		RelativePath: filepath.Base(dir) + "/" + fileName,
		Title:        title,
		Format:       format,
	}
	if abs, err := filepath.Abs(final); err == nil {
		result.ServerPath = abs
	}
	s.inspect(ctx, logger, &result)

	logger.Info("audio extraction completed",
		logging.String("path", result.ServerPath),
		logging.Int64("size_bytes", info.Size()),
		logging.Duration("elapsed", s.now().Sub(started)),
	)
	return result, nil
}

func (s *Service) checkTranscoder() error {
	if s.transcoder == nil {
		return errors.New("no transcoder check configured")
	}
	return s.transcoder.TranscoderAvailable()
}

// createOutputDir makes a fresh directory for name, appending "_<6 hex>" when a
// directory with the same name already exists.
func (s *Service) createOutputDir(root, name string) (string, string, error) {
	candidate := name
	for attempt := 0; attempt < maxDirAttempts; attempt++ {
		dir := filepath.Join(root, candidate)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return candidate, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", services.Wrap(services.ErrConfiguration, "audio", "create output dir", dir, err)
		}
		candidate = name + "_" + s.suffix()
	}
	return "", "", services.Wrap(services.ErrPostcondition, "audio", "create output dir", "could not find a free directory name for "+name, nil)
}

func (s *Service) inspect(ctx context.Context, logger *slog.Logger, result *Result) {
	if s.inspector == nil {
		return
	}
	probe, err := s.inspector.Inspect(ctx, result.ServerPath)
	if err != nil {
		logging.WarnWithContext(logger, "audio artifact inspection failed", "audio_inspect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffprobe installation"),
			logging.String(logging.FieldImpact, "duration not reported"),
		)
		return
	}
	if probe.AudioStreamCount() == 0 {
		logging.WarnWithContext(logger, "audio artifact has no audio stream", "audio_inspect_empty",
			logging.String("path", result.ServerPath),
			logging.String(logging.FieldImpact, "file may not play"),
		)
	}
	result.DurationSeconds = probe.DurationSeconds()
}

func (s *Service) removeIfEmpty(logger *slog.Logger, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		logger.Debug("failed to remove empty output dir", logging.String("dir", dir), logging.Error(err))
	}
}

func fileExtension(format string) string {
	if ext, ok := fileExtensions[format]; ok {
		return ext
	}
	return format
}

func randomSuffix() string {
	return strings.TrimPrefix(textutil.FallbackName(), textutil.FallbackPrefix)
}
