package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/config"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/services"
	"vidscribe/internal/subtitles"
)

// ErrNoTranscript reports that no caption file could be located after download.
var ErrNoTranscript = services.Tag(services.ErrPostcondition, errors.New("no transcript available in supported languages"))

const tempPrefix = "transcript_"

// Result is a fetched transcript.
type Result struct {
	Text     string
	Language string
	// TempPath is the scratch caption file the text came from. It no longer exists
	// once Fetch returns.
	TempPath string
}

// Service orchestrates transcript acquisition.
type Service struct {
	engine  media.Engine
	tempDir string
	logger  *slog.Logger
}

// NewService constructs a transcript service writing scratch files under cfg's
// transcripts_temp_dir.
func NewService(cfg *config.Config, engine media.Engine, logger *slog.Logger) *Service {
	tempDir := os.TempDir()
	if cfg != nil && strings.TrimSpace(cfg.Paths.TranscriptsTempDir) != "" {
		tempDir = cfg.Paths.TranscriptsTempDir
	}
	return NewServiceWithTempDir(tempDir, engine, logger)
}

// NewServiceWithTempDir allows pointing scratch files at an explicit directory (used in tests).
func NewServiceWithTempDir(tempDir string, engine media.Engine, logger *slog.Logger) *Service {
	return &Service{
		engine:  engine,
		tempDir: tempDir,
		logger:  logging.NewComponentLogger(logger, "transcript"),
	}
}

// Fetch downloads and normalizes the transcript of videoURL.
func (s *Service) Fetch(ctx context.Context, videoURL string) (Result, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return Result{}, services.Tag(services.ErrInvalidInput, errors.New("video url required"))
	}
	if s.engine == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "transcript", "fetch", "media engine not configured", nil)
	}
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	selected := s.selectLanguage(ctx, logger, videoURL)

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "transcript", "prepare temp dir", s.tempDir, err)
	}
	stem := filepath.Join(s.tempDir, tempPrefix+strings.ReplaceAll(uuid.NewString(), "-", ""))
	var located string
	defer func() { s.cleanup(logger, stem, located) }()

	download, err := s.engine.DownloadCaptions(ctx, videoURL, media.CaptionRequest{
		Language:   selected,
		OutputStem: stem,
	})
	if err != nil {
		logger.Error("caption download failed",
			logging.String("language", selected),
			logging.Error(err),
			logging.String(logging.FieldEventType, "caption_download_failed"),
			logging.String(logging.FieldErrorHint, "check the video url and the media engine output"),
		)
		return Result{}, err
	}

	path, lang := locate(stem, selected, download.Path)
	located = path
	if path == "" {
		logging.WarnWithContext(logger, "no caption file after download", "transcript_missing",
			logging.String("language", selected),
			logging.String(logging.FieldErrorHint, "the video may not expose captions in a supported language"),
			logging.String(logging.FieldImpact, "request fails"),
		)
		return Result{}, ErrNoTranscript
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPostcondition, "transcript", "read captions", filepath.Base(path), err)
	}
	text := subtitles.NormalizeVTTText(string(raw))

	logger.Info("transcript ready",
		logging.String("language", language.Label(lang)),
		logging.Int("chars", len(text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Text: text, Language: lang, TempPath: path}, nil
}

func (s *Service) selectLanguage(ctx context.Context, logger *slog.Logger, videoURL string) string {
	set, err := s.engine.ProbeCaptions(ctx, videoURL)
	if err != nil {
		logging.WarnWithContext(logger, "caption probe failed; using default language", "caption_probe_failed",
			logging.Error(err),
			logging.String("language", subtitles.DefaultLanguage),
			logging.String(logging.FieldErrorHint, "the download may still succeed with the default language"),
			logging.String(logging.FieldImpact, "language preference not applied"),
		)
		return subtitles.DefaultLanguage
	}
	selected := subtitles.SelectLanguage(set.Languages())
	attrs := append([]logging.Attr{
		logging.String("available", strings.Join(set.SortedLanguages(), ",")),
	}, logging.DecisionAttrs("caption_language", selected, "first preferred language available")...)
	logger.Info("caption language selected", logging.Args(attrs...)...)
	return selected
}

// locate finds the caption file the engine wrote. The engine-reported path wins
// when it exists; otherwise "<stem>.<lang>.vtt" is tried for every candidate
// language, the selected one first.
func locate(stem, selected, reported string) (string, string) {
	if reported = strings.TrimSpace(reported); reported != "" && isFile(reported) {
		return reported, languageFromPath(stem, reported, selected)
	}
	for _, lang := range subtitles.CandidateLanguages(selected) {
		candidate := fmt.Sprintf("%s.%s.vtt", stem, lang)
		if isFile(candidate) {
			return candidate, lang
		}
	}
	return "", ""
}

// languageFromPath extracts <lang> from "<stem>.<lang>.vtt", falling back when
// the name has another shape.
func languageFromPath(stem, path, fallback string) string {
	name := filepath.Base(path)
	prefix := filepath.Base(stem) + "."
	if !strings.HasPrefix(name, prefix) {
		return fallback
	}
	middle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), filepath.Ext(name))
	if middle == "" || strings.Contains(middle, ".") {
		return fallback
	}
	return middle
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// cleanup removes the located caption file, which the engine may have written
// outside the temp dir, and every scratch file sharing the request stem.
func (s *Service) cleanup(logger *slog.Logger, stem, located string) {
	if located != "" {
		s.removeScratch(logger, located)
	}
	dir := filepath.Dir(stem)
	prefix := filepath.Base(stem)
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.WarnWithContext(logger, "transcript cleanup skipped", "transcript_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove stale transcript_* files manually"),
		)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		s.removeScratch(logger, filepath.Join(dir, entry.Name()))
	}
}

func (s *Service) removeScratch(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to remove transcript scratch file", "transcript_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
			)
		}
		return
	}
	logger.Debug("removed transcript scratch file", logging.String("path", path))
}
