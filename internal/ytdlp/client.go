package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

const toolName = "yt-dlp"

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithProxy routes all engine traffic through proxyURL.
func WithProxy(proxyURL string) Option {
	return func(c *Client) { c.proxy = strings.TrimSpace(proxyURL) }
}

// WithSocketTimeout sets yt-dlp's --socket-timeout in seconds.
func WithSocketTimeout(seconds int) Option {
	return func(c *Client) {
		if seconds > 0 {
			c.socketTimeout = seconds
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = strings.TrimSpace(ua) }
}

// WithFFmpegLocation points yt-dlp at a specific ffmpeg binary.
func WithFFmpegLocation(path string) Option {
	return func(c *Client) { c.ffmpeg = strings.TrimSpace(path) }
}

// WithCommandTimeout bounds each invocation. Zero disables the limit.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.commandTimeout = timeout }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client wraps yt-dlp CLI interactions and implements media.Engine.
type Client struct {
	binary         string
	ffmpeg         string
	proxy          string
	userAgent      string
	socketTimeout  int
	commandTimeout time.Duration
	exec           Executor
	logger         *slog.Logger
}

var _ media.Engine = (*Client)(nil)

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:        binary,
		socketTimeout: 180,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "yt-dlp")
	return client, nil
}

// NewFromConfig builds a client from the engine section of cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	base := []Option{
		WithProxy(cfg.Engine.ProxyURL),
		WithSocketTimeout(cfg.Engine.SocketTimeout),
		WithUserAgent(cfg.Engine.UserAgent),
		WithCommandTimeout(time.Duration(cfg.Engine.CommandTimeout) * time.Second),
		WithLogger(logger),
	}
	if ffmpeg := strings.TrimSpace(cfg.Engine.FFmpegBinary); ffmpeg != "" && ffmpeg != "ffmpeg" {
		base = append(base, WithFFmpegLocation(ffmpeg))
	}
	return New(cfg.Engine.YtdlpBinary, append(base, opts...)...)
}

// ProbeCaptions lists manual and automatic caption languages without downloading anything.
func (c *Client) ProbeCaptions(ctx context.Context, videoURL string) (media.CaptionSet, error) {
	info, err := c.dumpInfo(ctx, videoURL, "--skip-download")
	if err != nil {
		return media.CaptionSet{}, err
	}
	return info.captionSet(), nil
}

// ProbeMetadata returns the title and basic attributes of a video.
func (c *Client) ProbeMetadata(ctx context.Context, videoURL string) (media.Metadata, error) {
	info, err := c.dumpInfo(ctx, videoURL, "--skip-download")
	if err != nil {
		return media.Metadata{}, err
	}
	return info.metadata(), nil
}

// DownloadCaptions writes one caption track in WebVTT form next to req.OutputStem.
func (c *Client) DownloadCaptions(ctx context.Context, videoURL string, req media.CaptionRequest) (media.CaptionDownload, error) {
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		return media.CaptionDownload{}, errors.New("caption language required")
	}
	if strings.TrimSpace(req.OutputStem) == "" {
		return media.CaptionDownload{}, errors.New("caption output path required")
	}
	info, err := c.dumpInfo(ctx, videoURL,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", lang,
		"--sub-format", "vtt",
		"-o", escapeTemplate(req.OutputStem),
		"--no-simulate",
	)
	if err != nil {
		return media.CaptionDownload{}, err
	}
	return media.CaptionDownload{Language: lang, Path: info.subtitlePath(lang)}, nil
}

// DownloadAudio downloads the best audio stream and converts it to req.Format.
// The returned path is the one yt-dlp reports after post-processing.
func (c *Client) DownloadAudio(ctx context.Context, videoURL string, req media.AudioRequest) (media.AudioDownload, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		return media.AudioDownload{}, errors.New("audio format required")
	}
	if req.Dir == "" || req.Stem == "" {
		return media.AudioDownload{}, errors.New("audio output location required")
	}
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", format,
	}
	if c.ffmpeg != "" {
		args = append(args, "--ffmpeg-location", c.ffmpeg)
	}
	args = append(args,
		"-o", escapeTemplate(filepath.Join(req.Dir, req.Stem))+".%(ext)s",
		"--no-simulate",
		"--print", "after_move:filepath",
	)

	var lastLine string
	err := c.run(ctx, videoURL, args, func(line string) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lastLine = trimmed
		}
	})
	if err != nil {
		return media.AudioDownload{}, err
	}
	return media.AudioDownload{Path: lastLine}, nil
}

// Version returns the installed yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	err := c.invoke(ctx, []string{"--version"}, func(line string) {
		if trimmed := strings.TrimSpace(line); trimmed != "" && version == "" {
			version = trimmed
		}
	})
	if err != nil {
		return "", err
	}
	return version, nil
}

func (c *Client) dumpInfo(ctx context.Context, videoURL string, extra ...string) (videoInfo, error) {
	args := append(append([]string(nil), extra...), "--dump-single-json")
	var payload []byte
	err := c.run(ctx, videoURL, args, func(line string) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			payload = []byte(trimmed)
		}
	})
	if err != nil {
		return videoInfo{}, err
	}
	if len(payload) == 0 {
		return videoInfo{}, &media.ToolError{Tool: toolName, Detail: "yt-dlp returned no video information"}
	}
	return parseInfo(payload)
}

func (c *Client) run(ctx context.Context, videoURL string, args []string, onStdout func(string)) error {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return errors.New("video url required")
	}
	full := append(c.commonArgs(), args...)
	full = append(full, "--", videoURL)
	return c.invoke(ctx, full, onStdout)
}

func (c *Client) invoke(ctx context.Context, args []string, onStdout func(string)) error {
	runCtx := ctx
	if c.commandTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.commandTimeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("running yt-dlp", logging.String("args", strings.Join(redactArgs(args), " ")))

	var lastError string
	started := time.Now()
	err := c.exec.Run(runCtx, c.binary, args, onStdout, func(line string) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return
		}
		if strings.HasPrefix(trimmed, "ERROR:") {
			lastError = trimmed
		}
		logger.Debug("yt-dlp output", logging.String("line", trimmed))
	})
	if err == nil {
		logger.Debug("yt-dlp finished", logging.Duration("elapsed", time.Since(started)))
		return nil
	}

	toolErr := &media.ToolError{Tool: toolName, Detail: lastError, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		toolErr.TimedOut = true
		if toolErr.Detail == "" {
			toolErr.Detail = fmt.Sprintf("yt-dlp timed out after %s", c.commandTimeout)
		}
	case errors.Is(ctx.Err(), context.Canceled):
		if toolErr.Detail == "" {
			toolErr.Detail = "yt-dlp was cancelled"
		}
	}
	return toolErr
}

func (c *Client) commonArgs() []string {
	args := []string{
		"--ignore-config",
		"--no-playlist",
		"--no-progress",
		"--socket-timeout", strconv.Itoa(c.socketTimeout),
	}
	if c.userAgent != "" {
		args = append(args, "--add-headers", "User-Agent:"+c.userAgent)
	}
	if c.proxy != "" {
		args = append(args, "--proxy", c.proxy)
	}
	return args
}

// escapeTemplate protects literal '%' in paths from yt-dlp's output template expansion.
func escapeTemplate(path string) string {
	return strings.ReplaceAll(path, "%", "%%")
}

func redactArgs(args []string) []string {
	out := append([]string(nil), args...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--proxy" {
			out[i+1] = config.RedactProxy(out[i+1])
		}
	}
	return out
}
