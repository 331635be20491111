package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeAudio()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		c.Paths.DownloadsDir = defaultDownloadsDir
	}
	if c.Paths.DownloadsDir, err = expandPath(c.Paths.DownloadsDir); err != nil {
		return fmt.Errorf("paths.downloads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptsTempDir) == "" {
		c.Paths.TranscriptsTempDir = defaultTranscriptsTempDir()
	}
	if c.Paths.TranscriptsTempDir, err = expandPath(c.Paths.TranscriptsTempDir); err != nil {
		return fmt.Errorf("paths.transcripts_temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Paths.PublicBaseURL), "/")
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.YtdlpBinary = strings.TrimSpace(c.Engine.YtdlpBinary)
	if c.Engine.YtdlpBinary == "" {
		c.Engine.YtdlpBinary = defaultYtdlpBinary
	}
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = defaultFFprobeBinary
	}
	c.Engine.ProxyURL = strings.TrimSpace(c.Engine.ProxyURL)
	if c.Engine.ProxyURL == "" {
		if value, ok := os.LookupEnv(proxyEnvVar); ok {
			c.Engine.ProxyURL = strings.TrimSpace(value)
		}
	}
	if c.Engine.SocketTimeout == 0 {
		c.Engine.SocketTimeout = defaultSocketTimeout
	}
	c.Engine.UserAgent = strings.TrimSpace(c.Engine.UserAgent)
	if c.Engine.UserAgent == "" {
		c.Engine.UserAgent = defaultUserAgent
	}
	if c.Engine.CommandTimeout < 0 {
		c.Engine.CommandTimeout = 0
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Audio.DefaultFormat))
	if c.Audio.DefaultFormat == "" {
		c.Audio.DefaultFormat = defaultAudioFormat
	}
	if len(c.Audio.AllowedFormats) == 0 {
		c.Audio.AllowedFormats = append([]string(nil), defaultAllowedFormats...)
	} else {
		formats := make([]string, 0, len(c.Audio.AllowedFormats))
		seen := make(map[string]struct{}, len(c.Audio.AllowedFormats))
		for _, format := range c.Audio.AllowedFormats {
			normalized := strings.ToLower(strings.TrimSpace(format))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			formats = append(formats, normalized)
		}
		c.Audio.AllowedFormats = formats
	}
	if c.Audio.TitleMaxLength == 0 {
		c.Audio.TitleMaxLength = defaultTitleMaxLength
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
