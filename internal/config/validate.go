package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		return errors.New("paths.downloads_dir must be set")
	}
	if strings.TrimSpace(c.Paths.TranscriptsTempDir) == "" {
		return errors.New("paths.transcripts_temp_dir must be set")
	}
	if c.Paths.PublicBaseURL != "" {
		parsed, err := url.Parse(c.Paths.PublicBaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("paths.public_base_url must be an absolute URL, got %q", c.Paths.PublicBaseURL)
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	if err := ensurePositiveMap(map[string]int{
		"engine.socket_timeout": c.Engine.SocketTimeout,
	}); err != nil {
		return err
	}
	if c.Engine.CommandTimeout < 0 {
		return errors.New("engine.command_timeout must be >= 0")
	}
	if c.Engine.ProxyURL != "" {
		if _, err := url.Parse(c.Engine.ProxyURL); err != nil {
			return fmt.Errorf("engine.proxy_url is not a valid URL: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAudio() error {
	if len(c.Audio.AllowedFormats) == 0 {
		return errors.New("audio.allowed_formats must include at least one format")
	}
	if !c.IsFormatAllowed(c.Audio.DefaultFormat) {
		return fmt.Errorf("audio.default_format %q must be listed in audio.allowed_formats", c.Audio.DefaultFormat)
	}
	if c.Audio.TitleMaxLength <= 0 {
		return errors.New("audio.title_max_length must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
