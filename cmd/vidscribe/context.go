package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/ytdlp"
)

type commandContext struct {
	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// Overridable so commands can run without external binaries.
	newEngine     func(*config.Config, *slog.Logger) (media.Engine, error)
	newTranscoder func(*config.Config) media.TranscoderCheck
}

func newCommandContext() *commandContext {
	return &commandContext{
		newEngine: func(cfg *config.Config, logger *slog.Logger) (media.Engine, error) {
			return ytdlp.NewFromConfig(cfg, logger)
		},
		newTranscoder: func(cfg *config.Config) media.TranscoderCheck {
			return media.TranscoderCheckFunc(deps.FFmpegChecker(cfg.Engine.FFmpegBinary, cfg.Engine.YtdlpBinary))
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) resolvedLogLevel(cfg *config.Config) string {
	if level := strings.TrimSpace(c.logLevelFlag); level != "" {
		return level
	}
	if cfg != nil {
		return cfg.Logging.Level
	}
	return "info"
}

// cliLogger writes to stderr so command output on stdout stays clean. Unless a
// level is forced, only warnings surface.
func (c *commandContext) cliLogger(cfg *config.Config) (*slog.Logger, error) {
	level := strings.TrimSpace(c.logLevelFlag)
	if level == "" {
		level = "warn"
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
