package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidscribe/internal/audio"
	"vidscribe/internal/config"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

type audioOutput struct {
	ServerPath      string  `json:"server_path"`
	RelativePath    string  `json:"relative_path"`
	Title           string  `json:"title"`
	Format          string  `json:"format"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "transcript <url>",
		Short: "Fetch a plain-text transcript from video captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, logger, err := ctx.prepareFetch()
			if err != nil {
				return err
			}
			runCtx := commandRequestContext(cmd.Context(), history.KindTranscript)
			service := transcript.NewService(cfg, engine, logger)

			started := time.Now()
			result, err := service.Fetch(runCtx, args[0])
			entry := history.Entry{Kind: history.KindTranscript, URL: args[0], StartedAt: started, Language: result.Language}
			recordLocal(runCtx, cfg, logger, entry, err)
			if err != nil {
				return err
			}

			if path := strings.TrimSpace(outputPath); path != "" {
				if err := os.WriteFile(path, []byte(result.Text+"\n"), 0o644); err != nil {
					return fmt.Errorf("write transcript: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s transcript to %s\n", result.Language, path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to a file instead of stdout")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var format string
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "audio <url>",
		Short: "Extract the audio track of a video into the downloads directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, logger, err := ctx.prepareFetch()
			if err != nil {
				return err
			}
			runCtx := commandRequestContext(cmd.Context(), history.KindAudio)
			service := audio.NewService(cfg, engine, ctx.newTranscoder(cfg), logger,
				audio.WithInspector(ffprobe.Prober{Binary: cfg.Engine.FFprobeBinary}),
			)

			started := time.Now()
			result, err := service.Extract(runCtx, args[0], format)
			entry := history.Entry{
				Kind:         history.KindAudio,
				URL:          args[0],
				Format:       result.Format,
				Title:        result.Title,
				ServerPath:   result.ServerPath,
				RelativePath: result.RelativePath,
				StartedAt:    started,
			}
			if entry.Format == "" {
				entry.Format = format
			}
			recordLocal(runCtx, cfg, logger, entry, err)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, audioOutput{
					ServerPath:      result.ServerPath,
					RelativePath:    result.RelativePath,
					Title:           result.Title,
					Format:          result.Format,
					DurationSeconds: result.DurationSeconds,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.ServerPath)
			if result.DurationSeconds > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s, %.0fs)\n", result.Title, result.Format, result.DurationSeconds)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Audio format (defaults to audio.default_format)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func (c *commandContext) prepareFetch() (*config.Config, media.Engine, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.cliLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	engine, err := c.newEngine(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, engine, logger, nil
}

func commandRequestContext(parent context.Context, kind history.Kind) context.Context {
	ctx := services.WithRequestID(parent, uuid.NewString())
	return services.WithOperation(ctx, string(kind))
}

// recordLocal appends a CLI operation to the shared history store. Failures only
// log: the command result matters more than its bookkeeping.
func recordLocal(ctx context.Context, cfg *config.Config, logger *slog.Logger, entry history.Entry, opErr error) {
	if !cfg.History.Enabled {
		return
	}
	entry.Status = history.StatusSucceeded
	if opErr != nil {
		entry.Status = history.StatusFailed
		entry.ErrorKind = services.Kind(opErr)
		entry.ErrorMessage = opErr.Error()
		entry.Language = ""
	}
	entry.FinishedAt = time.Now()
	if id, ok := services.RequestIDFromContext(ctx); ok {
		entry.RequestID = id
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	if _, err := store.Record(ctx, entry); err != nil {
		logger.Warn("failed to record history", logging.Error(err))
	}
}
