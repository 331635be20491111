package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/api"
	"vidscribe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var kind string
	var status string
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transcript and audio operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseHistoryFilter(kind, status, limit)
			if err != nil {
				return err
			}
			var entries []history.Entry
			err = ctx.withHistory(func(store *history.Store) error {
				var listErr error
				entries, listErr = store.List(cmd.Context(), filter)
				return listErr
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, api.HistoryListResponse{Items: api.FromHistoryEntries(entries)})
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No operations recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "When", "Kind", "Status", "Detail", "URL"},
				historyRows(entries),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	historyCmd.Flags().StringVar(&kind, "kind", "", "Only show transcript or audio operations")
	historyCmd.Flags().StringVar(&status, "status", "", "Only show succeeded or failed operations")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed int64
			err := ctx.withHistory(func(store *history.Store) error {
				var clearErr error
				removed, clearErr = store.Clear(cmd.Context())
				return clearErr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}
	historyCmd.AddCommand(clearCmd)
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func parseHistoryFilter(kind, status string, limit int) (history.Filter, error) {
	filter := history.Filter{Limit: limit}
	switch k := history.Kind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "", history.KindTranscript, history.KindAudio:
		filter.Kind = k
	default:
		return history.Filter{}, fmt.Errorf("unknown kind %q (use transcript or audio)", kind)
	}
	switch s := history.Status(strings.ToLower(strings.TrimSpace(status))); s {
	case "", history.StatusSucceeded, history.StatusFailed:
		filter.Status = s
	default:
		return history.Filter{}, fmt.Errorf("unknown status %q (use succeeded or failed)", status)
	}
	if limit < 0 {
		return history.Filter{}, fmt.Errorf("limit must be non-negative")
	}
	return filter, nil
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			fmt.Sprint(entry.ID),
			entry.StartedAt.Local().Format(time.DateTime),
			string(entry.Kind),
			string(entry.Status),
			historyDetail(entry),
			truncate(entry.URL, 48),
		})
	}
	return rows
}

func historyDetail(entry history.Entry) string {
	if entry.Status == history.StatusFailed {
		return truncate(entry.ErrorMessage, 48)
	}
	switch entry.Kind {
	case history.KindTranscript:
		return entry.Language
	case history.KindAudio:
		return truncate(entry.RelativePath, 48)
	}
	return ""
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
