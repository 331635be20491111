package api

import (
	"time"

	"vidscribe/internal/deps"
	"vidscribe/internal/history"
	"vidscribe/internal/preflight"
)

// StringPtr returns a pointer to value, for nullable DTO fields.
func StringPtr(value string) *string {
	return &value
}

// FromHistoryEntry converts a stored operation to its API representation.
func FromHistoryEntry(entry history.Entry) HistoryEntry {
	return HistoryEntry{
		ID:           entry.ID,
		RequestID:    entry.RequestID,
		Kind:         string(entry.Kind),
		URL:          entry.URL,
		Status:       string(entry.Status),
		Language:     entry.Language,
		Format:       entry.Format,
		Title:        entry.Title,
		ServerPath:   entry.ServerPath,
		RelativePath: entry.RelativePath,
		ErrorKind:    entry.ErrorKind,
		ErrorMessage: entry.ErrorMessage,
		StartedAt:    formatTime(entry.StartedAt),
		FinishedAt:   formatTime(entry.FinishedAt),
		DurationSecs: entry.Duration().Seconds(),
	}
}

// FromHistoryEntries converts a slice of stored operations.
func FromHistoryEntries(entries []history.Entry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out
}

// FromHistoryStats converts aggregate history counts.
func FromHistoryStats(stats history.Stats) HistoryStats {
	byKind := make(map[string]int, len(stats.ByKind))
	for kind, count := range stats.ByKind {
		byKind[string(kind)] = count
	}
	return HistoryStats{
		Total:     stats.Total,
		Succeeded: stats.Succeeded,
		Failed:    stats.Failed,
		ByKind:    byKind,
		LastAt:    formatTime(stats.LastAt),
	}
}

// FromDependencyStatuses converts dependency resolution results.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return out
}

// FromCheckResults converts preflight results.
func FromCheckResults(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

// ParseTime parses a timestamp produced by this package. Invalid values yield
// the zero time.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
