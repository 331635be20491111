package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the minimal error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// AudioResponse is returned by /api/extract_audio. On success Error is null; on
// failure both paths are null.
type AudioResponse struct {
	AudioDownloadURL *string `json:"audio_download_url"`
	AudioServerPath  *string `json:"audio_server_path"`
	Error            *string `json:"error"`
}

// TranscriptError is returned by /api/get_youtube_transcript when no transcript
// could be produced. Successful responses are plain text.
type TranscriptError struct {
	Error            string  `json:"error"`
	LanguageDetected *string `json:"language_detected"`
	TranscriptText   *string `json:"transcript_text"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// HistoryStats summarizes recorded operations.
type HistoryStats struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ByKind    map[string]int `json:"by_kind"`
	LastAt    string         `json:"last_at,omitempty"`
}

// DaemonStatus aggregates server runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	StartedAt     string             `json:"started_at,omitempty"`
	Bind          string             `json:"bind"`
	DownloadsDir  string             `json:"downloads_dir"`
	HistoryDBPath string             `json:"history_db_path,omitempty"`
	LockFilePath  string             `json:"lock_file_path"`
	Proxy         string             `json:"proxy,omitempty"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Checks        []CheckResult      `json:"checks"`
	History       *HistoryStats      `json:"history,omitempty"`
}

// HistoryEntry is a recorded operation.
type HistoryEntry struct {
	ID           int64   `json:"id"`
	RequestID    string  `json:"request_id,omitempty"`
	Kind         string  `json:"kind"`
	URL          string  `json:"url"`
	Status       string  `json:"status"`
	Language     string  `json:"language,omitempty"`
	Format       string  `json:"format,omitempty"`
	Title        string  `json:"title,omitempty"`
	ServerPath   string  `json:"server_path,omitempty"`
	RelativePath string  `json:"relative_path,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	StartedAt    string  `json:"started_at,omitempty"`
	FinishedAt   string  `json:"finished_at,omitempty"`
	DurationSecs float64 `json:"duration_seconds"`
}

// HistoryListResponse wraps a collection of history entries.
type HistoryListResponse struct {
	Items []HistoryEntry `json:"items"`
}
