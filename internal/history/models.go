package history

import "time"

// Kind identifies the operation type.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindAudio      Kind = "audio"
)

// Status is the outcome of an operation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one recorded operation.
type Entry struct {
	ID           int64
	RequestID    string
	Kind         Kind
	URL          string
	Status       Status
	Language     string
	Format       string
	Title        string
	ServerPath   string
	RelativePath string
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the operation ran.
func (e Entry) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind   Kind
	Status Status
	Limit  int
}

// Stats summarizes the recorded operations.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[Kind]int
	LastAt    time.Time
}
