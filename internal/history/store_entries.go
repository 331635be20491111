package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultListLimit = 50

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `id, request_id, kind, url, status, language, format, title,
	server_path, relative_path, error_kind, error_message, started_at, finished_at`

// Record stores an operation and returns its id.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history store not open")
	}
	if entry.Kind == "" {
		return 0, errors.New("history entry kind required")
	}
	if entry.Status == "" {
		entry.Status = StatusSucceeded
	}
	now := time.Now().UTC()
	if entry.StartedAt.IsZero() {
		entry.StartedAt = now
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = now
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO operations (request_id, kind, url, status, language, format, title,
			server_path, relative_path, error_kind, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		string(entry.Kind),
		entry.URL,
		string(entry.Status),
		entry.Language,
		entry.Format,
		entry.Title,
		entry.ServerPath,
		entry.RelativePath,
		entry.ErrorKind,
		entry.ErrorMessage,
		formatTime(entry.StartedAt),
		formatTime(entry.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("record operation: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent operations first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	ctx = ensureContext(ctx)
	var (
		clauses []string
		args    []any
	)
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	query := "SELECT " + selectColumns + " FROM operations"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get returns a single operation or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+selectColumns+" FROM operations WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Stats returns aggregate counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT kind, status, COUNT(1) FROM operations GROUP BY kind, status`)
	if err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByKind: make(map[Kind]int)}
	for rows.Next() {
		var (
			kind   Kind
			status Status
			count  int
		)
		if err := rows.Scan(&kind, &status, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		stats.ByKind[kind] += count
		switch status {
		case StatusSucceeded:
			stats.Succeeded += count
		case StatusFailed:
			stats.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	var last sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(finished_at) FROM operations`).Scan(&last); err != nil {
		return Stats{}, fmt.Errorf("history last operation: %w", err)
	}
	if last.Valid {
		stats.LastAt = parseTime(last.String)
	}
	return stats, nil
}

// Clear removes every recorded operation and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM operations`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry      Entry
		kind       string
		status     string
		startedAt  string
		finishedAt string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.RequestID,
		&kind,
		&entry.URL,
		&status,
		&entry.Language,
		&entry.Format,
		&entry.Title,
		&entry.ServerPath,
		&entry.RelativePath,
		&entry.ErrorKind,
		&entry.ErrorMessage,
		&startedAt,
		&finishedAt,
	); err != nil {
		return Entry{}, err
	}
	entry.Kind = Kind(kind)
	entry.Status = Status(status)
	entry.StartedAt = parseTime(startedAt)
	entry.FinishedAt = parseTime(finishedAt)
	return entry, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
