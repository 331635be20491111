package api

import (
	"context"

	"vidscribe/internal/history"
)

// HistoryReader abstracts history persistence interactions needed for API queries.
type HistoryReader interface {
	List(ctx context.Context, filter history.Filter) ([]history.Entry, error)
	Stats(ctx context.Context) (history.Stats, error)
}

// HistoryService exposes read-only history operations returning API DTOs.
type HistoryService struct {
	store HistoryReader
}

// NewHistoryService constructs a HistoryService around the provided reader.
func NewHistoryService(store HistoryReader) *HistoryService {
	if store == nil {
		return nil
	}
	return &HistoryService{store: store}
}

// List returns recent operations, newest first.
func (s *HistoryService) List(ctx context.Context, filter history.Filter) ([]HistoryEntry, error) {
	if s == nil || s.store == nil {
		return []HistoryEntry{}, nil
	}
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FromHistoryEntries(entries), nil
}

// Stats returns aggregate counts, or nil when history is disabled.
func (s *HistoryService) Stats(ctx context.Context) (*HistoryStats, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	dto := FromHistoryStats(stats)
	return &dto, nil
}
