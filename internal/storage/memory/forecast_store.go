// Package memory provides in-memory storage implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/storage"
)

// ForecastStore is an in-memory implementation of storage.ForecastStore.
type ForecastStore struct {
	mu     sync.RWMutex
	nextID int64
	byMint map[string][]*domain.ForecastRecord
}

// NewForecastStore creates a new in-memory forecast store.
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		nextID: 1,
		byMint: make(map[string][]*domain.ForecastRecord),
	}
}

// Insert persists one forecast summary.
func (s *ForecastStore) Insert(_ context.Context, r *domain.ForecastRecord) error {
	if r == nil || r.TokenMint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *r
	recCopy.ID = s.nextID
	recCopy.CreatedAt = time.Now().UnixMilli()
	s.nextID++

	s.byMint[r.TokenMint] = append(s.byMint[r.TokenMint], &recCopy)
	return nil
}

// GetByMint retrieves up to limit forecasts for a mint, newest first.
func (s *ForecastStore) GetByMint(_ context.Context, mint string, limit int) ([]*domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byMint[mint]
	out := make([]*domain.ForecastRecord, 0, len(records))
	for _, r := range records {
		recCopy := *r
		out = append(out, &recCopy)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CapturedAt > out[j].CapturedAt
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetLatestByMint retrieves the most recent forecast for a mint.
func (s *ForecastStore) GetLatestByMint(_ context.Context, mint string) (*domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byMint[mint]
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := records[0]
	for _, r := range records[1:] {
		if r.CapturedAt > latest.CapturedAt {
			latest = r
		}
	}

	recCopy := *latest
	return &recCopy, nil
}

var _ storage.ForecastStore = (*ForecastStore)(nil)
