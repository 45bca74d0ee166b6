package storage

import (
	"context"

	"solana-fee-forecast/internal/domain"
)

// ForecastStore provides access to forecast history storage.
type ForecastStore interface {
	// Insert persists one computed forecast summary.
	Insert(ctx context.Context, r *domain.ForecastRecord) error

	// GetByMint retrieves up to limit forecasts for a mint, newest first.
	GetByMint(ctx context.Context, mint string, limit int) ([]*domain.ForecastRecord, error)

	// GetLatestByMint retrieves the most recent forecast for a mint.
	// Returns ErrNotFound when no forecast has been recorded.
	GetLatestByMint(ctx context.Context, mint string) (*domain.ForecastRecord, error)
}
