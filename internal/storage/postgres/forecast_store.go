package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/storage"
)

// ForecastStore implements storage.ForecastStore using PostgreSQL.
type ForecastStore struct {
	pool *Pool
}

// NewForecastStore creates a new ForecastStore.
func NewForecastStore(pool *Pool) *ForecastStore {
	return &ForecastStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ForecastStore = (*ForecastStore)(nil)

// Insert persists one forecast summary.
func (s *ForecastStore) Insert(ctx context.Context, r *domain.ForecastRecord) error {
	if r == nil || r.TokenMint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO forecasts (
			token_mint, price_usd, order_count, sell_fees_usd, buy_fees_usd, captured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.TokenMint,
		r.PriceUSD,
		r.OrderCount,
		r.SellFeesUSD,
		r.BuyFeesUSD,
		r.CapturedAt,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

// GetByMint retrieves up to limit forecasts for a mint, newest first.
func (s *ForecastStore) GetByMint(ctx context.Context, mint string, limit int) ([]*domain.ForecastRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, token_mint, price_usd, order_count, sell_fees_usd, buy_fees_usd, captured_at, created_at
		FROM forecasts
		WHERE token_mint = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, mint, limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts by mint: %w", err)
	}
	defer rows.Close()

	var records []*domain.ForecastRecord
	for rows.Next() {
		var r domain.ForecastRecord
		if err := rows.Scan(
			&r.ID,
			&r.TokenMint,
			&r.PriceUSD,
			&r.OrderCount,
			&r.SellFeesUSD,
			&r.BuyFeesUSD,
			&r.CapturedAt,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecasts: %w", err)
	}

	return records, nil
}

// GetLatestByMint retrieves the most recent forecast for a mint.
func (s *ForecastStore) GetLatestByMint(ctx context.Context, mint string) (*domain.ForecastRecord, error) {
	query := `
		SELECT id, token_mint, price_usd, order_count, sell_fees_usd, buy_fees_usd, captured_at, created_at
		FROM forecasts
		WHERE token_mint = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`

	var r domain.ForecastRecord
	err := s.pool.QueryRow(ctx, query, mint).Scan(
		&r.ID,
		&r.TokenMint,
		&r.PriceUSD,
		&r.OrderCount,
		&r.SellFeesUSD,
		&r.BuyFeesUSD,
		&r.CapturedAt,
		&r.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query latest forecast: %w", err)
	}

	return &r, nil
}
