// Package forecast turns open limit orders into a fee-potential forecast.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/metadata"
	"solana-fee-forecast/internal/observability"
	"solana-fee-forecast/internal/snapshot"
	"solana-fee-forecast/internal/storage"
)

// Request errors, reported before any external call is made.
var (
	ErrInvalidMint  = errors.New("invalid mint address")
	ErrInvalidPrice = errors.New("price must be a positive number")
)

// OrderSource supplies all open orders referencing a mint on either side.
// Satisfied by limitorder.Fetcher.
type OrderSource interface {
	FetchOpenOrders(ctx context.Context, mint string) ([]domain.ParsedOrder, error)
}

// Service computes fee-potential forecasts. All collaborators are injected;
// the snapshot cache is the only state shared across requests.
type Service struct {
	orders   OrderSource
	resolver metadata.Resolver
	cache    snapshot.Cache
	store    storage.ForecastStore // optional history persistence
	metrics  *observability.Metrics
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables forecast history persistence.
func WithStore(store storage.ForecastStore) Option {
	return func(s *Service) { s.store = store }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the service clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a forecast service.
func NewService(orders OrderSource, resolver metadata.Resolver, cache snapshot.Cache, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
	if s.cache == nil {
		s.cache = snapshot.Noop{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast computes the fee-potential forecast for mint at the given current
// USD price. Zero open orders is a valid empty-result success, distinct from
// an upstream fetch failure.
func (s *Service) Forecast(ctx context.Context, mint string, priceUSD float64) (*domain.Forecast, error) {
	if err := ValidateMint(mint); err != nil {
		return nil, err
	}
	if err := ValidatePrice(priceUSD); err != nil {
		return nil, err
	}

	start := s.now()

	snap, fresh, err := s.snapshotFor(ctx, mint)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FetchErrors.Inc()
		}
		return nil, fmt.Errorf("fetch open orders for %s: %w", mint, err)
	}

	// One memoization map per request pass; decimals resolve eagerly and in
	// parallel so normalization never stalls on a slow lookup.
	var resolveOpts []metadata.RequestOption
	if s.metrics != nil {
		resolveOpts = append(resolveOpts, metadata.WithResolveHooks(
			s.metrics.DecimalLookups.Inc,
			s.metrics.DecimalFallbacks.Inc,
		))
	}
	decimals := metadata.NewRequestResolver(s.resolver, s.logger, resolveOpts...)
	decimals.ResolveAll(ctx, CollectMints(snap.Orders))

	normalized := Normalize(ctx, snap.Orders, mint, priceUSD, decimals)

	fc := &domain.Forecast{
		TokenMint:   mint,
		PriceUSD:    priceUSD,
		SellBuckets: Buckets(normalized, domain.SideSell, priceUSD),
		BuyBuckets:  Buckets(normalized, domain.SideBuy, priceUSD),
		OrderCount:  len(normalized),
		CapturedAt:  snap.CapturedAt,
	}

	if fresh {
		s.persist(ctx, fc)
	}

	if s.metrics != nil {
		s.metrics.ForecastDuration.Observe(s.now().Sub(start).Seconds())
	}

	return fc, nil
}

// snapshotFor returns a fresh or cached snapshot for mint. fresh reports
// whether a fetch actually ran.
func (s *Service) snapshotFor(ctx context.Context, mint string) (*domain.Snapshot, bool, error) {
	if snap, ok := s.cache.Get(mint); ok {
		if s.metrics != nil {
			s.metrics.SnapshotHits.Inc()
		}
		return snap, false, nil
	}
	if s.metrics != nil {
		s.metrics.SnapshotMisses.Inc()
	}

	orders, err := s.orders.FetchOpenOrders(ctx, mint)
	if err != nil {
		return nil, false, err
	}

	snap := &domain.Snapshot{
		TokenMint:  mint,
		Orders:     orders,
		CapturedAt: s.now().UnixMilli(),
	}
	s.cache.Put(snap)

	if s.metrics != nil {
		s.metrics.OrdersFetched.Add(float64(len(orders)))
	}

	return snap, true, nil
}

// persist writes a forecast summary to the history store. Persistence
// failures are logged, never surfaced: history is an auxiliary concern.
func (s *Service) persist(ctx context.Context, fc *domain.Forecast) {
	if s.store == nil {
		return
	}

	record := &domain.ForecastRecord{
		TokenMint:   fc.TokenMint,
		PriceUSD:    fc.PriceUSD,
		OrderCount:  fc.OrderCount,
		SellFeesUSD: totalFees(fc.SellBuckets),
		BuyFeesUSD:  totalFees(fc.BuyBuckets),
		CapturedAt:  fc.CapturedAt,
	}

	if err := s.store.Insert(ctx, record); err != nil && s.logger != nil {
		s.logger.Printf("persist forecast for %s: %v", fc.TokenMint, err)
	}
}

func totalFees(buckets []domain.OrderBucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	// The last cumulative entry already sums every bucket's fee potential.
	return buckets[len(buckets)-1].CumulativeFeesUSD
}

// ValidateMint checks that mint is a syntactically valid 32-byte base58
// address.
func ValidateMint(mint string) error {
	decoded, err := base58.Decode(mint)
	if err != nil || len(decoded) != 32 {
		return fmt.Errorf("%w: %q", ErrInvalidMint, mint)
	}
	return nil
}

// ValidatePrice checks that price is a positive finite number.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidPrice, price)
	}
	return nil
}
