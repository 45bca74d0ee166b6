package forecast

import (
	"math"
	"sort"

	"solana-fee-forecast/internal/domain"
)

const (
	// BucketSize is the bucket width as a fraction of the current price.
	BucketSize = 0.05

	// FeeRate is the fixed creator fee taken on traded volume.
	FeeRate = 0.01

	// bucketEpsilon nudges the floor so ratios that are exact decimal
	// multiples of the bucket size (1.00, 0.95) land in their own bucket
	// even when binary floating point puts the quotient just under the
	// integer. Intervals are half-open: [k·b, (k+1)·b).
	bucketEpsilon = 1e-9
)

// bucketIndex maps a price ratio to its integer bucket index k, where the
// bucket spans [k·BucketSize, (k+1)·BucketSize).
func bucketIndex(ratio float64) int64 {
	return int64(math.Floor(ratio/BucketSize + bucketEpsilon))
}

// Buckets aggregates the orders of one side into geometric price bins
// relative to the current price and runs the cumulative sweep pass.
//
// Sell buckets are ordered ascending by price level (nearest above current
// first), buy buckets descending (nearest below current first); each
// bucket's cumulative total includes that bucket, i.e. total fees earned if
// price sweeps from the current price through this level.
func Buckets(orders []domain.NormalizedOrder, side domain.Side, priceUSD float64) []domain.OrderBucket {
	byIndex := make(map[int64]*domain.OrderBucket)

	for _, order := range orders {
		if order.Side != side {
			continue
		}

		idx := bucketIndex(order.Price / priceUSD)
		b, ok := byIndex[idx]
		if !ok {
			b = &domain.OrderBucket{
				PriceLevel: priceUSD * float64(idx) * BucketSize,
				Side:       side,
			}
			byIndex[idx] = b
		}

		b.OrderCount++
		b.TotalVolumeUSD += order.VolumeUSD
		// Always a pure function of the running total, never incrementally
		// summed, so repeated accumulation cannot drift.
		b.FeePotentialUSD = b.TotalVolumeUSD * FeeRate
	}

	buckets := make([]domain.OrderBucket, 0, len(byIndex))
	for _, b := range byIndex {
		buckets = append(buckets, *b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if side == domain.SideSell {
			return buckets[i].PriceLevel < buckets[j].PriceLevel
		}
		return buckets[i].PriceLevel > buckets[j].PriceLevel
	})

	var running float64
	for i := range buckets {
		running += buckets[i].FeePotentialUSD
		buckets[i].CumulativeFeesUSD = running
	}

	return buckets
}
