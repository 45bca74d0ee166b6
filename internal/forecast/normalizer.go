package forecast

import (
	"context"
	"math"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/metadata"
)

// Normalize converts parsed orders into decimal-adjusted, USD-valued,
// side-classified orders relative to targetMint.
//
// Raw integer amounts stay exact through decoding; floating point enters
// only here, once decimal scale is known. That is acceptable because the
// output is a display estimate, not a settlement amount.
//
// Orders referencing targetMint on neither side are discarded (the fetch
// filters guarantee one side matches, so this only catches caller misuse),
// as are orders whose adjusted making or taking amount is zero, since those
// have no defined trigger price.
func Normalize(ctx context.Context, orders []domain.ParsedOrder, targetMint string, priceUSD float64, decimals *metadata.RequestResolver) []domain.NormalizedOrder {
	normalized := make([]domain.NormalizedOrder, 0, len(orders))

	for _, order := range orders {
		makingReal := float64(order.MakingAmount) / math.Pow(10, float64(decimals.Decimals(ctx, order.InputMint)))
		takingReal := float64(order.TakingAmount) / math.Pow(10, float64(decimals.Decimals(ctx, order.OutputMint)))

		if makingReal == 0 || takingReal == 0 {
			continue
		}

		switch {
		case order.InputMint == targetMint:
			// Maker is disposing of the target token.
			normalized = append(normalized, domain.NormalizedOrder{
				Price:     takingReal / makingReal,
				VolumeUSD: makingReal * priceUSD,
				Side:      domain.SideSell,
			})
		case order.OutputMint == targetMint:
			// Maker is acquiring the target token.
			normalized = append(normalized, domain.NormalizedOrder{
				Price:     makingReal / takingReal,
				VolumeUSD: takingReal * priceUSD,
				Side:      domain.SideBuy,
			})
		}
	}

	return normalized
}

// CollectMints returns the distinct mints referenced by orders, for eager
// decimal prefetch before the normalization pass.
func CollectMints(orders []domain.ParsedOrder) []string {
	seen := make(map[string]struct{}, len(orders)*2)
	var mints []string
	for _, order := range orders {
		for _, mint := range []string{order.InputMint, order.OutputMint} {
			if _, dup := seen[mint]; dup {
				continue
			}
			seen[mint] = struct{}{}
			mints = append(mints, mint)
		}
	}
	return mints
}
