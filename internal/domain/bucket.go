package domain

// OrderBucket aggregates orders falling into one geometric price bin.
type OrderBucket struct {
	PriceLevel        float64 `json:"priceLevel"`
	Side              Side    `json:"side"`
	OrderCount        int     `json:"orderCount"`
	TotalVolumeUSD    float64 `json:"totalVolumeUsd"`
	FeePotentialUSD   float64 `json:"feePotentialUsd"`
	CumulativeFeesUSD float64 `json:"cumulativeFeesIfSweep"`
}

// Forecast is the fee-potential forecast for one target token at one
// point in time. Sell buckets ascend from the current price, buy buckets
// descend; both carry cumulative sweep totals outward from the current price.
type Forecast struct {
	TokenMint   string        `json:"tokenMint"`
	PriceUSD    float64       `json:"priceUsd"`
	SellBuckets []OrderBucket `json:"sellBuckets"`
	BuyBuckets  []OrderBucket `json:"buyBuckets"`
	OrderCount  int           `json:"orderCount"`
	CapturedAt  int64         `json:"capturedAt"` // unix ms
}

// ForecastRecord is a persisted forecast row for history queries.
type ForecastRecord struct {
	ID          int64
	TokenMint   string
	PriceUSD    float64
	OrderCount  int
	SellFeesUSD float64 // total sell-side fee potential
	BuyFeesUSD  float64 // total buy-side fee potential
	CapturedAt  int64   // unix ms
	CreatedAt   int64   // unix ms, set by the store
}
