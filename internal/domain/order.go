package domain

// Side classifies a limit order relative to the target token.
type Side string

const (
	// SideSell means the order holder is disposing of the target token.
	SideSell Side = "sell"
	// SideBuy means the order holder is acquiring the target token.
	SideBuy Side = "buy"
)

// ParsedOrder is a limit order decoded from its on-chain account.
// Amounts are raw integers in each mint's smallest unit; decimal
// adjustment happens at normalization once both mints' decimals are known.
type ParsedOrder struct {
	AccountKey   string // order account pubkey
	InputMint    string // mint being sold by the maker
	OutputMint   string // mint being bought by the maker
	MakingAmount uint64 // raw amount of input mint offered
	TakingAmount uint64 // raw amount of output mint requested
}

// NormalizedOrder is a decimal-adjusted order with a USD notional,
// classified relative to the target token. It exists only during bucketing.
type NormalizedOrder struct {
	Price     float64 // trigger price in target-token terms
	VolumeUSD float64
	Side      Side
}
