package domain

// TokenMetadata holds on-chain metadata for a token mint.
type TokenMetadata struct {
	Mint      string
	Name      *string // from Metaplex metadata (nullable)
	Symbol    *string // from Metaplex metadata (nullable)
	Decimals  int
	Supply    *float64 // decimal-adjusted total supply (nullable)
	FetchedAt int64    // unix ms
}
