package domain

// Snapshot is a point-in-time capture of all open limit orders for one
// target mint. Snapshots are immutable; a stale snapshot is superseded by
// atomically storing a fresh one, never mutated in place.
type Snapshot struct {
	TokenMint  string
	Orders     []ParsedOrder
	CapturedAt int64 // unix ms
}
