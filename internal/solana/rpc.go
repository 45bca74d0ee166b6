package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by this service.
type RPCClient interface {
	// GetProgramAccounts scans accounts owned by a program with server-side filters.
	GetProgramAccounts(ctx context.Context, programID string, filters []AccountFilter) ([]ProgramAccount, error)

	// GetAccountInfo retrieves account info by public key. Returns nil if not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// AccountFilter is a server-side filter for getProgramAccounts.
// Exactly one of Memcmp or DataSize should be set.
type AccountFilter struct {
	Memcmp   *MemcmpFilter
	DataSize uint64
}

// MemcmpFilter matches accounts whose data equals Bytes at Offset.
type MemcmpFilter struct {
	Offset int
	Bytes  string // base58-encoded comparison bytes
}

// ProgramAccount is one result row of a getProgramAccounts scan.
type ProgramAccount struct {
	Pubkey   string
	Owner    string
	Lamports uint64
	Data     string // base64 encoded account data
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
	RentEpoch  uint64
}
