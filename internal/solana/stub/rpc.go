// Package stub provides a map-backed solana.RPCClient for testing.
package stub

import (
	"context"
	"encoding/base64"
	"sync/atomic"

	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
// Program accounts are filtered in-memory the same way the RPC node would
// apply memcmp/dataSize filters, so fetcher tests exercise real filter logic.
type RPCClient struct {
	// ProgramAccounts maps programID -> owned accounts.
	ProgramAccounts map[string][]solana.ProgramAccount

	// Accounts maps pubkey -> account info.
	Accounts map[string]*solana.AccountInfo

	// Err, when set, is returned by every method.
	Err error

	// ProgramAccountCalls counts GetProgramAccounts invocations. Atomic
	// because callers may scan from multiple goroutines.
	ProgramAccountCalls atomic.Int32
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		ProgramAccounts: make(map[string][]solana.ProgramAccount),
		Accounts:        make(map[string]*solana.AccountInfo),
	}
}

// AddProgramAccount registers an account under programID with raw data bytes.
func (c *RPCClient) AddProgramAccount(programID, pubkey string, data []byte) {
	c.ProgramAccounts[programID] = append(c.ProgramAccounts[programID], solana.ProgramAccount{
		Pubkey: pubkey,
		Owner:  programID,
		Data:   base64.StdEncoding.EncodeToString(data),
	})
}

// AddAccount registers account info under pubkey with raw data bytes.
func (c *RPCClient) AddAccount(pubkey string, data []byte) {
	c.Accounts[pubkey] = &solana.AccountInfo{
		Data: base64.StdEncoding.EncodeToString(data),
	}
}

// GetProgramAccounts returns registered accounts matching all filters.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, filters []solana.AccountFilter) ([]solana.ProgramAccount, error) {
	c.ProgramAccountCalls.Add(1)
	if c.Err != nil {
		return nil, c.Err
	}

	var matched []solana.ProgramAccount
	for _, acc := range c.ProgramAccounts[programID] {
		data, err := base64.StdEncoding.DecodeString(acc.Data)
		if err != nil {
			continue
		}
		if matchesFilters(data, filters) {
			matched = append(matched, acc)
		}
	}
	return matched, nil
}

// GetAccountInfo returns registered account info, or nil if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Accounts[pubkey], nil
}

func matchesFilters(data []byte, filters []solana.AccountFilter) bool {
	for _, f := range filters {
		switch {
		case f.Memcmp != nil:
			cmp, err := base58.Decode(f.Memcmp.Bytes)
			if err != nil {
				return false
			}
			end := f.Memcmp.Offset + len(cmp)
			if end > len(data) {
				return false
			}
			if string(data[f.Memcmp.Offset:end]) != string(cmp) {
				return false
			}
		case f.DataSize > 0:
			if uint64(len(data)) != f.DataSize {
				return false
			}
		}
	}
	return true
}

var _ solana.RPCClient = (*RPCClient)(nil)
