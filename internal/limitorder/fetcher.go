package limitorder

import (
	"context"
	"fmt"
	"log"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/observability"
	"solana-fee-forecast/internal/solana"
)

// Fetcher retrieves open limit orders for a target mint via two scoped
// program scans: one matching the order's input mint field, one matching its
// output mint field. Both filters run server-side against the chain's
// account index.
type Fetcher struct {
	rpc       solana.RPCClient
	programID string
	logger    *log.Logger
	metrics   *observability.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMetrics attaches Prometheus metrics for decode outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// NewFetcher creates a Fetcher against the given RPC client.
// programID may be empty to use the default limit-order program.
func NewFetcher(rpc solana.RPCClient, programID string, logger *log.Logger, opts ...Option) *Fetcher {
	if programID == "" {
		programID = ProgramID
	}
	f := &Fetcher{rpc: rpc, programID: programID, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// scanResult carries one side's raw accounts out of its goroutine.
type scanResult struct {
	accounts []solana.ProgramAccount
	err      error
}

// FetchOpenOrders returns all decodable open orders referencing mint on
// either side, deduplicated by account key. The two scans run concurrently;
// either failing fails the whole fetch, since a one-sided order set cannot
// be trusted. Individual accounts that violate the layout are logged and
// skipped.
func (f *Fetcher) FetchOpenOrders(ctx context.Context, mint string) ([]domain.ParsedOrder, error) {
	inputCh := make(chan scanResult, 1)
	outputCh := make(chan scanResult, 1)

	go func() {
		accs, err := f.scan(ctx, mint, inputMintOffset)
		inputCh <- scanResult{accounts: accs, err: err}
	}()
	go func() {
		accs, err := f.scan(ctx, mint, outputMintOffset)
		outputCh <- scanResult{accounts: accs, err: err}
	}()

	input := <-inputCh
	output := <-outputCh

	if input.err != nil {
		return nil, fmt.Errorf("scan orders by input mint: %w", input.err)
	}
	if output.err != nil {
		return nil, fmt.Errorf("scan orders by output mint: %w", output.err)
	}

	return f.decodeAndMerge(input.accounts, output.accounts), nil
}

// scan runs one getProgramAccounts query matching mint at the given offset.
func (f *Fetcher) scan(ctx context.Context, mint string, offset int) ([]solana.ProgramAccount, error) {
	filters := []solana.AccountFilter{
		{Memcmp: &solana.MemcmpFilter{Offset: offset, Bytes: mint}},
	}
	return f.rpc.GetProgramAccounts(ctx, f.programID, filters)
}

// decodeAndMerge decodes both result sets into one order list keyed by
// account identity. An account matching both filters (input and output mint
// both equal the target) is kept exactly once; first occurrence wins, the
// account bytes are identical either way.
func (f *Fetcher) decodeAndMerge(sets ...[]solana.ProgramAccount) []domain.ParsedOrder {
	seen := make(map[string]struct{})
	var orders []domain.ParsedOrder

	for _, set := range sets {
		for _, acc := range set {
			if _, dup := seen[acc.Pubkey]; dup {
				continue
			}
			seen[acc.Pubkey] = struct{}{}

			order, err := DecodeAccount(acc)
			if err != nil {
				if f.logger != nil {
					f.logger.Printf("skipping undecodable account: %v", err)
				}
				if f.metrics != nil {
					f.metrics.DecodeFailures.Inc()
				}
				continue
			}
			if f.metrics != nil {
				f.metrics.OrdersDecoded.Inc()
			}
			orders = append(orders, *order)
		}
	}

	return orders
}
