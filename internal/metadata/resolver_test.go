package metadata

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"

	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/solana/stub"
)

// mintAccountData builds an 82-byte SPL mint account buffer.
func mintAccountData(decimals byte, supply uint64) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:], supply)
	data[44] = decimals
	return data
}

func testMint(fill byte) string {
	return base58.Encode(bytes.Repeat([]byte{fill}, 32))
}

func TestRPCResolver_ResolveDecimals(t *testing.T) {
	mint := testMint(7)
	rpc := stub.NewRPCClient()
	rpc.AddAccount(mint, mintAccountData(6, 1_000_000_000))

	r := NewRPCResolver(rpc)
	decimals, err := r.ResolveDecimals(context.Background(), mint)
	if err != nil {
		t.Fatalf("ResolveDecimals: %v", err)
	}
	if decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", decimals)
	}
}

func TestRPCResolver_ResolveDecimals_MintNotFound(t *testing.T) {
	r := NewRPCResolver(stub.NewRPCClient())
	_, err := r.ResolveDecimals(context.Background(), testMint(7))
	if err == nil {
		t.Fatal("expected error for missing mint account")
	}
}

func TestRPCResolver_ResolveDecimals_ShortData(t *testing.T) {
	mint := testMint(7)
	rpc := stub.NewRPCClient()
	rpc.AddAccount(mint, make([]byte, 40))

	r := NewRPCResolver(rpc)
	_, err := r.ResolveDecimals(context.Background(), mint)
	if err == nil {
		t.Fatal("expected error for short mint data")
	}
}

func TestRPCResolver_FetchMetadata_SupplyAdjusted(t *testing.T) {
	mint := testMint(7)
	rpc := stub.NewRPCClient()
	rpc.AddAccount(mint, mintAccountData(6, 1_500_000_000))

	r := NewRPCResolver(rpc)
	meta, err := r.FetchMetadata(context.Background(), mint)
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if meta.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", meta.Decimals)
	}
	if meta.Supply == nil || *meta.Supply != 1500 {
		t.Errorf("expected supply 1500, got %v", meta.Supply)
	}
}

func TestParseMetaplexAccount(t *testing.T) {
	// key(1)=4 | updateAuthority(32) | mint(32) | name | symbol | uri
	var buf []byte
	buf = append(buf, 4)
	buf = append(buf, make([]byte, 64)...)

	name := make([]byte, 32) // NUL-padded fixed-size field
	copy(name, "Test Token")
	buf = appendBorshString(buf, name)

	symbol := make([]byte, 10)
	copy(symbol, "TST")
	buf = appendBorshString(buf, symbol)

	meta := &domain.TokenMetadata{}
	parseMetaplexAccount(base64.StdEncoding.EncodeToString(buf), meta)

	if meta.Name == nil || *meta.Name != "Test Token" {
		t.Errorf("expected name 'Test Token', got %v", meta.Name)
	}
	if meta.Symbol == nil || *meta.Symbol != "TST" {
		t.Errorf("expected symbol 'TST', got %v", meta.Symbol)
	}
}

func appendBorshString(buf, s []byte) []byte {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(s)))
	buf = append(buf, l[:]...)
	return append(buf, s...)
}

func TestDeriveMetadataPDA_Deterministic(t *testing.T) {
	mint := testMint(9)
	pda1 := deriveMetadataPDA(mint)
	pda2 := deriveMetadataPDA(mint)

	if pda1 == "" {
		t.Fatal("expected non-empty PDA")
	}
	if pda1 != pda2 {
		t.Errorf("PDA derivation not deterministic: %s vs %s", pda1, pda2)
	}
	if pda1 == mint {
		t.Error("PDA should differ from mint")
	}
}

func TestDeriveMetadataPDA_InvalidMint(t *testing.T) {
	if pda := deriveMetadataPDA("not-a-mint"); pda != "" {
		t.Errorf("expected empty PDA for invalid mint, got %s", pda)
	}
}

// countingResolver counts lookups and optionally fails.
type countingResolver struct {
	calls    atomic.Int32
	decimals int
	err      error
}

func (c *countingResolver) ResolveDecimals(_ context.Context, _ string) (int, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return c.decimals, nil
}

func TestRequestResolver_Memoizes(t *testing.T) {
	inner := &countingResolver{decimals: 6}
	r := NewRequestResolver(inner, log.New(io.Discard, "", 0))
	ctx := context.Background()

	mint := testMint(1)
	r.ResolveAll(ctx, []string{mint, mint, mint})

	if got := r.Decimals(ctx, mint); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	if calls := inner.calls.Load(); calls != 1 {
		t.Errorf("expected 1 lookup for repeated mint, got %d", calls)
	}
}

func TestRequestResolver_FallbackOnError(t *testing.T) {
	inner := &countingResolver{err: errors.New("rpc down")}
	r := NewRequestResolver(inner, log.New(io.Discard, "", 0))
	ctx := context.Background()

	mint := testMint(2)
	r.ResolveAll(ctx, []string{mint})

	// Failure falls back to the default and is memoized; no retry on read.
	if got := r.Decimals(ctx, mint); got != DefaultDecimals {
		t.Errorf("expected default %d, got %d", DefaultDecimals, got)
	}
	if calls := inner.calls.Load(); calls != 1 {
		t.Errorf("expected 1 lookup, got %d", calls)
	}
}

func TestRequestResolver_ParallelPrefetch(t *testing.T) {
	inner := &countingResolver{decimals: 9}
	r := NewRequestResolver(inner, log.New(io.Discard, "", 0))

	mints := make([]string, 20)
	for i := range mints {
		mints[i] = testMint(byte(i + 1))
	}
	r.ResolveAll(context.Background(), mints)

	if calls := inner.calls.Load(); calls != 20 {
		t.Errorf("expected 20 lookups, got %d", calls)
	}
}
