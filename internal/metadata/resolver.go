// Package metadata resolves token mint metadata (decimals, name, symbol)
// from on-chain accounts.
package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/solana"
)

// DefaultDecimals is the fallback precision when a mint cannot be resolved.
// 9 is the SPL default and what nearly all launchpad-era mints use.
const DefaultDecimals = 9

// metaplexProgramID is the Metaplex Token Metadata program.
const metaplexProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

// Resolver resolves a mint address to its decimal precision.
type Resolver interface {
	// ResolveDecimals returns the mint's decimals, or an error if the mint
	// account is missing or malformed.
	ResolveDecimals(ctx context.Context, mint string) (int, error)
}

// RPCResolver resolves mint metadata from chain accounts.
type RPCResolver struct {
	rpc solana.RPCClient
}

// NewRPCResolver creates a resolver backed by the given RPC client.
func NewRPCResolver(rpc solana.RPCClient) *RPCResolver {
	return &RPCResolver{rpc: rpc}
}

// ResolveDecimals fetches the mint account and reads its decimals field.
func (r *RPCResolver) ResolveDecimals(ctx context.Context, mint string) (int, error) {
	info, err := r.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("get mint account: %w", err)
	}
	if info == nil {
		return 0, fmt.Errorf("mint account %s not found", mint)
	}

	decimals, _, err := parseMintAccount(info.Data)
	if err != nil {
		return 0, err
	}
	return decimals, nil
}

// FetchMetadata fetches full token metadata: decimals and supply from the
// SPL mint account, name and symbol from the Metaplex metadata PDA when one
// exists. The Metaplex lookup is best-effort.
func (r *RPCResolver) FetchMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	info, err := r.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("get mint account: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("mint account %s not found", mint)
	}

	meta := &domain.TokenMetadata{
		Mint:      mint,
		FetchedAt: time.Now().UnixMilli(),
	}

	decimals, supply, err := parseMintAccount(info.Data)
	if err != nil {
		return nil, err
	}
	meta.Decimals = decimals
	adjusted := supply / math.Pow(10, float64(decimals))
	meta.Supply = &adjusted

	if pda := deriveMetadataPDA(mint); pda != "" {
		metaInfo, err := r.rpc.GetAccountInfo(ctx, pda)
		if err == nil && metaInfo != nil {
			parseMetaplexAccount(metaInfo.Data, meta)
		}
	}

	return meta, nil
}

// parseMintAccount parses SPL Token Mint account data.
// Mint layout (82 bytes):
//   - mintAuthority: Option<Pubkey> (4 + 32)
//   - supply: u64 at offset 36
//   - decimals: u8 at offset 44
//   - isInitialized: bool
//   - freezeAuthority: Option<Pubkey>
func parseMintAccount(data string) (decimals int, supply float64, err error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, 0, fmt.Errorf("decode mint data: %w", err)
	}
	if len(decoded) < 82 {
		return 0, 0, fmt.Errorf("mint data too short: %d", len(decoded))
	}

	supply = float64(binary.LittleEndian.Uint64(decoded[36:44]))
	decimals = int(decoded[44])
	return decimals, supply, nil
}

// parseMetaplexAccount parses name and symbol from Metaplex Token Metadata
// account data. Best-effort: any layout surprise leaves meta untouched.
// Metadata layout: key(1) | updateAuthority(32) | mint(32) | name | symbol | uri
// where strings are borsh-encoded (u32 length prefix, NUL padded).
func parseMetaplexAccount(data string, meta *domain.TokenMetadata) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	if len(decoded) < 100 || decoded[0] != 4 { // 4 = MetadataV1 key
		return
	}

	offset := 65 // key + updateAuthority + mint

	name, offset, ok := readBorshString(decoded, offset, 100)
	if !ok {
		return
	}
	if name != "" {
		meta.Name = &name
	}

	symbol, _, ok := readBorshString(decoded, offset, 20)
	if !ok {
		return
	}
	if symbol != "" {
		meta.Symbol = &symbol
	}
}

// readBorshString reads a u32-length-prefixed string at offset, trimming NUL
// padding. maxLen guards against garbage lengths.
func readBorshString(data []byte, offset, maxLen int) (string, int, bool) {
	if offset+4 > len(data) {
		return "", 0, false
	}
	length := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	if length > maxLen || offset+length > len(data) {
		return "", 0, false
	}
	s := strings.TrimRight(string(data[offset:offset+length]), "\x00")
	return s, offset + length, true
}

// deriveMetadataPDA derives the Metaplex metadata PDA for a mint.
// Seeds: "metadata" || program id || mint; the bump search walks down from
// 255 until the candidate hash is off the ed25519 curve.
func deriveMetadataPDA(mint string) string {
	mintBytes, err := base58.Decode(mint)
	if err != nil || len(mintBytes) != 32 {
		return ""
	}
	programBytes, err := base58.Decode(metaplexProgramID)
	if err != nil || len(programBytes) != 32 {
		return ""
	}

	seeds := [][]byte{[]byte("metadata"), programBytes, mintBytes}

	for bump := byte(255); bump > 0; bump-- {
		var buf []byte
		for _, seed := range seeds {
			buf = append(buf, seed...)
		}
		buf = append(buf, bump)
		buf = append(buf, programBytes...)
		buf = append(buf, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(buf)
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
