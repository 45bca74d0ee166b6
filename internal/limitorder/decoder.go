package limitorder

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/domain"
	"solana-fee-forecast/internal/solana"
)

// DecodeError reports a malformed order account buffer. The account key is
// carried so a batch can log exactly which account violated the layout.
type DecodeError struct {
	AccountKey string
	Reason     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode order account %s: %s", e.AccountKey, e.Reason)
}

// DecodeAccount decodes one base64-encoded program account into a ParsedOrder.
func DecodeAccount(acc solana.ProgramAccount) (*domain.ParsedOrder, error) {
	data, err := base64.StdEncoding.DecodeString(acc.Data)
	if err != nil {
		return nil, &DecodeError{AccountKey: acc.Pubkey, Reason: fmt.Sprintf("invalid base64: %v", err)}
	}
	return DecodeOrder(acc.Pubkey, data)
}

// DecodeOrder decodes a raw order account buffer. Pure over well-formed
// buffers; undersized buffers fail with a DecodeError rather than producing
// zeroed fields, since the layout is owned by an external program and may
// evolve underneath us.
func DecodeOrder(accountKey string, data []byte) (*domain.ParsedOrder, error) {
	if len(data) < minOrderAccountLen {
		return nil, &DecodeError{
			AccountKey: accountKey,
			Reason:     fmt.Sprintf("buffer too short: %d bytes, need %d", len(data), minOrderAccountLen),
		}
	}

	return &domain.ParsedOrder{
		AccountKey:   accountKey,
		InputMint:    base58.Encode(data[inputMintOffset : inputMintOffset+pubkeyLen]),
		OutputMint:   base58.Encode(data[outputMintOffset : outputMintOffset+pubkeyLen]),
		MakingAmount: binary.LittleEndian.Uint64(data[makingAmountOffset:]),
		TakingAmount: binary.LittleEndian.Uint64(data[takingAmountOffset:]),
	}, nil
}
