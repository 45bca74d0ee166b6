package limitorder

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mr-tron/base58"

	"solana-fee-forecast/internal/solana"
)

// testMint returns a deterministic base58 mint address from a fill byte.
func testMint(fill byte) string {
	return base58.Encode(bytes.Repeat([]byte{fill}, 32))
}

// orderData builds a well-formed order account buffer.
func orderData(t *testing.T, inputMint, outputMint string, making, taking uint64) []byte {
	t.Helper()

	data := make([]byte, minOrderAccountLen)

	in, err := base58.Decode(inputMint)
	if err != nil {
		t.Fatalf("decode input mint: %v", err)
	}
	out, err := base58.Decode(outputMint)
	if err != nil {
		t.Fatalf("decode output mint: %v", err)
	}

	copy(data[inputMintOffset:], in)
	copy(data[outputMintOffset:], out)
	binary.LittleEndian.PutUint64(data[makingAmountOffset:], making)
	binary.LittleEndian.PutUint64(data[takingAmountOffset:], taking)

	return data
}

func TestDecodeOrder(t *testing.T) {
	input := testMint(1)
	output := testMint(2)
	data := orderData(t, input, output, 5_000_000, 7_500_000)

	order, err := DecodeOrder("orderAcc1", data)
	if err != nil {
		t.Fatalf("DecodeOrder: %v", err)
	}

	if order.AccountKey != "orderAcc1" {
		t.Errorf("expected account key orderAcc1, got %s", order.AccountKey)
	}
	if order.InputMint != input {
		t.Errorf("expected input mint %s, got %s", input, order.InputMint)
	}
	if order.OutputMint != output {
		t.Errorf("expected output mint %s, got %s", output, order.OutputMint)
	}
	if order.MakingAmount != 5_000_000 {
		t.Errorf("expected making amount 5000000, got %d", order.MakingAmount)
	}
	if order.TakingAmount != 7_500_000 {
		t.Errorf("expected taking amount 7500000, got %d", order.TakingAmount)
	}
}

func TestDecodeOrder_TooShort(t *testing.T) {
	data := make([]byte, minOrderAccountLen-1)

	_, err := DecodeOrder("shortAcc", data)
	if err == nil {
		t.Fatal("expected decode error for undersized buffer")
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if decErr.AccountKey != "shortAcc" {
		t.Errorf("decode error should name the account, got %s", decErr.AccountKey)
	}
}

func TestDecodeAccount_InvalidBase64(t *testing.T) {
	acc := solana.ProgramAccount{Pubkey: "badAcc", Data: "not-base64!!!"}

	_, err := DecodeAccount(acc)
	if err == nil {
		t.Fatal("expected decode error for invalid base64")
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if decErr.AccountKey != "badAcc" {
		t.Errorf("decode error should name the account, got %s", decErr.AccountKey)
	}
}

func TestDecodeAccount(t *testing.T) {
	data := orderData(t, testMint(3), testMint(4), 100, 200)
	acc := solana.ProgramAccount{
		Pubkey: "okAcc",
		Data:   base64.StdEncoding.EncodeToString(data),
	}

	order, err := DecodeAccount(acc)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if order.MakingAmount != 100 || order.TakingAmount != 200 {
		t.Errorf("unexpected amounts: %d / %d", order.MakingAmount, order.TakingAmount)
	}
}
