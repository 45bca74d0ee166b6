// Package limitorder fetches and decodes open limit-order accounts from the
// on-chain order program.
package limitorder

// ProgramID is the limit-order program that owns all order accounts.
const ProgramID = "j1o2qRpjcyUwEvwtcfhEQefh773ZgjxcVRry7LDqg5X"

// Order account layout (little-endian). The layout is owned by the external
// program; offsets below must match its serialized Order struct exactly.
//
//	0..8     discriminator
//	8..40    maker pubkey
//	40..72   input mint
//	72..104  output mint
//	104..224 reserves, token programs, unique id, original amounts
//	224..232 making amount (u64 LE, remaining input offered)
//	232..240 taking amount (u64 LE, remaining output requested)
const (
	inputMintOffset    = 40
	outputMintOffset   = 72
	makingAmountOffset = 224
	takingAmountOffset = 232

	// minOrderAccountLen is the smallest buffer that contains every field
	// this service reads.
	minOrderAccountLen = takingAmountOffset + 8

	pubkeyLen = 32
)

// InputMintOffset returns the byte offset of the input mint field, used for
// server-side memcmp filtering.
func InputMintOffset() int { return inputMintOffset }

// OutputMintOffset returns the byte offset of the output mint field.
func OutputMintOffset() int { return outputMintOffset }
