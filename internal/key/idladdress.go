package key

import (
	"github.com/gagliardetto/solana-go"
)

// FindIdlAddress computes the address of a program's Anchor IDL account:
// base = pda([], program); idlAddress = createWithSeed(base, "anchor:idl",
// program). This is the deterministic on-chain location the IDL codec
// fetches from; it never changes for a given program.
func FindIdlAddress(program solana.PublicKey) (solana.PublicKey, error) {
	base, _, err := FindProgramAddress(nil, program)
	if err != nil {
		return solana.PublicKey{}, err
	}

	return CreateAddressWithSeed(base, "anchor:idl", program), nil
}
