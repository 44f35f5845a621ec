package key

import (
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/gagliardetto/solana-go"
)

// TokenProgramID and AssociatedTokenProgramID are the well-known SPL
// program ids used to derive associated token accounts, named here so the
// seed order in FindAssociatedTokenAddress stays explicit and matches
// §4.2 ("pda([owner, token_program, mint], ata_program)").
var (
	TokenProgramID           = token.ProgramID
	AssociatedTokenProgramID = associatedtokenaccount.ProgramID
)

// FindAssociatedTokenAddress derives the canonical token account for
// (owner, mint): pda([owner, token_program, mint], ata_program).
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return FindProgramAddress(
		[][]byte{owner[:], TokenProgramID[:], mint[:]},
		AssociatedTokenProgramID,
	)
}
