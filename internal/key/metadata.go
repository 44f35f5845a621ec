package key

import "github.com/gagliardetto/solana-go"

// MetaplexProgramID is the Metaplex Token Metadata program, used only to
// derive an NFT's metadata PDA. The health check does not read the
// metadata PDA; it reads the signer's NFT token account.
var MetaplexProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// FindNFTMetadataAddress derives the metadata PDA for a mint:
// pda(["metadata", metaplex_program, mint], metaplex_program).
func FindNFTMetadataAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return FindProgramAddress(
		[][]byte{[]byte("metadata"), MetaplexProgramID[:], mint[:]},
		MetaplexProgramID,
	)
}
