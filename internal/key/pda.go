// Package key implements the program-derived-address family of
// derivations the worker node needs: PDAs, associated token accounts, the
// NFT metadata PDA, the Anchor IDL address, and ed25519 signing. None of
// this depends on a live RPC connection - it's pure byte math over
// base58-decoded public keys.
package key

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/nerrors"
)

const pdaMarker = "ProgramDerivedAddress"

// isOnCurve reports whether b (32 bytes) decodes as a valid edwards25519
// point. A PDA must land off the curve so nobody can ever hold its private
// key.
func isOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// FindProgramAddress derives a PDA from seeds and a program id by trying
// bumps from 255 down to 0: hash(seeds ‖ bump ‖ program ‖
// "ProgramDerivedAddress") and accept the first result that isn't a valid
// curve point. Returns NoValidBump if every bump from 255 to 0 lands
// on-curve (cryptographically unreachable in practice).
func FindProgramAddress(seeds [][]byte, program solana.PublicKey) (solana.PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, s := range seeds {
			h.Write(s)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program[:])
		h.Write([]byte(pdaMarker))
		sum := h.Sum(nil)

		if !isOnCurve(sum) {
			var out solana.PublicKey
			copy(out[:], sum)
			return out, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, &nerrors.NoValidBump{Program: program.String()}
}

// CreateAddressWithSeed implements the non-PDA "key-from-seed" derivation
// used for the Anchor IDL account address: sha256(from ‖ seed ‖ program).
// Unlike FindProgramAddress this performs no bump search and no off-curve
// check - the resulting address need not be off-curve because nothing ever
// signs for it directly; Anchor derives it the same way via
// PublicKey.createWithSeed.
func CreateAddressWithSeed(from solana.PublicKey, seed string, program solana.PublicKey) solana.PublicKey {
	h := sha256.New()
	h.Write(from[:])
	h.Write([]byte(seed))
	h.Write(program[:])
	sum := h.Sum(nil)

	var out solana.PublicKey
	copy(out[:], sum)
	return out
}
