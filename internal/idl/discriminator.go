package idl

import "crypto/sha256"

// MethodDiscriminator computes the 8-byte instruction discriminator:
// the first 8 bytes of sha256("global:" ‖ name). Anchor's own tooling
// prints this as 16 hex characters (i.e. 8 bytes) - don't double that
// to 16 bytes.
func MethodDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// AccountDiscriminator computes the 8-byte account-type discriminator:
// the first 8 bytes of sha256("account:" ‖ name), the same family of
// derivation Anchor uses to tag account blobs.
func AccountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}
