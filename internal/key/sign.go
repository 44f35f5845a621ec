package key

import (
	"github.com/gagliardetto/solana-go"
)

// Sign produces a 64-byte ed25519 signature over msg, the same way
// nosana/client.go's getAuthHeaders signs the deployments auth message:
// solana.PrivateKey.Sign wraps crypto/ed25519 directly, no extra hashing.
func Sign(priv solana.PrivateKey, msg []byte) (solana.Signature, error) {
	return priv.Sign(msg)
}
