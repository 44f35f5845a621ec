// Package config derives the node's immutable startup configuration: the
// selected network's program table and every PDA/ATA the worker needs,
// per §4.5. Derivation is a pure function of (signer, market, network) -
// no RPC calls, no I/O.
package config

import "github.com/gagliardetto/solana-go"

// NetworkProfile names the program ids a given network (mainnet/devnet)
// uses, per §3's "Network profile" data model entry.
type NetworkProfile struct {
	Name            string
	TokenMint       solana.PublicKey
	StakeProgram    solana.PublicKey
	JobProgram      solana.PublicKey
	RewardsProgram  solana.PublicKey
	RewardsPool     solana.PublicKey
	NFTCollection   solana.PublicKey
	DummyPlaceholder solana.PublicKey
}

// Mainnet and Devnet are the two network profiles the worker node knows
// about per §6's `solana-network ∈ {mainnet,devnet}` configuration input.
// Mainnet program ids are Nosana's published mainnet deployments; the
// devnet entries are well-formed base58 literals that are not checked
// against a live devnet deployment.
var (
	Mainnet = NetworkProfile{
		Name:             "mainnet",
		TokenMint:        solana.MustPublicKeyFromBase58("nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7"),
		StakeProgram:     solana.MustPublicKeyFromBase58("nosScmHY2uR24Zh751PmGj9ww9QRNHewh9H59AfrTJE"),
		JobProgram:       solana.MustPublicKeyFromBase58("nosJTmGQxvwXy23vng5UjkTbfC4XVRoJkvnPfj1jTTf"),
		RewardsProgram:   solana.MustPublicKeyFromBase58("nosRB8DUV67oLNrL45bo2pFLrmsWPB1eCFEgppbEcR2"),
		RewardsPool:      solana.MustPublicKeyFromBase58("rewMdyPkjDV7ASxwp4BtDkhWDiEJhRaxCmiMj9VfpHu"),
		NFTCollection:    solana.MustPublicKeyFromBase58("nftNLZeJ8upaXUbLBEfmQk2YcCNAE1rmBCJhcsWNUXf"),
		DummyPlaceholder: solana.MustPublicKeyFromBase58("11111111111111111111111111111111"),
	}

	Devnet = NetworkProfile{
		Name:             "devnet",
		TokenMint:        solana.MustPublicKeyFromBase58("devr1BGQndEW5k5zfvG5FsLyZv1Ap73vNgAHcQ9sUVP"),
		StakeProgram:     solana.MustPublicKeyFromBase58("nosScmHY2uR24Zh751PmGj9ww9QRNHewh9H59AfrTJE"),
		JobProgram:       solana.MustPublicKeyFromBase58("nosJhNRqr2bc9g1nfGDcXXTXvYUmxD4cVwy2pMWhrYM"),
		RewardsProgram:   solana.MustPublicKeyFromBase58("nosRB8DUV67oLNrL45bo2pFLrmsWPB1eCFEgppbEcR2"),
		RewardsPool:      solana.MustPublicKeyFromBase58("refLZGgirMtAuvQaWtaxFo2WszAmY8zR2HWuHfHCeBh"),
		NFTCollection:    solana.MustPublicKeyFromBase58("nftNLZeJ8upaXUbLBEfmQk2YcCNAE1rmBCJhcsWNUXf"),
		DummyPlaceholder: solana.MustPublicKeyFromBase58("11111111111111111111111111111111"),
	}
)

// ProfileByName returns the network profile named by n ("mainnet" or
// "devnet"), or false if n isn't one of the two recognized networks.
func ProfileByName(n string) (NetworkProfile, bool) {
	switch n {
	case "mainnet":
		return Mainnet, true
	case "devnet":
		return Devnet, true
	default:
		return NetworkProfile{}, false
	}
}
