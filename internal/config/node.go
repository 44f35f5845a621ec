package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/key"
)

// NodeConfig is the immutable structure derived once at startup, per §3's
// "Node configuration" entry. Accounts is the single source of truth
// consumed by every IDL call; the work loop overrides individual entries
// per call (e.g. a fresh `run` keypair for "work").
type NodeConfig struct {
	Signer   solana.PrivateKey
	Address  solana.PublicKey
	Market   solana.PublicKey
	Programs NetworkProfile

	NosATA solana.PublicKey
	NFTATA solana.PublicKey

	Stake              solana.PublicKey
	StakeBump          uint8
	MarketVault        solana.PublicKey
	MarketVaultBump    uint8
	RewardsVault       solana.PublicKey
	RewardsVaultBump   uint8
	RewardsReflection  solana.PublicKey
	ReflectionBump     uint8

	// Accounts maps the base account names IDL-built instructions use
	// (market, user, vault, payer, authority, token program, system
	// program, program, ...) to their derived/fixed public keys. Per-call
	// accounts such as job and run are not in this table; callers add them
	// with WithOverrides.
	Accounts map[string]solana.PublicKey
}

// NewNodeConfig is a pure function of (signer, market, network) producing
// the structure above; it performs no RPC calls. market identifies the
// on-chain market the worker is configured to serve, supplied by the
// operator (`nosana-market` configuration input).
func NewNodeConfig(signer solana.PrivateKey, market solana.PublicKey, network string) (*NodeConfig, error) {
	profile, ok := ProfileByName(network)
	if !ok {
		return nil, fmt.Errorf("config: unknown network %q", network)
	}

	address := signer.PublicKey()

	nosATA, _, err := key.FindAssociatedTokenAddress(address, profile.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("config: deriving nos ata: %w", err)
	}
	nftATA, _, err := key.FindAssociatedTokenAddress(address, profile.NFTCollection)
	if err != nil {
		return nil, fmt.Errorf("config: deriving nft ata: %w", err)
	}

	stake, stakeBump, err := key.FindProgramAddress(
		[][]byte{[]byte("stake"), profile.TokenMint[:], address[:]},
		profile.StakeProgram,
	)
	if err != nil {
		return nil, fmt.Errorf("config: deriving stake pda: %w", err)
	}

	marketVault, marketVaultBump, err := key.FindProgramAddress(
		[][]byte{market[:], profile.TokenMint[:]},
		profile.JobProgram,
	)
	if err != nil {
		return nil, fmt.Errorf("config: deriving market-vault pda: %w", err)
	}

	rewardsVault, rewardsVaultBump, err := key.FindProgramAddress(
		[][]byte{[]byte("vault"), profile.RewardsPool[:]},
		profile.RewardsProgram,
	)
	if err != nil {
		return nil, fmt.Errorf("config: deriving rewards-vault pda: %w", err)
	}

	reflection, reflectionBump, err := key.FindProgramAddress(
		[][]byte{[]byte("reflection"), profile.RewardsPool[:]},
		profile.RewardsProgram,
	)
	if err != nil {
		return nil, fmt.Errorf("config: deriving rewards-reflection pda: %w", err)
	}

	cfg := &NodeConfig{
		Signer:            signer,
		Address:           address,
		Market:            market,
		Programs:          profile,
		NosATA:            nosATA,
		NFTATA:            nftATA,
		Stake:             stake,
		StakeBump:         stakeBump,
		MarketVault:       marketVault,
		MarketVaultBump:   marketVaultBump,
		RewardsVault:      rewardsVault,
		RewardsVaultBump:  rewardsVaultBump,
		RewardsReflection: reflection,
		ReflectionBump:    reflectionBump,
	}

	cfg.Accounts = map[string]solana.PublicKey{
		"authority":            address,
		"user":                 address,
		"payer":                address,
		"market":               market,
		"vault":                marketVault,
		"stake":                stake,
		"rewardsVault":         rewardsVault,
		"rewardsReflection":    reflection,
		"mint":                 profile.TokenMint,
		"nosAta":               nosATA,
		"nftAta":               nftATA,
		"tokenProgram":         key.TokenProgramID,
		"associatedTokenProgram": key.AssociatedTokenProgramID,
		"systemProgram":        solana.SystemProgramID,
		"program":              profile.JobProgram,
		"dummy":                profile.DummyPlaceholder,
	}

	return cfg, nil
}

// WithOverrides returns a copy of the account table with each entry in
// overrides applied on top, for call sites that need per-instruction
// accounts the base table doesn't carry (e.g. a freshly generated `job`
// or `run` keypair's public key for "list").
func (c *NodeConfig) WithOverrides(overrides map[string]solana.PublicKey) map[string]solana.PublicKey {
	merged := make(map[string]solana.PublicKey, len(c.Accounts)+len(overrides))
	for k, v := range c.Accounts {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
