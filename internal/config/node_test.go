package config

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

func testSigner(t *testing.T) solana.PrivateKey {
	t.Helper()
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return solana.PrivateKey(raw)
}

func TestNewNodeConfig_IsDeterministic(t *testing.T) {
	signer := testSigner(t)
	market := solana.MustPublicKeyFromBase58("nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7")

	first, err := NewNodeConfig(signer, market, "devnet")
	if err != nil {
		t.Fatalf("NewNodeConfig: %v", err)
	}
	second, err := NewNodeConfig(signer, market, "devnet")
	if err != nil {
		t.Fatalf("NewNodeConfig: %v", err)
	}

	if first.Stake != second.Stake || first.StakeBump != second.StakeBump {
		t.Fatalf("stake PDA not deterministic: %v/%d vs %v/%d", first.Stake, first.StakeBump, second.Stake, second.StakeBump)
	}
	if first.MarketVault != second.MarketVault {
		t.Fatalf("market vault PDA not deterministic")
	}
	if first.RewardsVault != second.RewardsVault || first.RewardsReflection != second.RewardsReflection {
		t.Fatalf("rewards PDAs not deterministic")
	}
	if first.NosATA != second.NosATA || first.NFTATA != second.NFTATA {
		t.Fatalf("ATAs not deterministic")
	}
}

func TestNewNodeConfig_UnknownNetworkFails(t *testing.T) {
	signer := testSigner(t)
	market := solana.MustPublicKeyFromBase58("nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7")

	if _, err := NewNodeConfig(signer, market, "testnet"); err == nil {
		t.Fatalf("expected error for unknown network, got nil")
	}
}

func TestNewNodeConfig_AccountsTableCoversEveryName(t *testing.T) {
	signer := testSigner(t)
	market := solana.MustPublicKeyFromBase58("nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7")

	cfg, err := NewNodeConfig(signer, market, "mainnet")
	if err != nil {
		t.Fatalf("NewNodeConfig: %v", err)
	}

	want := []string{
		"authority", "user", "payer", "market", "vault", "stake",
		"rewardsVault", "rewardsReflection", "mint", "nosAta", "nftAta",
		"tokenProgram", "associatedTokenProgram", "systemProgram", "program", "dummy",
	}
	for _, name := range want {
		if _, ok := cfg.Accounts[name]; !ok {
			t.Fatalf("Accounts table missing entry %q", name)
		}
	}
}

func TestNodeConfig_WithOverridesDoesNotMutateBaseTable(t *testing.T) {
	signer := testSigner(t)
	market := solana.MustPublicKeyFromBase58("nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7")
	cfg, err := NewNodeConfig(signer, market, "mainnet")
	if err != nil {
		t.Fatalf("NewNodeConfig: %v", err)
	}

	fresh := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	merged := cfg.WithOverrides(map[string]solana.PublicKey{"job": fresh})

	if _, ok := cfg.Accounts["job"]; ok {
		t.Fatalf("base Accounts table mutated by WithOverrides")
	}
	if merged["job"] != fresh {
		t.Fatalf("merged table missing override")
	}
	if merged["authority"] != cfg.Accounts["authority"] {
		t.Fatalf("merged table dropped a base entry")
	}
}

func TestEnvInputs_SignerRoundTripsBase58PrivateKey(t *testing.T) {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	in := &EnvInputs{PrivateKey: base58.Encode(raw)}

	key, err := in.Signer()
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if len(key) != 64 {
		t.Fatalf("signer length = %d, want 64", len(key))
	}
	for i := range raw {
		if key[i] != raw[i] {
			t.Fatalf("signer byte %d = %d, want %d", i, key[i], raw[i])
		}
	}
}

func TestEnvInputs_MarketPubkeyParsesBase58(t *testing.T) {
	in := &EnvInputs{Market: "nosXBVoaCTtYdLvKY6Csb4AC8JCdQKKAaWYtx2ZMoo7"}
	pk, err := in.MarketPubkey()
	if err != nil {
		t.Fatalf("MarketPubkey: %v", err)
	}
	if pk.String() != in.Market {
		t.Fatalf("round-tripped pubkey = %s, want %s", pk.String(), in.Market)
	}
}
