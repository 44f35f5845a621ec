// Package health implements the startup health check described in §4.6:
// read SOL, staked NOS, and access-NFT balances, print the startup
// banner the teacher's client/provider code always logs before acting,
// and gate the work loop.
package health

import (
	"context"
	"encoding/binary"
	"log"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/nosana-node/worker/internal/config"
	"github.com/nosana-node/worker/internal/nerrors"
	"github.com/nosana-node/worker/internal/rpcclient"
)

// BalanceReader is the subset of internal/rpcclient.Client RunCheck needs.
type BalanceReader interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetTokenAccountBalance(ctx context.Context, tokenAccount solana.PublicKey) (*rpcclient.TokenAccountBalance, error)
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (owner string, lamports uint64, data []byte, err error)
}

// splTokenAmountOffset is the byte offset of the `amount` field (u64, LE)
// within an SPL token account's raw data: 32-byte mint ‖ 32-byte owner ‖
// 8-byte amount ‖ ...
const splTokenAmountOffset = 64

// minLamports is the §4.6 SOL floor below which the node refuses to
// start its work loop: 100,000,000 lamports (0.1 SOL).
const minLamports = 100_000_000

// Report is the result of one health check pass: the three balances and
// whether the gate passed.
type Report struct {
	SOL        uint64
	NOS        uint64
	NFT        uint64
	SecretsOK  bool
	Healthy    bool
	FailReason string
}

// Check reads SOL, NOS, and NFT balances plus secrets-credential presence
// and evaluates the §4.6 gate: healthy unless SOL < minLamports, NFT < 1,
// or secretsPresent is false. Health failure is advisory - callers must
// not crash the process on a failing Report, only skip starting the loop.
func Check(sol, nos, nft uint64, secretsPresent bool) *Report {
	r := &Report{SOL: sol, NOS: nos, NFT: nft, SecretsOK: secretsPresent, Healthy: true}

	switch {
	case sol < minLamports:
		r.Healthy = false
		r.FailReason = "sol balance below minimum"
	case nft < 1:
		r.Healthy = false
		r.FailReason = "no access nft held"
	case !secretsPresent:
		r.Healthy = false
		r.FailReason = "secrets credential absent"
	}

	return r
}

// Gate returns a *nerrors.HealthGate if the report failed, nil otherwise.
func (r *Report) Gate() error {
	if r.Healthy {
		return nil
	}
	return &nerrors.HealthGate{Reason: r.FailReason}
}

// RunCheck fetches SOL, staked NOS, and access-NFT balances for cfg's
// signer and evaluates the gate. secretsPresent is supplied by the caller
// since secret-credential presence is a configuration fact, not an RPC
// read.
func RunCheck(ctx context.Context, rpc BalanceReader, cfg *config.NodeConfig, secretsPresent bool) (*Report, error) {
	sol, err := rpc.GetBalance(ctx, cfg.Address)
	if err != nil {
		return nil, err
	}

	nosBal, err := rpc.GetTokenAccountBalance(ctx, cfg.NosATA)
	var nos uint64
	if err == nil {
		nos, _ = strconv.ParseUint(nosBal.Amount, 10, 64)
	}

	nft := nftBalance(ctx, rpc, cfg.NFTATA)

	return Check(sol, nos, nft, secretsPresent), nil
}

// nftBalance reads the access-NFT balance via getAccountInfo rather than
// getTokenAccountBalance, so the check is a genuine ownership test: the
// account must exist and be owned by the SPL token program, not merely
// report a parseable amount. A missing account or wrong owner reads as
// zero held.
func nftBalance(ctx context.Context, rpc BalanceReader, nftATA solana.PublicKey) uint64 {
	owner, _, data, err := rpc.GetAccountInfo(ctx, nftATA)
	if err != nil || owner != token.ProgramID.String() || len(data) < splTokenAmountOffset+8 {
		return 0
	}
	return binary.LittleEndian.Uint64(data[splTokenAmountOffset : splTokenAmountOffset+8])
}

// PrintBanner logs the SOL/NOS/NFT summary at startup, per §6's "startup
// prints a health banner" and §7's "the banner summarizes SOL/NOS/NFT at
// startup" - bracketed-level logging matching the teacher's convention.
func PrintBanner(cfg *config.NodeConfig, r *Report) {
	log.Printf("[INFO] worker %s on %s", cfg.Address.String(), cfg.Programs.Name)
	log.Printf("[INFO] balances: sol=%d nos=%d nft=%d", r.SOL, r.NOS, r.NFT)
	if r.Healthy {
		log.Printf("[INFO] health check passed, starting work loop")
	} else {
		log.Printf("[WARN] health check failed: %s - work loop will not start", r.FailReason)
	}
}
