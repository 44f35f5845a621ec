// Package txn builds, signs, submits, and awaits the single-instruction
// transactions the worker node issues against IDL-described programs,
// per §4.4. It depends on internal/idl for payload/account-meta encoding
// and on internal/rpcclient for the RPC calls, mirroring the way
// buildAndSubmitJobTransaction in the teacher's direct_blockchain.go
// wires those same two concerns together.
package txn

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/idl"
	"github.com/nosana-node/worker/internal/nerrors"
	"github.com/nosana-node/worker/internal/rpcclient"
)

// TransactionResult is an alias for rpcclient's result type, kept under
// this package's name since callers of AwaitTx think in terms of txn, not
// transport.
type TransactionResult = rpcclient.TransactionResult

// Submitter is the subset of internal/rpcclient.Client this package needs,
// kept narrow so tests can fake it without standing up HTTP.
type Submitter interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, rawBase64 string) (string, error)
	GetTransaction(ctx context.Context, signature string) (*TransactionResult, error)
}

const (
	defaultPollMs   = 1000
	defaultMaxTries = 30
)

// BuildIdlTx assembles an unsigned transaction with a single instruction
// built from program's IDL, per §4.4. accounts maps account names (as
// declared in the IDL) to the public keys to use; feePayer becomes the
// transaction's fee payer and first signer slot.
func BuildIdlTx(program *idl.IDL, instructionName string, args map[string]idl.Value, accounts map[string]solana.PublicKey, feePayer solana.PublicKey, recentBlockhash solana.Hash) (*solana.Transaction, error) {
	payload, metas, err := idl.EncodeInstruction(program, instructionName, args, accounts)
	if err != nil {
		return nil, err
	}

	programID, ok := accounts["program"]
	if !ok {
		return nil, &nerrors.MissingAccount{Instruction: instructionName, Name: "program"}
	}

	instr := solana.NewInstruction(programID, metas, payload)

	tx, err := solana.NewTransaction([]solana.Instruction{instr}, recentBlockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("txn: building transaction: %w", err)
	}
	return tx, nil
}

// SignerLookup returns the private key for pubkey, or ok=false if this
// transaction builder has no key for it (the teacher's
// buildAndSubmitJobTransaction uses the same closure-based lookup shape
// to sign with whichever subset of job/run/payer keys is in scope).
type SignerLookup func(pubkey solana.PublicKey) (solana.PrivateKey, bool)

// SendTx signs tx with every key SignerLookup can resolve for the
// transaction's required signers and submits it via RPC, returning the
// transaction signature.
func SendTx(ctx context.Context, rpc Submitter, tx *solana.Transaction, lookup SignerLookup) (string, error) {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		priv, ok := lookup(key)
		if !ok {
			return nil
		}
		return &priv
	})
	if err != nil {
		return "", fmt.Errorf("txn: signing transaction: %w", err)
	}

	raw, err := tx.ToBase64()
	if err != nil {
		return "", fmt.Errorf("txn: serializing transaction: %w", err)
	}

	sig, err := rpc.SendTransaction(ctx, raw)
	if err != nil {
		return "", err
	}
	return sig, nil
}

// AwaitOption configures AwaitTx's polling.
type AwaitOption func(*awaitConfig)

type awaitConfig struct {
	pollMs   int
	maxTries int
}

// WithPollMs overrides the default 1000ms poll interval.
func WithPollMs(ms int) AwaitOption { return func(c *awaitConfig) { c.pollMs = ms } }

// WithMaxTries overrides the default 30-try budget.
func WithMaxTries(n int) AwaitOption { return func(c *awaitConfig) { c.maxTries = n } }

// AwaitTx polls getTransaction for signature until it lands or the retry
// budget is exhausted, per §4.4 and §8's max_tries=0 boundary case (which
// returns Timeout synchronously without ever calling getTransaction).
func AwaitTx(ctx context.Context, rpc Submitter, signature string, opts ...AwaitOption) (*TransactionResult, error) {
	cfg := awaitConfig{pollMs: defaultPollMs, maxTries: defaultMaxTries}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxTries <= 0 {
		return nil, &nerrors.Timeout{Op: "await_tx", Tries: 0, PollMs: cfg.pollMs}
	}

	ticker := time.NewTicker(time.Duration(cfg.pollMs) * time.Millisecond)
	defer ticker.Stop()

	for try := 0; try < cfg.maxTries; try++ {
		result, err := rpc.GetTransaction(ctx, signature)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		if try == cfg.maxTries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, &nerrors.Timeout{Op: "await_tx", Tries: cfg.maxTries, PollMs: cfg.pollMs}
}
