// Package worker implements the job lifecycle controller: the
// poll/claim/execute/finalize state machine described in §4.7, run as a
// single cooperative loop per §5 with one exit channel for graceful
// cancellation, mirroring the shape of the teacher's waitForConfirmation
// polling loops (time.NewTicker + select) generalized into a persistent
// controller instead of a bounded wait.
package worker

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/nosana-node/worker/internal/config"
	"github.com/nosana-node/worker/internal/domain"
	"github.com/nosana-node/worker/internal/flow"
	"github.com/nosana-node/worker/internal/idl"
	"github.com/nosana-node/worker/internal/ipfs"
	"github.com/nosana-node/worker/internal/nerrors"
	"github.com/nosana-node/worker/internal/rpcclient"
	"github.com/nosana-node/worker/internal/txn"
)

// RPC is the subset of rpcclient.Client the controller needs.
type RPC interface {
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, def *idl.IDL, accountType string, equals map[string]idl.Value) ([]rpcclient.ProgramAccount, error)
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, rawBase64 string) (string, error)
	GetTransaction(ctx context.Context, signature string) (*rpcclient.TransactionResult, error)
}

// Controller owns the node's active flow and drives the state machine in
// §4.7's table against a single market.
type Controller struct {
	cfg      *config.NodeConfig
	rpc      RPC
	idlCache *idl.Cache
	ipfsClient *ipfs.Client
	engine   flow.Engine
	store    flow.Store

	pollDelay time.Duration

	activeFlowID string
}

// New constructs a Controller bound to cfg's signer/market and the
// supplied collaborators. pollDelay is the `poll-delay-ms` configuration
// input from §6, converted to a time.Duration by the caller.
func New(cfg *config.NodeConfig, rpc RPC, idlCache *idl.Cache, ipfsClient *ipfs.Client, engine flow.Engine, store flow.Store, pollDelay time.Duration) *Controller {
	return &Controller{
		cfg:        cfg,
		rpc:        rpc,
		idlCache:   idlCache,
		ipfsClient: ipfsClient,
		engine:     engine,
		store:      store,
		pollDelay:  pollDelay,
	}
}

// Run drives the loop until exit receives a value or ctx is cancelled,
// per §5's cooperative single-owner model: one select over the
// inter-iteration timer and the exit channel, with all RPC/flow I/O
// happening synchronously inside the iteration.
func (c *Controller) Run(ctx context.Context, exit <-chan struct{}) {
	for {
		if err := c.iterate(ctx); err != nil {
			log.Printf("[WARN] work loop iteration error: %v", err)
		}

		select {
		case <-exit:
			log.Printf("[INFO] work loop received shutdown signal")
			return
		case <-ctx.Done():
			log.Printf("[INFO] work loop context cancelled")
			return
		case <-time.After(c.pollDelay):
		}
	}
}

// iterate runs exactly one pass of the §4.7 state table. Errors are
// logged by the caller and retried on the next iteration per §7's local
// recovery design - iterate itself never terminates the loop.
func (c *Controller) iterate(ctx context.Context) error {
	program, err := c.idlCache.FetchIDL(ctx, c.rpc, c.cfg.Programs.JobProgram, c.cfg.Programs.Name)
	if err != nil {
		return fmt.Errorf("worker: fetching idl: %w", err)
	}

	if c.activeFlowID != "" {
		return c.pollActiveFlow(ctx, program)
	}

	runs, err := c.findMyRuns(ctx, program)
	if err != nil {
		return fmt.Errorf("worker: finding runs: %w", err)
	}
	if len(runs) > 0 {
		return c.startFlow(ctx, program, runs[0])
	}

	market, err := c.fetchMarket(ctx, program)
	if err != nil {
		return fmt.Errorf("worker: fetching market: %w", err)
	}
	if market.IsQueued(c.cfg.Address) {
		return nil
	}

	return c.submitWork(ctx, program)
}

func (c *Controller) fetchMarket(ctx context.Context, program *idl.IDL) (*domain.Market, error) {
	data, err := c.rpc.GetAccountData(ctx, c.cfg.Market)
	if err != nil {
		return nil, err
	}
	fields, err := idl.DecodeAccount(program, "MarketAccount", data, false)
	if err != nil {
		return nil, err
	}
	return domain.DecodeMarket(fields)
}

// findMyRuns scans for run accounts whose node field is this worker's
// address, per §4.7's "discover claimed runs".
func (c *Controller) findMyRuns(ctx context.Context, program *idl.IDL) ([]*domain.Run, error) {
	accounts, err := c.rpc.GetProgramAccounts(ctx, c.cfg.Programs.JobProgram, program, "RunAccount", map[string]idl.Value{
		"node": idl.Pubkey(c.cfg.Address),
	})
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.Run, 0, len(accounts))
	for _, acc := range accounts {
		fields, err := idl.DecodeAccount(program, "RunAccount", acc.Data, true)
		if err != nil {
			return nil, err
		}
		run, err := domain.DecodeRun(fields)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// submitWork enters the market queue (or claims an available job) by
// submitting the no-arg "work" instruction with a freshly generated run
// keypair, per §4.7's instruction details.
func (c *Controller) submitWork(ctx context.Context, program *idl.IDL) error {
	_, runSeed, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("worker: generating run keypair: %w", err)
	}
	run := solana.PrivateKey(runSeed)

	accounts := c.cfg.WithOverrides(map[string]solana.PublicKey{
		"run": run.PublicKey(),
	})

	bh, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return err
	}

	tx, err := txn.BuildIdlTx(program, "work", map[string]idl.Value{}, accounts, c.cfg.Address, bh)
	if err != nil {
		return err
	}

	lookup := func(pk solana.PublicKey) (solana.PrivateKey, bool) {
		switch pk {
		case c.cfg.Address:
			return c.cfg.Signer, true
		case run.PublicKey():
			return run, true
		default:
			return solana.PrivateKey{}, false
		}
	}

	sig, err := txn.SendTx(ctx, c.rpc, tx, lookup)
	if err != nil {
		return err
	}

	if _, err := txn.AwaitTx(ctx, c.rpc, sig); err != nil {
		return err
	}

	log.Printf("[INFO] submitted work, signature=%s", sig)
	return nil
}

// startFlow downloads run's job pipeline from IPFS, generates a flow id,
// triggers the flow engine, and persists the new active flow, per §4.7's
// "start a flow" action.
func (c *Controller) startFlow(ctx context.Context, program *idl.IDL, run *domain.Run) error {
	jobData, err := c.rpc.GetAccountData(ctx, run.Job)
	if err != nil {
		return err
	}
	fields, err := idl.DecodeAccount(program, "JobAccount", jobData, false)
	if err != nil {
		return err
	}
	job, err := domain.DecodeJob(fields)
	if err != nil {
		return err
	}

	cid, err := ipfs.CIDFromJobBlob(job.IpfsJob)
	if err != nil {
		return err
	}

	doc, err := c.ipfsClient.FetchJob(ctx, cid)
	if err != nil {
		return fmt.Errorf("worker: downloading job %s: %w", cid, err)
	}

	flowID := flow.NewFlowID()
	f := &flow.Flow{FlowID: flowID}
	f.Results.InputJobAddr = run.Job.String()

	if err := c.store.Save(ctx, f); err != nil {
		return fmt.Errorf("worker: persisting new flow %s: %w", flowID, err)
	}

	if err := c.engine.Trigger(ctx, flowID, map[string]interface{}{
		"job-addr": run.Job.String(),
		"pipeline": doc.Pipeline,
	}); err != nil {
		return fmt.Errorf("worker: triggering flow %s: %w", flowID, err)
	}

	c.activeFlowID = flowID
	log.Printf("[INFO] started flow %s for job %s", flowID, run.Job.String())
	return nil
}

// pollActiveFlow reads the active flow's state and, if it's ready to
// finalize, submits the finish transaction; otherwise leaves it active
// for the next iteration. Git failure triggers the compensating effect
// per §4.7's finalization preconditions.
func (c *Controller) pollActiveFlow(ctx context.Context, program *idl.IDL) error {
	f, err := c.store.Load(ctx, c.activeFlowID)
	if err != nil {
		return fmt.Errorf("worker: loading flow %s: %w", c.activeFlowID, err)
	}

	if f.GitFailed() {
		if err := c.engine.HandleEffect(ctx, c.activeFlowID, "complete-job", nil); err != nil {
			return fmt.Errorf("worker: dispatching complete-job for %s: %w", c.activeFlowID, err)
		}
		f, err = c.store.Load(ctx, c.activeFlowID)
		if err != nil {
			return fmt.Errorf("worker: re-loading flow %s: %w", c.activeFlowID, err)
		}
	}

	if !f.Finished() {
		return nil
	}

	if err := c.finishRun(ctx, program, f); err != nil {
		return err
	}

	c.activeFlowID = ""
	return nil
}

// finishRun submits the "finish" instruction for the job this flow
// resulted from, using the 32-byte decoding of the flow's result IPFS
// hash as the result argument, per §4.7's end-to-end scenario 2.
func (c *Controller) finishRun(ctx context.Context, program *idl.IDL, f *flow.Flow) error {
	resultHash, err := decodeCID(f.Results.ResultIPFS)
	if err != nil {
		return fmt.Errorf("worker: decoding result cid %s: %w", f.Results.ResultIPFS, err)
	}

	jobAddr, err := solana.PublicKeyFromBase58(f.Results.InputJobAddr)
	if err != nil {
		return fmt.Errorf("worker: parsing job address %s: %w", f.Results.InputJobAddr, err)
	}

	accounts := c.cfg.WithOverrides(map[string]solana.PublicKey{
		"job": jobAddr,
	})

	bh, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return err
	}

	args := map[string]idl.Value{
		"ipfsResult": idl.Pubkey(resultHash),
	}

	tx, err := txn.BuildIdlTx(program, "finish", args, accounts, c.cfg.Address, bh)
	if err != nil {
		return err
	}

	lookup := func(pk solana.PublicKey) (solana.PrivateKey, bool) {
		if pk == c.cfg.Address {
			return c.cfg.Signer, true
		}
		return solana.PrivateKey{}, false
	}

	sig, err := txn.SendTx(ctx, c.rpc, tx, lookup)
	if err != nil {
		if rpcErr, ok := err.(*nerrors.RpcError); ok && rpcErr.Kind == nerrors.RpcJSONRPCError {
			// A second "finish" for an already-closed run is rejected
			// deterministically at preflight, not timed out. Idempotence
			// requires this to clear active_flow like a landed finish
			// would, not retry forever.
			log.Printf("[INFO] finish for job %s rejected by rpc, treating run as already finished: %v", jobAddr.String(), rpcErr)
			return nil
		}
		return err
	}

	result, err := txn.AwaitTx(ctx, c.rpc, sig)
	if err != nil {
		return err
	}
	if result.Failed() {
		log.Printf("[WARN] finish for job %s landed with an on-chain error, treating run as already finished: %v", jobAddr.String(), result.Meta.Err)
		return nil
	}

	log.Printf("[INFO] submitted finish for job %s, signature=%s", jobAddr.String(), sig)
	return nil
}

func decodeCID(cid string) ([32]byte, error) {
	var out [32]byte
	full, err := base58.Decode(cid)
	if err != nil {
		return out, fmt.Errorf("worker: decoding cid %s: %w", cid, err)
	}
	if len(full) != 34 {
		return out, fmt.Errorf("worker: cid %s decodes to %d bytes, want 34", cid, len(full))
	}
	copy(out[:], full[2:])
	return out, nil
}
