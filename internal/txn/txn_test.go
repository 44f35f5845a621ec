package txn

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/nerrors"
)

type fakeSubmitter struct {
	blockhash solana.Hash
	sendErr   error
	sig       string
	getTxErr  error
	results   []*TransactionResult
	callCount int
}

func (f *fakeSubmitter) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return f.blockhash, nil
}

func (f *fakeSubmitter) SendTransaction(ctx context.Context, rawBase64 string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sig, nil
}

func (f *fakeSubmitter) GetTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	if f.getTxErr != nil {
		return nil, f.getTxErr
	}
	if f.callCount >= len(f.results) {
		return nil, nil
	}
	r := f.results[f.callCount]
	f.callCount++
	return r, nil
}

func TestAwaitTx_MaxTriesZeroReturnsTimeoutSynchronously(t *testing.T) {
	fake := &fakeSubmitter{}
	_, err := AwaitTx(context.Background(), fake, "sig", WithMaxTries(0))
	if err == nil {
		t.Fatalf("expected Timeout, got nil")
	}
	if _, ok := err.(*nerrors.Timeout); !ok {
		t.Fatalf("expected *nerrors.Timeout, got %T: %v", err, err)
	}
	if fake.callCount != 0 {
		t.Fatalf("GetTransaction called %d times, want 0 for max_tries=0", fake.callCount)
	}
}

func TestAwaitTx_ReturnsResultOnceLanded(t *testing.T) {
	fake := &fakeSubmitter{
		results: []*TransactionResult{nil, nil, {Slot: 42}},
	}
	result, err := AwaitTx(context.Background(), fake, "sig", WithPollMs(1), WithMaxTries(5))
	if err != nil {
		t.Fatalf("AwaitTx: %v", err)
	}
	if result == nil || result.Slot != 42 {
		t.Fatalf("result = %+v, want slot 42", result)
	}
}

func TestTransactionResult_Failed(t *testing.T) {
	ok := &TransactionResult{Slot: 1}
	if ok.Failed() {
		t.Fatalf("transaction with no meta.err reported as failed")
	}

	var failed TransactionResult
	failed.Slot = 2
	failed.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
	if !failed.Failed() {
		t.Fatalf("transaction with non-null meta.err reported as not failed")
	}
}

func TestAwaitTx_ExhaustsRetriesReturnsTimeout(t *testing.T) {
	fake := &fakeSubmitter{results: nil}
	_, err := AwaitTx(context.Background(), fake, "sig", WithPollMs(1), WithMaxTries(3))
	if err == nil {
		t.Fatalf("expected Timeout, got nil")
	}
	timeout, ok := err.(*nerrors.Timeout)
	if !ok {
		t.Fatalf("expected *nerrors.Timeout, got %T", err)
	}
	if timeout.Tries != 3 {
		t.Fatalf("Timeout.Tries = %d, want 3", timeout.Tries)
	}
}
