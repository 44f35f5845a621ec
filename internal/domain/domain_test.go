package domain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/idl"
)

func pubkeyOf(fill byte) idl.Pubkey {
	var pk idl.Pubkey
	for i := range pk {
		pk[i] = fill
	}
	return pk
}

// ipfsJobOf builds the 34-byte array<u8,34> value an ipfsJob field decodes
// to, with every byte set to fill.
func ipfsJobOf(fill byte) (idl.ArrayValue, [34]byte) {
	var raw [34]byte
	arr := make(idl.ArrayValue, 34)
	for i := range raw {
		raw[i] = fill
		arr[i] = idl.U8(fill)
	}
	return arr, raw
}

func TestDecodeMarket_QueueMembership(t *testing.T) {
	authority := pubkeyOf(0x01)
	queued := pubkeyOf(0x02)
	other := pubkeyOf(0x03)

	fields := map[string]idl.Value{
		"authority": authority,
		"queue":     idl.VecValue{queued},
	}

	market, err := DecodeMarket(fields)
	if err != nil {
		t.Fatalf("DecodeMarket: %v", err)
	}
	if market.Authority != solana.PublicKey(authority) {
		t.Fatalf("Authority = %v, want %v", market.Authority, authority)
	}
	if !market.IsQueued(solana.PublicKey(queued)) {
		t.Fatalf("expected queued address to be found in queue")
	}
	if market.IsQueued(solana.PublicKey(other)) {
		t.Fatalf("unqueued address reported as queued")
	}
}

func TestDecodeMarket_MissingQueueFails(t *testing.T) {
	fields := map[string]idl.Value{"authority": pubkeyOf(0x01)}
	if _, err := DecodeMarket(fields); err == nil {
		t.Fatalf("expected error for missing queue field, got nil")
	}
}

func TestDecodeJob_PopulatesAllFields(t *testing.T) {
	project := pubkeyOf(0x04)
	ipfs, ipfsRaw := ipfsJobOf(0x05)

	fields := map[string]idl.Value{
		"project":   project,
		"ipfsJob":   ipfs,
		"timeStart": idl.NewI64(1700000000),
		"state":     idl.U8(2),
	}

	job, err := DecodeJob(fields)
	if err != nil {
		t.Fatalf("DecodeJob: %v", err)
	}
	if job.Owner != solana.PublicKey(project) || job.Project != solana.PublicKey(project) {
		t.Fatalf("Owner/Project = %v/%v, want %v", job.Owner, job.Project, project)
	}
	if job.IpfsJob != ipfsRaw {
		t.Fatalf("IpfsJob mismatch")
	}
	if job.TimeStart != 1700000000 {
		t.Fatalf("TimeStart = %d, want 1700000000", job.TimeStart)
	}
	if job.State != 2 {
		t.Fatalf("State = %d, want 2", job.State)
	}
}

func TestDecodeJob_WrongFieldTypeFails(t *testing.T) {
	ipfs, _ := ipfsJobOf(0x05)
	fields := map[string]idl.Value{
		"project":   pubkeyOf(0x04),
		"ipfsJob":   ipfs,
		"timeStart": idl.U8(1), // wrong type, should be I64
		"state":     idl.U8(2),
	}
	if _, err := DecodeJob(fields); err == nil {
		t.Fatalf("expected error for wrong timeStart type, got nil")
	}
}

func TestDecodeRun_PopulatesAllFields(t *testing.T) {
	job := pubkeyOf(0x06)
	payer := pubkeyOf(0x07)
	node := pubkeyOf(0x08)

	fields := map[string]idl.Value{
		"job":   job,
		"payer": payer,
		"node":  node,
	}

	run, err := DecodeRun(fields)
	if err != nil {
		t.Fatalf("DecodeRun: %v", err)
	}
	if run.Job != solana.PublicKey(job) || run.Payer != solana.PublicKey(payer) || run.Node != solana.PublicKey(node) {
		t.Fatalf("decoded run fields mismatch: %+v", run)
	}
}

func TestDecodeRun_MissingFieldFails(t *testing.T) {
	fields := map[string]idl.Value{"job": pubkeyOf(0x06), "payer": pubkeyOf(0x07)}
	if _, err := DecodeRun(fields); err == nil {
		t.Fatalf("expected error for missing node field, got nil")
	}
}
