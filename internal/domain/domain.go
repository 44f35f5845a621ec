// Package domain wraps the schema-directed idl.Value maps decoded from
// on-chain accounts in typed accessors, per §3's Market/Job/Run account
// descriptions and §9's "higher layers know the expected shape from the
// IDL" note.
package domain

import (
	"github.com/gagliardetto/solana-go"
	"github.com/nosana-node/worker/internal/idl"
)

// Market is the decoded view of a market account: its queue of pending
// worker/job addresses. A worker considers itself queued when its
// address appears in Queue.
type Market struct {
	Authority solana.PublicKey
	Queue     []solana.PublicKey
}

// IsQueued reports whether address appears in the market's queue.
func (m *Market) IsQueued(address solana.PublicKey) bool {
	for _, q := range m.Queue {
		if q == address {
			return true
		}
	}
	return false
}

// DecodeMarket converts a decoded "MarketAccount" field map into a Market.
func DecodeMarket(fields map[string]idl.Value) (*Market, error) {
	authority, err := pubkeyField(fields, "authority")
	if err != nil {
		return nil, err
	}
	queueVal, ok := fields["queue"].(idl.VecValue)
	if !ok {
		return nil, fieldErr("queue", "vec<publicKey>")
	}
	queue := make([]solana.PublicKey, 0, len(queueVal))
	for _, v := range queueVal {
		pk, ok := v.(idl.Pubkey)
		if !ok {
			return nil, fieldErr("queue[]", "publicKey")
		}
		queue = append(queue, solana.PublicKey(pk))
	}
	return &Market{Authority: authority, Queue: queue}, nil
}

// Job is the decoded view of a job account per §3: an owner, the IPFS
// blob locating the declarative pipeline, timestamps, and a state tag.
type Job struct {
	Owner     solana.PublicKey
	Project   solana.PublicKey
	IpfsJob   [34]byte
	TimeStart int64
	State     uint8
}

func DecodeJob(fields map[string]idl.Value) (*Job, error) {
	owner, err := pubkeyField(fields, "project")
	if err != nil {
		return nil, err
	}
	ipfsVal, err := ipfsJobField(fields, "ipfsJob")
	if err != nil {
		return nil, err
	}
	timeStart, err := i64Field(fields, "timeStart")
	if err != nil {
		return nil, err
	}
	state, err := u8Field(fields, "state")
	if err != nil {
		return nil, err
	}
	return &Job{
		Owner:     owner,
		Project:   owner,
		IpfsJob:   ipfsVal,
		TimeStart: timeStart,
		State:     state,
	}, nil
}

// Run is the decoded view of a run account per §3: links a worker's claim
// to a job, and names the payer to refund on finalization.
type Run struct {
	Job   solana.PublicKey
	Payer solana.PublicKey
	Node  solana.PublicKey
}

func DecodeRun(fields map[string]idl.Value) (*Run, error) {
	job, err := pubkeyField(fields, "job")
	if err != nil {
		return nil, err
	}
	payer, err := pubkeyField(fields, "payer")
	if err != nil {
		return nil, err
	}
	node, err := pubkeyField(fields, "node")
	if err != nil {
		return nil, err
	}
	return &Run{Job: job, Payer: payer, Node: node}, nil
}

func pubkeyField(fields map[string]idl.Value, name string) (solana.PublicKey, error) {
	v, ok := fields[name].(idl.Pubkey)
	if !ok {
		return solana.PublicKey{}, fieldErr(name, "publicKey")
	}
	return solana.PublicKey(v), nil
}

func i64Field(fields map[string]idl.Value, name string) (int64, error) {
	v, ok := fields[name].(idl.I64)
	if !ok {
		return 0, fieldErr(name, "i64")
	}
	return v.Int64(), nil
}

// ipfsJobField reads the 34-byte `array<u8,34>` multihash blob a job
// account's ipfsJob field decodes to.
func ipfsJobField(fields map[string]idl.Value, name string) ([34]byte, error) {
	var out [34]byte
	arr, ok := fields[name].(idl.ArrayValue)
	if !ok || len(arr) != 34 {
		return out, fieldErr(name, "array<u8,34>")
	}
	for i, v := range arr {
		b, ok := v.(idl.U8)
		if !ok {
			return out, fieldErr(name, "array<u8,34>")
		}
		out[i] = byte(b)
	}
	return out, nil
}

func u8Field(fields map[string]idl.Value, name string) (uint8, error) {
	v, ok := fields[name].(idl.U8)
	if !ok {
		return 0, fieldErr(name, "u8")
	}
	return uint8(v), nil
}

func fieldErr(name, want string) error {
	return &decodeFieldError{name: name, want: want}
}

type decodeFieldError struct {
	name string
	want string
}

func (e *decodeFieldError) Error() string {
	return "domain: field " + e.name + " missing or not a " + e.want
}
