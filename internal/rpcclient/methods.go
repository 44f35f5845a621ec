package rpcclient

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/nosana-node/worker/internal/idl"
)

// GetBalance returns the lamport balance of pubkey.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	var out struct {
		Value uint64 `json:"value"`
	}
	err := c.call(ctx, "getBalance", []interface{}{pubkey.String()}, &out)
	return out.Value, err
}

// TokenAccountBalance mirrors the `{amount, decimals}` shape Solana
// returns for getTokenAccountBalance.
type TokenAccountBalance struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
}

// GetTokenAccountBalance returns the SPL token balance held by a token
// account (not a mint, not an owner - the token account itself).
func (c *Client) GetTokenAccountBalance(ctx context.Context, tokenAccount solana.PublicKey) (*TokenAccountBalance, error) {
	var out struct {
		Value TokenAccountBalance `json:"value"`
	}
	err := c.call(ctx, "getTokenAccountBalance", []interface{}{tokenAccount.String()}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Value, nil
}

// accountInfoValue is the `{data: [base64, "base64"], owner, lamports}`
// shape getAccountInfo returns with {encoding: "base64"} per §6.
type accountInfoValue struct {
	Data     [2]string `json:"data"`
	Owner    string    `json:"owner"`
	Lamports uint64    `json:"lamports"`
}

// GetAccountData fetches an account's raw data, satisfying
// idl.AccountReader so the IDL codec can fetch IDL accounts through this
// same client.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	var out struct {
		Value *accountInfoValue `json:"value"`
	}
	params := []interface{}{pubkey.String(), map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(out.Value.Data[0])
}

// GetAccountInfo returns the full account-info envelope, for callers that
// also need owner/lamports (the health check's NFT ownership test uses
// this to confirm the access-NFT account is actually owned by the SPL
// token program, not just to read its balance).
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (owner string, lamports uint64, data []byte, err error) {
	var out struct {
		Value *accountInfoValue `json:"value"`
	}
	params := []interface{}{pubkey.String(), map[string]string{"encoding": "base64"}}
	if err = c.call(ctx, "getAccountInfo", params, &out); err != nil {
		return "", 0, nil, err
	}
	if out.Value == nil {
		return "", 0, nil, nil
	}
	data, err = base64.StdEncoding.DecodeString(out.Value.Data[0])
	return out.Value.Owner, out.Value.Lamports, data, err
}

// ProgramAccount is one entry returned by getProgramAccounts.
type ProgramAccount struct {
	Pubkey solana.PublicKey
	Data   []byte
	Owner  string
}

// GetProgramAccounts scans program for accounts whose 8-byte
// discriminator matches accountType and whose fields match every entry
// in equals, via the IDL-derived memcmp offsets in idl.BuildMemcmpFilters.
// A filter referencing a field absent from the account type fails before
// any RPC call is issued (§8 boundary behavior).
func (c *Client) GetProgramAccounts(ctx context.Context, program solana.PublicKey, def *idl.IDL, accountType string, equals map[string]idl.Value) ([]ProgramAccount, error) {
	disc := idl.AccountDiscriminator(accountType)

	memcmps, err := idl.BuildMemcmpFilters(def, accountType, equals)
	if err != nil {
		return nil, err
	}

	filters := []map[string]interface{}{
		{"memcmp": map[string]interface{}{"offset": 0, "bytes": encodeFilterBytes(disc[:])}},
	}
	for _, f := range memcmps {
		filters = append(filters, map[string]interface{}{
			"memcmp": map[string]interface{}{"offset": f.Offset, "bytes": encodeFilterBytes(f.Bytes)},
		})
	}

	params := []interface{}{
		program.String(),
		map[string]interface{}{"encoding": "base64", "filters": filters},
	}

	var raw []struct {
		Pubkey  string            `json:"pubkey"`
		Account accountInfoValue  `json:"account"`
	}
	if err := c.call(ctx, "getProgramAccounts", params, &raw); err != nil {
		return nil, err
	}

	out := make([]ProgramAccount, 0, len(raw))
	for _, r := range raw {
		pk, err := solana.PublicKeyFromBase58(r.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("rpcclient: bad pubkey in getProgramAccounts result: %w", err)
		}
		data, err := base64.StdEncoding.DecodeString(r.Account.Data[0])
		if err != nil {
			return nil, fmt.Errorf("rpcclient: bad account data in getProgramAccounts result: %w", err)
		}
		out = append(out, ProgramAccount{Pubkey: pk, Data: data, Owner: r.Account.Owner})
	}
	return out, nil
}

func encodeFilterBytes(b []byte) string {
	return base58.Encode(b)
}

// GetLatestBlockhash fetches the blockhash a new transaction should use.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var out struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", []interface{}{map[string]string{"commitment": "finalized"}}, &out); err != nil {
		return solana.Hash{}, err
	}
	return solana.HashFromBase58(out.Value.Blockhash)
}

// SendTransaction submits an already-signed, wire-serialized transaction
// (base64) and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, rawBase64 string) (string, error) {
	var sig string
	params := []interface{}{rawBase64, map[string]string{"encoding": "base64"}}
	err := c.call(ctx, "sendTransaction", params, &sig)
	return sig, err
}

// TransactionResult is the subset of getTransaction's response the
// Transaction Builder/Submitter needs: whether the transaction landed and
// whether it failed on-chain.
type TransactionResult struct {
	Slot uint64 `json:"slot"`
	Meta struct {
		Err interface{} `json:"err"`
	} `json:"meta"`
}

// Failed reports whether this transaction's meta.err was non-null.
func (r *TransactionResult) Failed() bool { return r.Meta.Err != nil }

// GetTransaction returns nil, nil if the transaction hasn't landed yet.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	var out *TransactionResult
	params := []interface{}{signature, map[string]interface{}{"encoding": "json", "maxSupportedTransactionVersion": 0}}
	if err := c.call(ctx, "getTransaction", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
