// Package rpcclient is the thin JSON-RPC wrapper over HTTPS described in
// §4.1: one envelope shape, one set of typed methods, no retry at this
// layer, and no state beyond the endpoint URL and the shared http.Client.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nosana-node/worker/internal/nerrors"
)

// Client talks JSON-RPC 2.0 to a single Solana-style node endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client bound to endpoint with the default 30s transport
// timeout described in §5 ("All RPC reads return within one request
// timeout (default 30s transport)").
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// call builds a {jsonrpc, id, method, params} envelope, POSTs it, and
// decodes the result into out. Transport failures, non-2xx statuses, and
// an `error` field in the response all produce a *nerrors.RpcError
// distinguishing the three kinds.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(request{JSONRPC: "2.0", ID: "1", Method: method, Params: params})
	if err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &nerrors.RpcError{Kind: nerrors.RpcHTTPStatus, Method: method, Status: resp.StatusCode}
	}

	var env response
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: fmt.Errorf("decoding envelope: %w", err)}
	}

	if env.Error != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcJSONRPCError, Method: method, Code: env.Error.Code, Message: env.Error.Message}
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &nerrors.RpcError{Kind: nerrors.RpcTransport, Method: method, Err: fmt.Errorf("decoding result: %w", err)}
	}
	return nil
}
