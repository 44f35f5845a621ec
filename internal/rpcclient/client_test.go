package rpcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nosana-node/worker/internal/nerrors"
)

func TestCall_HTTPStatusNon2xxProducesHTTPStatusKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out interface{}
	err := c.call(context.Background(), "getBalance", nil, &out)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	rpcErr, ok := err.(*nerrors.RpcError)
	if !ok {
		t.Fatalf("expected *nerrors.RpcError, got %T", err)
	}
	if rpcErr.Kind != nerrors.RpcHTTPStatus {
		t.Fatalf("Kind = %v, want RpcHTTPStatus", rpcErr.Kind)
	}
	if rpcErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rpcErr.Status, http.StatusServiceUnavailable)
	}
}

func TestCall_JSONRPCErrorFieldProducesJSONRPCErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"invalid params"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out interface{}
	err := c.call(context.Background(), "getBalance", nil, &out)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	rpcErr, ok := err.(*nerrors.RpcError)
	if !ok {
		t.Fatalf("expected *nerrors.RpcError, got %T", err)
	}
	if rpcErr.Kind != nerrors.RpcJSONRPCError {
		t.Fatalf("Kind = %v, want RpcJSONRPCError", rpcErr.Kind)
	}
	if rpcErr.Code != -32602 || rpcErr.Message != "invalid params" {
		t.Fatalf("Code/Message = %d/%q, want -32602/invalid params", rpcErr.Code, rpcErr.Message)
	}
}

func TestCall_TransportFailureProducesTransportKind(t *testing.T) {
	// A server that closes immediately yields an unreachable endpoint once
	// closed, without requiring any other host to be reachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url)
	var out interface{}
	err := c.call(context.Background(), "getBalance", nil, &out)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	rpcErr, ok := err.(*nerrors.RpcError)
	if !ok {
		t.Fatalf("expected *nerrors.RpcError, got %T", err)
	}
	if rpcErr.Kind != nerrors.RpcTransport {
		t.Fatalf("Kind = %v, want RpcTransport", rpcErr.Kind)
	}
}

func TestCall_SuccessDecodesResultIntoOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":{"value":12345}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(context.Background(), "getBalance", nil, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.Value != 12345 {
		t.Fatalf("Value = %d, want 12345", out.Value)
	}
}
