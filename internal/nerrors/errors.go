// Package nerrors holds the typed error kinds the worker node surfaces,
// per the error handling design: RpcError, Timeout, IdlUnavailable,
// MissingAccount, UnknownIdlType, NoValidBump, SecretMissing, FlowFailed,
// and HealthGate. Each is a small struct so callers can dispatch on kind
// with errors.As instead of string matching.
package nerrors

import "fmt"

// RpcErrorKind classifies why an RPC call failed.
type RpcErrorKind int

const (
	RpcTransport RpcErrorKind = iota
	RpcHTTPStatus
	RpcJSONRPCError
)

func (k RpcErrorKind) String() string {
	switch k {
	case RpcTransport:
		return "transport"
	case RpcHTTPStatus:
		return "http-status"
	case RpcJSONRPCError:
		return "json-rpc-error"
	default:
		return "unknown"
	}
}

// RpcError is returned by internal/rpcclient for any transport failure,
// non-2xx HTTP status, or an `error` field in a JSON-RPC response.
type RpcError struct {
	Kind    RpcErrorKind
	Method  string
	Status  int
	Code    int64
	Message string
	Err     error
}

func (e *RpcError) Error() string {
	switch e.Kind {
	case RpcHTTPStatus:
		return fmt.Sprintf("rpc %s: http status %d", e.Method, e.Status)
	case RpcJSONRPCError:
		return fmt.Sprintf("rpc %s: json-rpc error %d: %s", e.Method, e.Code, e.Message)
	default:
		return fmt.Sprintf("rpc %s: transport error: %v", e.Method, e.Err)
	}
}

func (e *RpcError) Unwrap() error { return e.Err }

// Timeout is returned when a bounded poll (await_tx) exhausts its retries.
type Timeout struct {
	Op      string
	Tries   int
	PollMs  int
}

func (e *Timeout) Error() string {
	return fmt.Sprintf("%s: timed out after %d tries at %dms", e.Op, e.Tries, e.PollMs)
}

// IdlUnavailable is returned when an IDL account is missing or empty.
type IdlUnavailable struct {
	Program string
	Network string
}

func (e *IdlUnavailable) Error() string {
	return fmt.Sprintf("idl unavailable for program %s on %s", e.Program, e.Network)
}

// MissingAccount is returned when an instruction's account list names an
// account the caller never supplied.
type MissingAccount struct {
	Instruction string
	Name        string
}

func (e *MissingAccount) Error() string {
	return fmt.Sprintf("missing account %q for instruction %q", e.Name, e.Instruction)
}

// UnknownIdlType is returned when a type tag can't be sized, encoded, or
// decoded because it doesn't match any known primitive or compound shape.
type UnknownIdlType struct {
	Type interface{}
}

func (e *UnknownIdlType) Error() string {
	return fmt.Sprintf("unknown idl type: %#v", e.Type)
}

// NoValidBump is returned when no bump from 255 down to 0 produces an
// off-curve address. Cryptographically unreachable in practice.
type NoValidBump struct {
	Program string
}

func (e *NoValidBump) Error() string {
	return fmt.Sprintf("no valid pda bump found under program %s", e.Program)
}

// SecretMissing is returned when a requested secret key isn't present in
// the map returned by GET /secrets. Never carries the value.
type SecretMissing struct {
	Key string
}

func (e *SecretMissing) Error() string {
	return fmt.Sprintf("secret missing: %s", e.Key)
}

// FlowFailed is returned when a flow's git stage recorded an error tag.
type FlowFailed struct {
	FlowID string
	Stage  string
	Reason string
}

func (e *FlowFailed) Error() string {
	return fmt.Sprintf("flow %s failed at %s: %s", e.FlowID, e.Stage, e.Reason)
}

// HealthGate is returned at startup when the node fails the health check
// and the work loop must not start.
type HealthGate struct {
	Reason string
}

func (e *HealthGate) Error() string {
	return fmt.Sprintf("health gate: %s", e.Reason)
}
