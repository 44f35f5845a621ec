// Package flow treats the workflow/pipeline execution engine as an
// opaque collaborator, per §1's explicit out-of-scope boundary and §9's
// note: "trigger(flow_id), load(flow_id) -> Flow, save(flow_id, Flow),
// handle_effect(name, flow) -> Flow. Do not re-specify its internals."
// This package specifies only the messages sent to it and the result
// shape read back.
package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Results is the subset of a flow's stored state the core reads, per §3:
// `{:results {:input/job-addr, :input/run-addr, :result/ipfs, :clone,
// :checkout}}`. GitStageResult carries either nil (not yet run), or an
// error tag string if that stage failed.
type Results struct {
	InputJobAddr string         `json:"input/job-addr"`
	InputRunAddr string         `json:"input/run-addr"`
	ResultIPFS   string         `json:"result/ipfs"`
	Clone        *GitStageResult `json:"clone"`
	Checkout     *GitStageResult `json:"checkout"`
}

// GitStageResult mirrors one git-operator stage outcome; an Error tag
// means the flow is "git-failed" for that stage.
type GitStageResult struct {
	Error string `json:"error,omitempty"`
}

// Failed reports whether this stage recorded an error tag.
func (g *GitStageResult) Failed() bool { return g != nil && g.Error != "" }

// Flow is the opaque record owned by the external engine, addressable by
// FlowID. The core only ever inspects Results.
type Flow struct {
	FlowID  string  `json:"flow_id"`
	Results Results `json:"results"`
}

// Finished reports whether the flow produced a result IPFS hash, per §3:
// "a flow is finished iff :result/ipfs is present".
func (f *Flow) Finished() bool { return f.Results.ResultIPFS != "" }

// GitFailed reports whether either git stage recorded an error tag, per
// §3: "git-failed iff :clone or :checkout recorded an error tag".
func (f *Flow) GitFailed() bool { return f.Results.Clone.Failed() || f.Results.Checkout.Failed() }

// Engine is the signalling side of the flow collaborator: starting a flow
// and invoking a named compensating effect on it (e.g. "complete-job"
// per §4.7's git-failed recovery path).
type Engine interface {
	Trigger(ctx context.Context, flowID string, inputs map[string]interface{}) error
	HandleEffect(ctx context.Context, flowID, effectName string, args map[string]interface{}) error
}

// Store is the persistence side of the flow collaborator: loading and
// saving a flow's state by id.
type Store interface {
	Load(ctx context.Context, flowID string) (*Flow, error)
	Save(ctx context.Context, f *Flow) error
}

// NewFlowID generates a fresh flow identifier for a newly claimed run.
func NewFlowID() string {
	return uuid.NewString()
}

// HTTPEngine signals a flow engine reachable over HTTP: one endpoint to
// trigger a flow, one to invoke a named effect on it.
type HTTPEngine struct {
	baseURL string
	http    *http.Client
}

// NewHTTPEngine returns an Engine that POSTs trigger/effect messages to
// baseURL (an operator-configured flow-engine URL; the flow engine itself
// is out of scope per §1).
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

func (e *HTTPEngine) Trigger(ctx context.Context, flowID string, inputs map[string]interface{}) error {
	return e.post(ctx, fmt.Sprintf("%s/flows/%s/trigger", e.baseURL, flowID), inputs)
}

func (e *HTTPEngine) HandleEffect(ctx context.Context, flowID, effectName string, args map[string]interface{}) error {
	return e.post(ctx, fmt.Sprintf("%s/flows/%s/effects/%s", e.baseURL, flowID, effectName), args)
}

func (e *HTTPEngine) post(ctx context.Context, url string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("flow: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("flow: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("flow: request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("flow: %s returned status %d", url, resp.StatusCode)
	}
	return nil
}

// FileStore persists flow state as one JSON file per flow under dir, the
// simplest Store implementation that satisfies §5's "flow store handle
// shared by reference, safe for concurrent read" resource note without
// requiring an external database for a single-process worker node.
type FileStore struct {
	dir string
}

// NewFileStore returns a Store rooted at dir, creating it if absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("flow: creating store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(flowID string) string {
	return filepath.Join(s.dir, flowID+".json")
}

func (s *FileStore) Load(ctx context.Context, flowID string) (*Flow, error) {
	data, err := os.ReadFile(s.path(flowID))
	if os.IsNotExist(err) {
		return &Flow{FlowID: flowID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("flow: reading state for %s: %w", flowID, err)
	}

	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("flow: parsing state for %s: %w", flowID, err)
	}
	return &f, nil
}

func (s *FileStore) Save(ctx context.Context, f *Flow) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("flow: encoding state for %s: %w", f.FlowID, err)
	}
	if err := os.WriteFile(s.path(f.FlowID), data, 0o644); err != nil {
		return fmt.Errorf("flow: writing state for %s: %w", f.FlowID, err)
	}
	return nil
}
