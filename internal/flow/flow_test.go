package flow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlow_FinishedRequiresResultIPFS(t *testing.T) {
	f := &Flow{FlowID: "abc"}
	if f.Finished() {
		t.Fatalf("empty flow reported finished")
	}
	f.Results.ResultIPFS = "Qm..."
	if !f.Finished() {
		t.Fatalf("flow with result ipfs not reported finished")
	}
}

func TestFlow_GitFailedChecksEitherStage(t *testing.T) {
	f := &Flow{FlowID: "abc"}
	if f.GitFailed() {
		t.Fatalf("flow with no git stages reported git-failed")
	}

	f.Results.Clone = &GitStageResult{Error: "clone_timeout"}
	if !f.GitFailed() {
		t.Fatalf("flow with failed clone stage not reported git-failed")
	}

	f2 := &Flow{FlowID: "def"}
	f2.Results.Checkout = &GitStageResult{Error: "checkout_conflict"}
	if !f2.GitFailed() {
		t.Fatalf("flow with failed checkout stage not reported git-failed")
	}
}

func TestGitStageResult_FailedHandlesNilReceiver(t *testing.T) {
	var g *GitStageResult
	if g.Failed() {
		t.Fatalf("nil *GitStageResult reported failed")
	}
}

func TestNewFlowID_ProducesUniqueIDs(t *testing.T) {
	a := NewFlowID()
	b := NewFlowID()
	if a == "" || b == "" {
		t.Fatalf("NewFlowID returned empty string")
	}
	if a == b {
		t.Fatalf("two calls to NewFlowID produced the same id")
	}
}

func TestFileStore_LoadMissingFlowReturnsEmptyFlow(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	f, err := store.Load(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.FlowID != "never-saved" || f.Finished() {
		t.Fatalf("Load for missing flow = %+v, want empty unfinished flow", f)
	}
}

func TestFileStore_SaveThenLoadRoundTrips(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	f := &Flow{FlowID: "flow-1"}
	f.Results.InputJobAddr = "jobAddr"
	f.Results.ResultIPFS = "QmResult"
	f.Results.Clone = &GitStageResult{}

	if err := store.Save(context.Background(), f); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(context.Background(), "flow-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Results.InputJobAddr != "jobAddr" || loaded.Results.ResultIPFS != "QmResult" {
		t.Fatalf("round-tripped flow = %+v, want matching results", loaded)
	}
	if !loaded.Finished() {
		t.Fatalf("round-tripped flow lost its finished state")
	}
}

func TestHTTPEngine_TriggerPostsToFlowEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL)
	if err := engine.Trigger(context.Background(), "flow-1", map[string]interface{}{"job": "abc"}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if gotPath != "/flows/flow-1/trigger" {
		t.Fatalf("path = %q, want /flows/flow-1/trigger", gotPath)
	}
}

func TestHTTPEngine_HandleEffectPostsToEffectEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL)
	if err := engine.HandleEffect(context.Background(), "flow-1", "complete-job", nil); err != nil {
		t.Fatalf("HandleEffect: %v", err)
	}
	if gotPath != "/flows/flow-1/effects/complete-job" {
		t.Fatalf("path = %q, want /flows/flow-1/effects/complete-job", gotPath)
	}
}

func TestHTTPEngine_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine := NewHTTPEngine(srv.URL)
	if err := engine.Trigger(context.Background(), "flow-1", nil); err == nil {
		t.Fatalf("expected error for 500 response, got nil")
	}
}
