package ipfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCIDFromJobBlob_RequiresCIDv0Prefix(t *testing.T) {
	var blob [34]byte
	blob[0] = 0x12
	blob[1] = 0x20
	for i := 2; i < 34; i++ {
		blob[i] = byte(i)
	}

	cid, err := CIDFromJobBlob(blob)
	if err != nil {
		t.Fatalf("CIDFromJobBlob: %v", err)
	}
	if cid == "" {
		t.Fatalf("expected non-empty CID")
	}
}

func TestCIDFromJobBlob_RejectsWrongPrefix(t *testing.T) {
	var blob [34]byte
	blob[0] = 0x00
	blob[1] = 0x20

	if _, err := CIDFromJobBlob(blob); err == nil {
		t.Fatalf("expected error for missing CIDv0 multihash prefix, got nil")
	}
}

func TestFetchJob_ParsesPipelineYAMLFromJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pipeline":"version: \"1\"\nops:\n  - type: container/run\n    image: alpine\n"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	doc, err := client.FetchJob(context.Background(), "QmTest")
	if err != nil {
		t.Fatalf("FetchJob: %v", err)
	}
	if doc.Pipeline.Version != "1" {
		t.Fatalf("Pipeline.Version = %q, want %q", doc.Pipeline.Version, "1")
	}
	if len(doc.Pipeline.Ops) != 1 {
		t.Fatalf("Pipeline.Ops length = %d, want 1", len(doc.Pipeline.Ops))
	}
	if doc.Raw["pipeline"] == nil {
		t.Fatalf("Raw document missing pipeline field")
	}
}

func TestFetchJob_MissingPipelineFieldFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"other":"value"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.FetchJob(context.Background(), "QmTest"); err == nil {
		t.Fatalf("expected error for missing pipeline field, got nil")
	}
}

func TestFetchJob_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.FetchJob(context.Background(), "QmMissing"); err == nil {
		t.Fatalf("expected error for 404 response, got nil")
	}
}
