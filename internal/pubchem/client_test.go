// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/propharvest/pkg/types"
)

// withViewServer points the PUG View base at an httptest server for the
// duration of a test.
func withViewServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	orig := pugViewBase
	pugViewBase = srv.URL
	t.Cleanup(func() {
		pugViewBase = orig
		srv.Close()
	})
	return srv
}

func recordHandler(t *testing.T, records map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := records[r.URL.Path]; ok {
			fmt.Fprint(w, body)
			return
		}
		http.NotFound(w, r)
	})
}

func TestFetchCompound(t *testing.T) {
	withViewServer(t, recordHandler(t, map[string]string{
		"/compound/2244/JSON": sampleRecordJSON,
	}))

	dataDir := t.TempDir()
	cfg := testFetchConfig()
	cfg.DataDir = dataDir

	var out bytes.Buffer
	compound, skipped, err := FetchCompound(context.Background(), http.DefaultClient,
		InputEntry{CID: 2244, Name: "aspirin"}, cfg, &out)
	if err != nil {
		t.Fatalf("FetchCompound failed: %v", err)
	}
	if skipped {
		t.Error("first fetch reported as skipped")
	}

	if compound.CID != 2244 {
		t.Errorf("CID = %d, want 2244", compound.CID)
	}
	if compound.RecordTitle != "Aspirin" {
		t.Errorf("RecordTitle = %q, want %q", compound.RecordTitle, "Aspirin")
	}
	if compound.Status != types.FetchDone {
		t.Errorf("Status = %q, want %q", compound.Status, types.FetchDone)
	}

	recordPath := filepath.Join(dataDir, RecordsDir, "2244.json")
	if _, err := os.Stat(recordPath); err != nil {
		t.Errorf("record file not written: %v", err)
	}
	metaPath := filepath.Join(dataDir, MetadataDir, "2244.yaml")
	if _, err := os.Stat(metaPath); err != nil {
		t.Errorf("metadata file not written: %v", err)
	}

	if !strings.Contains(out.String(), "fetching: 2244") {
		t.Errorf("output missing fetch line: %q", out.String())
	}
}

func TestFetchCompoundSkipsExisting(t *testing.T) {
	// The record is already on disk; no request may go out.
	withViewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s", r.URL.Path)
	}))

	dataDir := t.TempDir()
	cfg := testFetchConfig()
	cfg.DataDir = dataDir

	recordsDir := filepath.Join(dataDir, RecordsDir)
	if err := os.MkdirAll(recordsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(recordsDir, "2244.json"), []byte(sampleRecordJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	compound, skipped, err := FetchCompound(context.Background(), http.DefaultClient,
		InputEntry{CID: 2244}, cfg, &out)
	if err != nil {
		t.Fatalf("FetchCompound failed: %v", err)
	}
	if !skipped {
		t.Error("existing record not reported as skipped")
	}
	if compound.Status != types.FetchSkipped {
		t.Errorf("Status = %q, want %q", compound.Status, types.FetchSkipped)
	}
	if !strings.Contains(out.String(), "skipped: 2244") {
		t.Errorf("output missing skip line: %q", out.String())
	}
}

func TestFetchCompoundSkipReadsMetadata(t *testing.T) {
	// When metadata from an earlier run exists, the skip path returns it
	// so the title survives re-runs.
	dataDir := t.TempDir()
	cfg := testFetchConfig()
	cfg.DataDir = dataDir

	for _, dir := range []string{RecordsDir, MetadataDir} {
		if err := os.MkdirAll(filepath.Join(dataDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dataDir, RecordsDir, "2244.json"), []byte(sampleRecordJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	prev := &types.Compound{CID: 2244, Identifier: "2244", RecordTitle: "Aspirin", Status: types.FetchDone}
	if err := writeMetadata(prev, filepath.Join(dataDir, MetadataDir, "2244.yaml")); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	compound, skipped, err := FetchCompound(context.Background(), http.DefaultClient,
		InputEntry{CID: 2244}, cfg, &out)
	if err != nil {
		t.Fatalf("FetchCompound failed: %v", err)
	}
	if !skipped {
		t.Error("expected skip")
	}
	if compound.RecordTitle != "Aspirin" {
		t.Errorf("RecordTitle = %q, want title from stored metadata", compound.RecordTitle)
	}
}

func TestFetchCompoundNotFound(t *testing.T) {
	withViewServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	cfg := testFetchConfig()
	cfg.DataDir = t.TempDir()

	var out bytes.Buffer
	_, _, err := FetchCompound(context.Background(), http.DefaultClient, InputEntry{CID: 99999999}, cfg, &out)
	if !isNotFound(err) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchBatch(t *testing.T) {
	withViewServer(t, recordHandler(t, map[string]string{
		"/compound/2244/JSON": sampleRecordJSON,
		"/compound/702/JSON":  `{"Record": {"RecordNumber": 702, "RecordTitle": "Ethanol"}}`,
	}))
	// Name resolution for the failing entry finds nothing anywhere.
	withPUGServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	dataDir := t.TempDir()
	cfg := testFetchConfig()
	cfg.DataDir = dataDir

	entries := []InputEntry{
		{CID: 2244, Name: "aspirin"},
		{Name: "unobtainium"},
		{CID: 702, Name: "ethanol"},
	}

	var out bytes.Buffer
	result := FetchBatch(context.Background(), http.DefaultClient, entries, cfg, &out)

	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2", result.Fetched)
	}
	if result.NotFound != 1 {
		t.Errorf("NotFound = %d, want 1", result.NotFound)
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if len(result.Compounds) != 3 {
		t.Fatalf("compounds = %d, want 3", len(result.Compounds))
	}
	// The failing entry keeps its place in the list.
	if result.Compounds[1].Status != types.FetchNotFound {
		t.Errorf("middle compound status = %q, want %q", result.Compounds[1].Status, types.FetchNotFound)
	}
	if !strings.Contains(out.String(), "not found: unobtainium") {
		t.Errorf("output missing the not-found line: %q", out.String())
	}
	if !strings.Contains(out.String(), "2 fetched, 0 skipped, 1 not found, 0 failed") {
		t.Errorf("output missing the batch summary: %q", out.String())
	}

	// The summary file feeds downstream stages.
	byID, err := ReadSummary(dataDir)
	if err != nil {
		t.Fatalf("ReadSummary failed: %v", err)
	}
	if len(byID) != 2 {
		t.Fatalf("summary compounds = %d, want 2", len(byID))
	}
	if byID[2244] == nil || byID[2244].RecordTitle != "Aspirin" {
		t.Errorf("summary entry for 2244 = %+v", byID[2244])
	}
}

func TestBatchResultHasFailures(t *testing.T) {
	if (BatchResult{NotFound: 1}).HasFailures() {
		t.Error("not-found alone should not count as failure")
	}
	if !(BatchResult{Failed: 1}).HasFailures() {
		t.Error("failed entries should report as failures")
	}
}

func TestReadSummaryMissingFile(t *testing.T) {
	byID, err := ReadSummary(t.TempDir())
	if err != nil {
		t.Fatalf("ReadSummary failed: %v", err)
	}
	if len(byID) != 0 {
		t.Errorf("summary = %v, want empty", byID)
	}
}
