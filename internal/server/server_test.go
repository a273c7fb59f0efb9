package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	snap := &snapshot.Snapshot{
		ID:            "fixture",
		OS:            "arch",
		Hostname:      "box",
		Timestamp:     time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		SelectionMode: "all",
		Packages: map[string]snapshot.Package{
			"firefox": {
				Explicit:  true,
				Version:   "129.0-1",
				Repo:      "extra",
				DependsOn: []string{"gtk3"},
			},
			"gtk3": {
				Version:    "3.24-1",
				Repo:       "extra",
				DependsOn:  []string{"missing-lib"},
				RequiredBy: []string{"firefox"},
			},
			"stale-tool": {
				Version: "1.0-1",
				Repo:    "extra",
			},
		},
	}
	return New(snap, log.New(io.Discard))
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, body
}

func TestSnapshotEndpoint(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/snapshot")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["id"] != "fixture" {
		t.Errorf("id = %v", body["id"])
	}
	if body["packages"] != float64(3) {
		t.Errorf("packages = %v, want 3", body["packages"])
	}
}

func TestGraphEndpointSynthesizesBroken(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	nodes := body["nodes"].([]any)
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4 (3 packages + 1 broken)", len(nodes))
	}

	var broken map[string]any
	for _, n := range nodes {
		node := n.(map[string]any)
		if node["name"] == "missing-lib" {
			broken = node
		}
	}
	if broken == nil {
		t.Fatal("missing-lib not synthesized")
	}
	if broken["broken"] != true {
		t.Error("missing-lib not flagged broken")
	}
	if broken["version"] != "missing" {
		t.Errorf("broken version = %v", broken["version"])
	}

	counts := body["counts"].(map[string]any)
	if counts["total"] != float64(4) {
		t.Errorf("total = %v, want 4", counts["total"])
	}
	if counts["broken"] != float64(1) {
		t.Errorf("broken = %v, want 1", counts["broken"])
	}
}

func TestSubgraphEndpoint(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/subgraph?focus=firefox&direction=forward")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	nodes := body["nodes"].([]any)
	if len(nodes) != 3 {
		t.Errorf("got %d nodes, want 3 (firefox, gtk3, missing-lib)", len(nodes))
	}
	edges := body["edges"].([]any)
	if len(edges) != 2 {
		t.Errorf("got %d edges, want 2", len(edges))
	}
}

func TestSubgraphUnknownFocus(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/subgraph?focus=nope&direction=both")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(body["nodes"].([]any)) != 0 {
		t.Error("unknown focus should yield empty nodes")
	}
}

func TestSubgraphBadRequests(t *testing.T) {
	h := testServer(t).Handler()

	rec, _ := get(t, h, "/api/subgraph")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing focus: status = %d", rec.Code)
	}

	rec, _ = get(t, h, "/api/subgraph?focus=firefox&direction=sideways")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: status = %d", rec.Code)
	}
}

func TestOrphansEndpoint(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/orphans")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	orphans := body["orphans"].([]any)
	if len(orphans) != 1 {
		t.Fatalf("got %d orphans, want 1", len(orphans))
	}
	if name := orphans[0].(map[string]any)["name"]; name != "stale-tool" {
		t.Errorf("orphan = %v, want stale-tool", name)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := testServer(t).Handler()

	rec, body := get(t, h, "/api/search?q=FIRE")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	names := body["names"].([]any)
	if len(names) != 1 || names[0] != "firefox" {
		t.Errorf("names = %v, want [firefox]", names)
	}
}
