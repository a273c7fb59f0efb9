// Package server exposes the graph query engine over HTTP for the web
// viewer. Every endpoint is a pure read over an immutable snapshot and is
// recomputed per request; the engine is cheap enough that no caching
// layer sits in between.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pacscope/pacscope/pkg/pkggraph"
	"github.com/pacscope/pacscope/pkg/render"
	"github.com/pacscope/pacscope/pkg/snapshot"
)

// Server answers viewer queries against one loaded snapshot.
type Server struct {
	snap   *snapshot.Snapshot
	graph  *pkggraph.Graph
	logger *log.Logger
}

// New creates a Server for the given snapshot.
func New(snap *snapshot.Snapshot, logger *log.Logger) *Server {
	return &Server{
		snap:   snap,
		graph:  snap.Graph(),
		logger: logger,
	}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/graph", s.handleGraph)
		r.Get("/subgraph", s.handleSubgraph)
		r.Get("/orphans", s.handleOrphans)
		r.Get("/counts", s.handleCounts)
		r.Get("/search", s.handleSearch)
	})

	return r
}

// node is the JSON shape of one record in API responses.
type node struct {
	Name               string   `json:"name"`
	Version            string   `json:"version"`
	Explicit           bool     `json:"explicit"`
	Repo               string   `json:"repo"`
	LocallyBuilt       bool     `json:"locally_built"`
	URL                string   `json:"url,omitempty"`
	Broken             bool     `json:"broken,omitempty"`
	DependsOn          []string `json:"depends_on"`
	RequiredBy         []string `json:"required_by"`
	OptionalDependsOn  []string `json:"optional_depends_on"`
	OptionalRequiredBy []string `json:"optional_required_by"`
}

func toNode(r *pkggraph.PackageRecord) node {
	return node{
		Name:               r.Name,
		Version:            r.Version,
		Explicit:           r.Explicit,
		Repo:               r.Repository,
		LocallyBuilt:       r.LocallyBuilt,
		URL:                r.URL,
		Broken:             r.Broken,
		DependsOn:          r.DependsOn,
		RequiredBy:         r.RequiredBy,
		OptionalDependsOn:  r.OptionalDependsOn,
		OptionalRequiredBy: r.OptionalRequiredBy,
	}
}

func toNodes(records []*pkggraph.PackageRecord) []node {
	nodes := make([]node, len(records))
	for i, r := range records {
		nodes[i] = toNode(r)
	}
	return nodes
}

// handleSnapshot returns envelope metadata without the package map.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{
		"id":              s.snap.ID,
		"os":              s.snap.OS,
		"hostname":        s.snap.Hostname,
		"timestamp":       s.snap.Timestamp,
		"shell":           s.snap.Shell,
		"selection_mode":  s.snap.SelectionMode,
		"selection_param": s.snap.SelectionParam,
		"packages":        len(s.snap.Packages),
		"failures":        s.snap.Failures,
	})
}

// handleGraph returns the full node list after broken-dependency
// synthesis, plus its counts.
func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	nodes := pkggraph.ResolveBroken(s.graph)
	s.writeJSON(w, map[string]any{
		"nodes":  toNodes(nodes),
		"counts": pkggraph.Count(nodes),
	})
}

// handleSubgraph extracts the sub-graph around ?focus= in ?direction=.
// An unknown focus yields an empty sub-graph, not an error.
func (s *Server) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	focus := r.URL.Query().Get("focus")
	if focus == "" {
		s.writeError(w, http.StatusBadRequest, "missing focus parameter")
		return
	}
	dir, err := pkggraph.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sg := pkggraph.ExtractSubgraph(s.graph, focus, dir, render.Labeler)

	nodes := make([]node, 0, len(sg.Nodes))
	for _, name := range sg.Nodes {
		if rec, ok := s.graph.Record(name); ok {
			nodes = append(nodes, toNode(rec))
		} else {
			nodes = append(nodes, toNode(&pkggraph.PackageRecord{
				Name:    name,
				Version: pkggraph.VersionMissing,
				Broken:  true,
			}))
		}
	}

	s.writeJSON(w, map[string]any{
		"focus":     focus,
		"direction": dir.String(),
		"nodes":     nodes,
		"edges":     sg.Edges,
	})
}

// handleOrphans returns packages installed as dependencies that nothing
// requires anymore.
func (s *Server) handleOrphans(w http.ResponseWriter, _ *http.Request) {
	nodes := pkggraph.ResolveBroken(s.graph)
	s.writeJSON(w, map[string]any{
		"orphans": toNodes(pkggraph.Orphans(nodes)),
	})
}

// handleCounts returns the explicit/dependency/broken breakdown.
func (s *Server) handleCounts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, pkggraph.Count(pkggraph.ResolveBroken(s.graph)))
}

// handleSearch returns package names containing ?q=, case-insensitive.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))

	matches := []string{}
	for _, name := range s.graph.Names() {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	s.writeJSON(w, map[string]any{"names": matches})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
