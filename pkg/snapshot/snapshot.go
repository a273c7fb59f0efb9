// Package snapshot defines the persisted collection artifact: the
// serialized dependency graph wrapped in an envelope of collection
// metadata. The envelope is what the web viewer consumes and what the
// snapshot stores persist.
//
// The format is human-readable JSON designed for round-trip fidelity:
// collect → export → import yields an equivalent graph.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/pacscope/pacscope/pkg/collect"
	"github.com/pacscope/pacscope/pkg/pkggraph"
)

// Package is the serialized form of one package record. Edge fields are
// name lists sorted alphabetically.
type Package struct {
	Explicit           bool     `json:"explicit" bson:"explicit"`
	Version            string   `json:"version" bson:"version"`
	Repo               string   `json:"repo" bson:"repo"`
	LocallyBuilt       bool     `json:"locally_built" bson:"locally_built"`
	URL                string   `json:"url,omitempty" bson:"url,omitempty"`
	DependsOn          []string `json:"depends_on" bson:"depends_on"`
	RequiredBy         []string `json:"required_by" bson:"required_by"`
	OptionalDependsOn  []string `json:"optional_depends_on" bson:"optional_depends_on"`
	OptionalRequiredBy []string `json:"optional_required_by" bson:"optional_required_by"`
}

// Snapshot is one collection run's artifact: the graph plus the metadata
// describing where and how it was collected.
type Snapshot struct {
	ID             string             `json:"id" bson:"_id"`
	OS             string             `json:"os" bson:"os"`
	Hostname       string             `json:"hostname" bson:"hostname"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	Shell          string             `json:"shell" bson:"shell"`
	SelectionMode  string             `json:"selection_mode" bson:"selection_mode"`
	SelectionParam string             `json:"selection_param,omitempty" bson:"selection_param,omitempty"`
	Packages       map[string]Package `json:"packages" bson:"packages"`
	Failures       []collect.Failure  `json:"failures,omitempty" bson:"failures,omitempty"`
}

// New wraps an assembled graph in a snapshot envelope. The host fields
// come from info, the selection fields record how collection was scoped,
// and failures carries the non-fatal per-package failure report.
func New(g *pkggraph.Graph, info Host, sel collect.Selection, failures []collect.Failure) *Snapshot {
	return &Snapshot{
		ID:             uuid.NewString(),
		OS:             info.OS,
		Hostname:       info.Hostname,
		Timestamp:      time.Now().UTC(),
		Shell:          info.Shell,
		SelectionMode:  string(sel.Mode),
		SelectionParam: selectionParam(sel),
		Packages:       fromGraph(g),
		Failures:       failures,
	}
}

// selectionParam renders the mode's parameter without repeating the mode.
func selectionParam(sel collect.Selection) string {
	switch sel.Mode {
	case collect.ModeAll, "":
		return ""
	default:
		return sel.Describe()
	}
}

// fromGraph serializes every record of a frozen graph.
func fromGraph(g *pkggraph.Graph) map[string]Package {
	packages := make(map[string]Package, g.Len())
	for _, r := range g.Records() {
		packages[r.Name] = Package{
			Explicit:           r.Explicit,
			Version:            r.Version,
			Repo:               r.Repository,
			LocallyBuilt:       r.LocallyBuilt,
			URL:                r.URL,
			DependsOn:          r.DependsOn,
			RequiredBy:         r.RequiredBy,
			OptionalDependsOn:  r.OptionalDependsOn,
			OptionalRequiredBy: r.OptionalRequiredBy,
		}
	}
	return packages
}

// Graph rebuilds the frozen in-memory graph from the serialized packages.
// The foreign-origin flag is recovered from the stored repo and
// locally_built fields: a package is foreign iff it came from "aur" or
// was locally rebuilt.
func (s *Snapshot) Graph() *pkggraph.Graph {
	names := make([]string, 0, len(s.Packages))
	edges := make(map[string]pkggraph.EdgeSets, len(s.Packages))
	meta := pkggraph.Metadata{
		Versions:     make(map[string]string, len(s.Packages)),
		Explicit:     make(map[string]bool, len(s.Packages)),
		Foreign:      make(map[string]bool, len(s.Packages)),
		Repositories: make(map[string]string, len(s.Packages)),
		URLs:         make(map[string]string, len(s.Packages)),
	}

	for name, p := range s.Packages {
		names = append(names, name)
		edges[name] = pkggraph.EdgeSets{
			DependsOn:          p.DependsOn,
			RequiredBy:         p.RequiredBy,
			OptionalDependsOn:  p.OptionalDependsOn,
			OptionalRequiredBy: p.OptionalRequiredBy,
		}
		meta.Versions[name] = p.Version
		meta.Explicit[name] = p.Explicit
		meta.Foreign[name] = p.Repo == pkggraph.RepoAUR || p.LocallyBuilt
		meta.Repositories[name] = p.Repo
		meta.URLs[name] = p.URL
	}

	return pkggraph.Assemble(names, edges, meta)
}
