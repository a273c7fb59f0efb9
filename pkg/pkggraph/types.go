// Package pkggraph implements the package dependency graph: the record
// model, assembly from collected per-package data, and the pure query
// operations used for selection scoping and interactive visualization.
//
// A [Graph] is built once per collection run by [Assemble] and is frozen
// afterwards: query operations never mutate it, they materialize new,
// smaller derived structures (closures, sub-graphs, cleaned node lists).
package pkggraph

import (
	"slices"
)

// Well-known field values for records with incomplete metadata.
const (
	VersionUnknown = "unknown" // version could not be determined
	VersionMissing = "missing" // synthetic record for an absent package

	RepoUnknown = "unknown" // origin repository could not be determined
	RepoAUR     = "aur"     // foreign/unofficial origin
)

// PackageRecord is one installed package with its metadata and the four
// edge sets collected from the package manager. Edge sets contain names
// only; a target need not exist in the graph — that is exactly the broken
// dependency condition, detected by [ResolveBroken] rather than prevented.
type PackageRecord struct {
	Name         string // unique key, pacman naming rules
	Version      string // opaque, VersionUnknown if unavailable
	Explicit     bool   // installed directly vs. pulled in as a dependency
	Repository   string // origin repo, RepoAUR for foreign, or RepoUnknown
	LocallyBuilt bool   // foreign-origin package that exists in a known repo
	URL          string // upstream homepage, may be empty

	DependsOn          []string // mandatory forward edges
	RequiredBy         []string // mandatory reverse edges
	OptionalDependsOn  []string
	OptionalRequiredBy []string

	// Broken marks synthetic placeholder records created for dependency
	// targets that are not present in the graph. A real collected package
	// is never Broken.
	Broken bool
}

// Clone returns a deep copy of the record. Derived views that need to
// adjust edge lists clone first so the source graph stays immutable.
func (r *PackageRecord) Clone() *PackageRecord {
	c := *r
	c.DependsOn = slices.Clone(r.DependsOn)
	c.RequiredBy = slices.Clone(r.RequiredBy)
	c.OptionalDependsOn = slices.Clone(r.OptionalDependsOn)
	c.OptionalRequiredBy = slices.Clone(r.OptionalRequiredBy)
	return &c
}

// Graph is an immutable name → record mapping produced by [Assemble].
type Graph struct {
	records map[string]*PackageRecord
}

// Record returns the record for name, or false if name is not a node.
func (g *Graph) Record(name string) (*PackageRecord, bool) {
	r, ok := g.records[name]
	return r, ok
}

// Has reports whether name is a node in the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.records[name]
	return ok
}

// Len returns the number of records.
func (g *Graph) Len() int { return len(g.records) }

// Names returns all record names in alphabetical order.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.records))
	for name := range g.records {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Records returns all records in alphabetical name order.
func (g *Graph) Records() []*PackageRecord {
	nodes := make([]*PackageRecord, 0, len(g.records))
	for _, r := range g.records {
		nodes = append(nodes, r)
	}
	SortNodes(nodes)
	return nodes
}

// SortNodes sorts a node list alphabetically by name, in place. This is
// the canonical output order for the assembled graph and any derived view.
func SortNodes(nodes []*PackageRecord) {
	slices.SortStableFunc(nodes, func(a, b *PackageRecord) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
}
