package pkggraph

import (
	"slices"

	"github.com/pacscope/pacscope/pkg/errors"
)

// =============================================================================
// Directions
// =============================================================================

// Direction selects which edge sets a traversal follows.
type Direction int

const (
	// DirectionForward follows DependsOn edges (what a package needs).
	DirectionForward Direction = iota
	// DirectionReverse follows RequiredBy edges (what needs a package).
	DirectionReverse
	// DirectionBoth unions the forward and reverse closures. Only valid
	// for sub-graph extraction, not for single-direction traversal.
	DirectionBoth
)

// String returns the direction's wire/CLI name.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionReverse:
		return "reverse"
	default:
		return "both"
	}
}

// ParseDirection converts a CLI/query-string value to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return DirectionForward, nil
	case "reverse":
		return DirectionReverse, nil
	case "both", "":
		return DirectionBoth, nil
	}
	return DirectionBoth, errors.New(errors.ErrCodeInvalidArgument, "unknown direction: %q (want forward, reverse or both)", s)
}

// =============================================================================
// Broken-dependency synthesis
// =============================================================================

// ResolveBroken materializes the canonical node list for a graph.
//
// Every DependsOn/OptionalDependsOn target that is not itself a node gets
// exactly one synthetic placeholder record (Broken=true, Version
// "missing"), regardless of how many records refer to it. RequiredBy
// entries naming packages absent from the graph are dropped from the
// returned copies of real records: a real node never claims an edge from
// a name that is not a node, but keeps its DependsOn edge to a synthetic
// one. The source graph is not modified.
//
// The result is sorted alphabetically.
func ResolveBroken(g *Graph) []*PackageRecord {
	nodes := make([]*PackageRecord, 0, g.Len())
	dangling := make(map[string]struct{})

	for _, name := range g.Names() {
		r, _ := g.Record(name)
		c := r.Clone()

		c.RequiredBy = slices.DeleteFunc(c.RequiredBy, func(dep string) bool {
			return !g.Has(dep)
		})

		for _, dep := range c.DependsOn {
			if !g.Has(dep) {
				dangling[dep] = struct{}{}
			}
		}
		for _, dep := range c.OptionalDependsOn {
			if !g.Has(dep) {
				dangling[dep] = struct{}{}
			}
		}

		nodes = append(nodes, c)
	}

	for name := range dangling {
		nodes = append(nodes, &PackageRecord{
			Name:    name,
			Version: VersionMissing,
			Broken:  true,
		})
	}

	SortNodes(nodes)
	return nodes
}

// =============================================================================
// Orphans
// =============================================================================

// Orphans returns the records that were installed as dependencies but are
// no longer required by anything. Broken placeholders are never orphans.
// Call on the output of [ResolveBroken] so that dangling RequiredBy
// entries do not mask genuinely orphaned packages.
func Orphans(nodes []*PackageRecord) []*PackageRecord {
	var out []*PackageRecord
	for _, r := range nodes {
		if !r.Explicit && !r.Broken && len(r.RequiredBy) == 0 {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// Traversal
// =============================================================================

// Closure returns every name reachable from start by repeatedly following
// the edge set selected by dir, including start itself. Each name is
// visited at most once. Names without a record (dangling edge targets)
// are included in the result but not expanded. The result is sorted.
//
// dir must be DirectionForward or DirectionReverse.
func Closure(g *Graph, start string, dir Direction) []string {
	visited := map[string]struct{}{start: {}}
	stack := []string{start}

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		r, ok := g.Record(name)
		if !ok {
			continue
		}

		next := r.DependsOn
		if dir == DirectionReverse {
			next = r.RequiredBy
		}
		for _, n := range next {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			stack = append(stack, n)
		}
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Sub-graph extraction
// =============================================================================

// Edge is one directed edge of an extracted sub-graph. From is the node
// whose adjacency list produced the edge; Type is assigned by the caller's
// [EdgeLabeler], typically for visual styling.
type Edge struct {
	From string `json:"source"`
	To   string `json:"target"`
	Type string `json:"type,omitempty"`
}

// EdgeLabeler classifies an edge given its two endpoint records. Either
// record may be nil when the endpoint is a dangling name with no record.
type EdgeLabeler func(from, to *PackageRecord) string

// Subgraph is the node set and edge list extracted around a focal package.
type Subgraph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// ExtractSubgraph computes the sub-graph around focus.
//
// The node set is the union of the single-direction closures selected by
// dir. The edge list re-scans each included node's DependsOn (when dir
// includes forward) and RequiredBy (when dir includes reverse) restricted
// to endpoints inside the node set, deduplicated by ordered (From, To)
// pair. A forward edge A→B and a reverse edge B→A are distinct.
//
// An unknown focal name yields an empty sub-graph, not an error.
func ExtractSubgraph(g *Graph, focus string, dir Direction, label EdgeLabeler) Subgraph {
	if !g.Has(focus) {
		return Subgraph{Nodes: []string{}, Edges: []Edge{}}
	}

	included := make(map[string]struct{})
	if dir == DirectionForward || dir == DirectionBoth {
		for _, name := range Closure(g, focus, DirectionForward) {
			included[name] = struct{}{}
		}
	}
	if dir == DirectionReverse || dir == DirectionBoth {
		for _, name := range Closure(g, focus, DirectionReverse) {
			included[name] = struct{}{}
		}
	}

	nodes := make([]string, 0, len(included))
	for name := range included {
		nodes = append(nodes, name)
	}
	slices.Sort(nodes)

	seen := make(map[[2]string]struct{})
	edges := []Edge{}
	for _, name := range nodes {
		r, ok := g.Record(name)
		if !ok {
			continue
		}
		if dir == DirectionForward || dir == DirectionBoth {
			edges = appendEdges(g, edges, seen, included, name, r.DependsOn, label)
		}
		if dir == DirectionReverse || dir == DirectionBoth {
			edges = appendEdges(g, edges, seen, included, name, r.RequiredBy, label)
		}
	}

	return Subgraph{Nodes: nodes, Edges: edges}
}

func appendEdges(g *Graph, edges []Edge, seen map[[2]string]struct{}, included map[string]struct{}, from string, targets []string, label EdgeLabeler) []Edge {
	for _, to := range targets {
		if _, ok := included[to]; !ok {
			continue
		}
		key := [2]string{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		e := Edge{From: from, To: to}
		if label != nil {
			src, _ := g.Record(from)
			dst, _ := g.Record(to)
			e.Type = label(src, dst)
		}
		edges = append(edges, e)
	}
	return edges
}

// =============================================================================
// Counting
// =============================================================================

// Counts breaks a node list down by how its members entered the system.
type Counts struct {
	Explicit   int `json:"explicit"`
	Dependency int `json:"dependency"`
	Broken     int `json:"broken"`
	Total      int `json:"total"`
}

// Count tallies a node list. Explicit excludes broken placeholders, and
// Dependency is defined as Total − Explicit − Broken, so the four fields
// always sum up consistently.
func Count(nodes []*PackageRecord) Counts {
	c := Counts{Total: len(nodes)}
	for _, r := range nodes {
		switch {
		case r.Broken:
			c.Broken++
		case r.Explicit:
			c.Explicit++
		}
	}
	c.Dependency = c.Total - c.Explicit - c.Broken
	return c
}
