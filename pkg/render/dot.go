// Package render converts extracted sub-graphs to Graphviz DOT text and
// SVG for quick inspection outside the web viewer.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pacscope/pacscope/pkg/pkggraph"
)

// Edge type names assigned by [Labeler].
const (
	EdgeTypeDepends  = "depends"
	EdgeTypeOptional = "optional"
	EdgeTypeBroken   = "broken"
)

// Labeler classifies an edge from its endpoint records: broken when the
// target has no record or is a placeholder, optional when the source
// lists the target only as an optional dependency, depends otherwise.
func Labeler(from, to *pkggraph.PackageRecord) string {
	if to == nil || to.Broken {
		return EdgeTypeBroken
	}
	if from != nil {
		for _, opt := range from.OptionalDependsOn {
			if opt == to.Name {
				return EdgeTypeOptional
			}
		}
	}
	return EdgeTypeDepends
}

// ToDOT converts a sub-graph to Graphviz DOT format. Node styling comes
// from the record lookup: explicit packages are drawn bold, missing or
// broken ones dashed red. Edges styles follow their assigned type.
func ToDOT(sg pkggraph.Subgraph, lookup func(string) (*pkggraph.PackageRecord, bool)) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pacscope {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, name := range sg.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(nodeAttrs(name, lookup), ", "))
	}

	buf.WriteString("\n")
	for _, e := range sg.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(name string, lookup func(string) (*pkggraph.PackageRecord, bool)) []string {
	r, ok := lookup(name)
	if !ok || r.Broken {
		return []string{
			fmt.Sprintf("label=%q", name),
			"style=\"rounded,dashed\"",
			"color=red",
			"fontcolor=red",
		}
	}

	label := fmt.Sprintf("%s\n%s", r.Name, r.Version)
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if r.Explicit {
		attrs = append(attrs, "penwidth=2")
	}
	if r.Repository == pkggraph.RepoAUR {
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	return attrs
}

func edgeAttrs(e pkggraph.Edge) []string {
	switch e.Type {
	case EdgeTypeOptional:
		return []string{"style=dashed"}
	case EdgeTypeBroken:
		return []string{"style=dashed", "color=red"}
	default:
		return nil
	}
}

// RenderSVG renders DOT text to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
