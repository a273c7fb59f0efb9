package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pacscope/pacscope/pkg/deptree"
	"github.com/pacscope/pacscope/pkg/pkggraph"
	"github.com/pacscope/pacscope/pkg/render"
	"github.com/pacscope/pacscope/pkg/snapshot"
)

// queryOpts holds flags shared by the query subcommands.
type queryOpts struct {
	jsonOut   bool   // machine-readable output
	direction string // subgraph direction
	format    string // subgraph output format
	output    string // subgraph output file
}

// newQueryCmd creates the query command and its subcommands, the read
// side of the engine: every subcommand loads a snapshot file and runs a
// pure graph query against it.
func newQueryCmd() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a collected snapshot",
		Long: `Query runs graph queries against a snapshot file written by collect.

Examples:
  pacscope query counts snap.json
  pacscope query orphans snap.json
  pacscope query broken snap.json
  pacscope query subgraph firefox snap.json --direction forward
  pacscope query subgraph firefox snap.json --format svg -o firefox.svg`,
	}

	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "output JSON instead of text")

	cmd.AddCommand(newCountsCmd(&opts))
	cmd.AddCommand(newOrphansCmd(&opts))
	cmd.AddCommand(newBrokenCmd(&opts))
	cmd.AddCommand(newTreeCmd(&opts))
	cmd.AddCommand(newSubgraphCmd(&opts))

	return cmd
}

func newCountsCmd(opts *queryOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "counts <snapshot>",
		Short: "Show explicit/dependency/broken package counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			snap, nodes, err := loadResolved(args[0])
			if err != nil {
				return err
			}

			counts := pkggraph.Count(nodes)
			if opts.jsonOut {
				return writeJSON(counts)
			}

			printKeyValue("Host", snap.Hostname)
			printKeyValue("Collected", snap.Timestamp.Format("2006-01-02 15:04:05 MST"))
			printKeyValue("Selection", describeSelection(snap))
			printNewline()
			printKeyValue("Explicit", fmt.Sprintf("%d", counts.Explicit))
			printKeyValue("Dependencies", fmt.Sprintf("%d", counts.Dependency))
			printKeyValue("Broken", fmt.Sprintf("%d", counts.Broken))
			printKeyValue("Total", fmt.Sprintf("%d", counts.Total))
			return nil
		},
	}
}

func newOrphansCmd(opts *queryOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans <snapshot>",
		Short: "List dependency packages nothing requires anymore",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			_, nodes, err := loadResolved(args[0])
			if err != nil {
				return err
			}

			orphans := pkggraph.Orphans(nodes)
			if opts.jsonOut {
				return writeJSON(orphans)
			}

			if len(orphans) == 0 {
				printSuccess("No orphaned packages")
				return nil
			}
			printInfo("%d orphaned packages:", len(orphans))
			for _, o := range orphans {
				printDetail("%s %s (%s)", o.Name, o.Version, o.Repository)
			}
			return nil
		},
	}
}

func newBrokenCmd(opts *queryOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "broken <snapshot>",
		Short: "List missing dependency targets and who needs them",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			snap, nodes, err := loadResolved(args[0])
			if err != nil {
				return err
			}

			var broken []*pkggraph.PackageRecord
			for _, n := range nodes {
				if n.Broken {
					broken = append(broken, n)
				}
			}

			if opts.jsonOut {
				return writeJSON(broken)
			}

			if len(broken) == 0 {
				printSuccess("No broken dependencies")
				return nil
			}
			printWarning("%d missing dependency targets:", len(broken))
			graph := snap.Graph()
			for _, b := range broken {
				printDetail("%s ← %s", b.Name, strings.Join(dependersOf(graph, b.Name), ", "))
			}
			return nil
		},
	}
}

func newTreeCmd(opts *queryOpts) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "tree <package> <snapshot>",
		Short: "List the transitive closure of one package",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			focus, path := args[0], args[1]

			snap, err := snapshot.ReadFile(path)
			if err != nil {
				return err
			}
			dir, err := pkggraph.ParseDirection(direction)
			if err != nil {
				return err
			}
			if dir == pkggraph.DirectionBoth {
				return fmt.Errorf("tree direction must be forward or reverse")
			}

			graph := snap.Graph()
			if !graph.Has(focus) {
				printWarning("package %q is not in the snapshot", focus)
				return nil
			}

			names := pkggraph.Closure(graph, focus, dir)
			if opts.jsonOut {
				return writeJSON(names)
			}

			printInfo("%s (%s): %d packages", focus, dir, len(names))
			for _, name := range names {
				if rec, ok := graph.Record(name); ok {
					printDetail("%s %s", rec.Name, rec.Version)
				} else {
					printDetail("%s %s", name, StyleError.Render("(missing)"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "forward", "traversal direction (forward, reverse)")

	return cmd
}

func newSubgraphCmd(opts *queryOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subgraph <package> <snapshot>",
		Short: "Extract the dependency neighborhood of one package",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runSubgraph(args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "both", "traversal direction (forward, reverse, both)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json, dot, svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty, required for svg)")

	return cmd
}

// runSubgraph extracts and renders the sub-graph around one package.
func runSubgraph(focus, path string, opts *queryOpts) error {
	snap, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}

	dir, err := pkggraph.ParseDirection(opts.direction)
	if err != nil {
		return err
	}

	graph := snap.Graph()
	sg := pkggraph.ExtractSubgraph(graph, focus, dir, render.Labeler)

	format := opts.format
	if opts.jsonOut {
		format = "json"
	}

	switch format {
	case "json":
		return writeJSON(sg)

	case "dot":
		return writeOut(opts.output, []byte(render.ToDOT(sg, graph.Record)))

	case "svg":
		if opts.output == "" {
			return fmt.Errorf("svg output requires --output")
		}
		svg, err := render.RenderSVG(render.ToDOT(sg, graph.Record))
		if err != nil {
			return err
		}
		return writeOut(opts.output, svg)

	case "text":
		if len(sg.Nodes) == 0 {
			printWarning("package %q is not in the snapshot", focus)
			return nil
		}
		printInfo("%s (%s): %d packages, %d edges", focus, dir, len(sg.Nodes), len(sg.Edges))
		for _, e := range sg.Edges {
			printDetail("%s %s %s (%s)", e.From, iconArrow, e.To, e.Type)
		}
		return nil
	}

	return fmt.Errorf("unknown format %q (want text, json, dot or svg)", format)
}

// loadResolved reads a snapshot file and returns its node list after
// broken-dependency synthesis.
func loadResolved(path string) (*snapshot.Snapshot, []*pkggraph.PackageRecord, error) {
	snap, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return snap, pkggraph.ResolveBroken(snap.Graph()), nil
}

// dependersOf lists the packages whose dependency sets reference name.
// Unresolvable optional entries carry a marker suffix, and a broken node
// synthesized from one keeps it, so optional comparisons strip the
// suffix from both sides.
func dependersOf(g *pkggraph.Graph, name string) []string {
	bare := strings.TrimSuffix(name, deptree.UnresolvableSuffix)

	var out []string
	for _, r := range g.Records() {
		for _, dep := range r.DependsOn {
			if dep == name {
				out = append(out, r.Name)
			}
		}
		for _, dep := range r.OptionalDependsOn {
			if strings.TrimSuffix(dep, deptree.UnresolvableSuffix) == bare {
				out = append(out, r.Name+" (optional)")
			}
		}
	}
	return out
}

// describeSelection renders the snapshot's recorded selection.
func describeSelection(s *snapshot.Snapshot) string {
	if s.SelectionParam == "" {
		return s.SelectionMode
	}
	return s.SelectionParam
}

// writeJSON writes v to stdout as indented JSON.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOut writes data to path, or stdout when path is empty.
func writeOut(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
