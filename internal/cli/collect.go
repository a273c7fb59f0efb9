package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pacscope/pacscope/pkg/collect"
	"github.com/pacscope/pacscope/pkg/errors"
	"github.com/pacscope/pacscope/pkg/pacman"
	"github.com/pacscope/pacscope/pkg/pkggraph"
	"github.com/pacscope/pacscope/pkg/snapshot"
)

// collectOpts holds the command-line flags for the collect command.
type collectOpts struct {
	selection string   // selection expression: all, first:N, last:N, random:N
	packages  []string // explicit package list, overrides selection
	output    string   // snapshot file path ("" derives one from host and time)
	workers   int      // parallel pactree invocations
	timeout   int      // per-invocation timeout in seconds
	publish   bool     // also save to the configured snapshot store
}

// newCollectCmd creates the collect command, the write side of the
// engine: it queries pacman and pactree, assembles the graph and writes a
// snapshot file.
func newCollectCmd(configPath *string) *cobra.Command {
	var opts collectOpts

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect the installed-package dependency graph into a snapshot",
		Long: `Collect queries pacman and pactree for every selected package and
writes the assembled dependency graph as a JSON snapshot.

Selection limits collection to a subset of packages plus everything they
transitively depend on:

  pacscope collect                          # all installed packages
  pacscope collect --select first:50        # first 50 explicit packages
  pacscope collect --select random:10       # 10 random explicit packages
  pacscope collect --packages firefox,mpv   # a specific list`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runCollect(c.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.selection, "select", "s", "all", "package selection (all, first:N, last:N, random:N)")
	cmd.Flags().StringSliceVarP(&opts.packages, "packages", "p", nil, "explicit package list (overrides --select)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "snapshot file (default pacscope-<host>-<time>.json)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel pactree invocations (default: CPU count)")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "per-invocation timeout in seconds")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "also save the snapshot to the configured store")

	return cmd
}

// runCollect executes the full collection pipeline. Fatal errors abort
// before any artifact is written; per-package tool failures are reported
// afterwards and recorded in the snapshot.
func runCollect(ctx context.Context, cfg Config, opts collectOpts) error {
	logger := loggerFromContext(ctx)

	if err := pacman.CheckPrerequisites(); err != nil {
		return err
	}

	sel, err := parseSelectionFlags(opts)
	if err != nil {
		return err
	}

	sys := pacman.New()
	runOpts := collect.Options{
		Workers:     firstNonZero(opts.workers, cfg.Workers),
		ToolTimeout: time.Duration(firstNonZero(opts.timeout, cfg.ToolTimeoutSeconds)) * time.Second,
		Logger:      func(msg string, args ...any) { logger.Warnf(msg, args...) },
	}

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, "Collecting dependency graph...")
	spin.Start()

	snap, err := collectSnapshot(ctx, sys, sel, runOpts)
	if err != nil {
		spin.Stop()
		return err
	}

	spin.SetMessage("Writing snapshot...")

	output := opts.output
	if output == "" {
		name := fmt.Sprintf("pacscope-%s-%s.json", snap.Hostname, snap.Timestamp.Format("20060102-150405"))
		output = filepath.Join(cfg.OutputDir, name)
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		spin.Stop()
		return err
	}
	if err := snapshot.WriteFile(snap, output); err != nil {
		spin.Stop()
		return err
	}

	if opts.publish {
		err := publishSnapshot(ctx, cfg.Store, snap)
		if err != nil {
			spin.Stop()
			return err
		}
	}

	spin.Stop()
	prog.done(fmt.Sprintf("Collected %d packages", len(snap.Packages)))
	reportCollection(snap, output)
	return nil
}

// publishSnapshot saves the snapshot to the configured store backend.
func publishSnapshot(ctx context.Context, cfg StoreConfig, snap *snapshot.Snapshot) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.Save(ctx, snap)
}

// collectSnapshot runs selection expansion, edge collection and metadata
// gathering, and assembles the result into a snapshot envelope.
func collectSnapshot(ctx context.Context, sys *pacman.System, sel collect.Selection, opts collect.Options) (*snapshot.Snapshot, error) {
	installed, err := sys.Installed(ctx)
	if err != nil {
		return nil, err
	}
	explicit, err := sys.ExplicitlyInstalled(ctx)
	if err != nil {
		return nil, err
	}

	names, closureFailures, err := collect.Expand(ctx, sys, installed, explicit, sel, opts)
	if err != nil {
		return nil, err
	}

	result, err := collect.Collect(ctx, sys, names, opts)
	if err != nil {
		return nil, err
	}

	meta, err := sys.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	graph := pkggraph.Assemble(names, result.Edges, meta)
	failures := append(closureFailures, result.Failures...)

	return snapshot.New(graph, snapshot.CurrentHost(), sel, failures), nil
}

// parseSelectionFlags resolves the two selection flags into one
// Selection. An explicit package list wins over --select.
func parseSelectionFlags(opts collectOpts) (collect.Selection, error) {
	if len(opts.packages) > 0 {
		return collect.ListSelection(opts.packages), nil
	}
	return collect.ParseSelection(opts.selection)
}

// reportCollection prints the run summary: stats, failure report and the
// written file.
func reportCollection(snap *snapshot.Snapshot, output string) {
	nodes := pkggraph.ResolveBroken(snap.Graph())
	counts := pkggraph.Count(nodes)

	printSuccess("Snapshot written")
	printStats(counts.Explicit, counts.Dependency, counts.Broken)
	printFile(output)

	if len(snap.Failures) > 0 {
		printNewline()
		printWarning("%d packages could not be fully collected:", len(snap.Failures))
		for _, f := range snap.Failures {
			printDetail("%s (%s): %s", f.Package, f.Phase, f.Reason)
		}
	}

	printNewline()
	printNextStep("Inspect it", "pacscope query counts "+output)
}

// firstNonZero returns the first non-zero value, or zero.
func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
