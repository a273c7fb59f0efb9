package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pacscope/pacscope/pkg/pkggraph"
	"github.com/pacscope/pacscope/pkg/store"
)

// newBrowseCmd creates the browse command: an interactive picker over the
// stored snapshots that prints a summary of the chosen one.
func newBrowseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runBrowse(c.Context(), cfg)
		},
	}
}

// runBrowse lists stored snapshots, lets the user pick one and prints
// its summary.
func runBrowse(ctx context.Context, cfg Config) error {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	metas, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		printWarning("No stored snapshots; run 'pacscope collect --publish' first")
		return nil
	}

	selected, err := pickSnapshot(metas)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil // user quit without selecting
	}

	return summarizeSnapshot(ctx, st, *selected)
}

// summarizeSnapshot loads the chosen snapshot by ID and prints its stats.
func summarizeSnapshot(ctx context.Context, st store.Store, meta store.Meta) error {
	printNewline()
	printKeyValue("ID", meta.ID)
	printKeyValue("Host", meta.Hostname)
	printKeyValue("Collected", meta.Timestamp.Format("2006-01-02 15:04:05 MST"))
	printKeyValue("Packages", fmt.Sprintf("%d", meta.Packages))

	snap, err := st.Get(ctx, meta.ID)
	if err != nil {
		return err
	}

	counts := pkggraph.Count(pkggraph.ResolveBroken(snap.Graph()))
	printNewline()
	printStats(counts.Explicit, counts.Dependency, counts.Broken)
	if len(snap.Failures) > 0 {
		printDetail("%d collection failures recorded", len(snap.Failures))
	}
	printNewline()
	printNextStep("Serve it", "pacscope serve")
	return nil
}
