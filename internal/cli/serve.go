package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pacscope/pacscope/internal/server"
	"github.com/pacscope/pacscope/pkg/snapshot"
	"github.com/pacscope/pacscope/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	snapFile string // snapshot file to serve ("" means latest from store)
}

// newServeCmd creates the serve command, which exposes one snapshot over
// HTTP for the web viewer.
func newServeCmd(configPath *string) *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a snapshot to the web viewer over HTTP",
		Long: `Serve loads a snapshot and answers viewer queries over HTTP.

With --snapshot it serves that file; otherwise it serves the latest
snapshot from the configured store.

  pacscope serve --snapshot snap.json
  pacscope serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServe(c.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", ":8088", "listen address")
	cmd.Flags().StringVar(&opts.snapFile, "snapshot", "", "snapshot file to serve (default: latest from store)")

	return cmd
}

// runServe loads the snapshot and runs the HTTP server until ctx is
// cancelled.
func runServe(ctx context.Context, cfg Config, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	snap, err := loadServeSnapshot(ctx, cfg, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           server.New(snap, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Infof("serving snapshot %s (%d packages) on %s", snap.ID, len(snap.Packages), opts.addr)
	printInfo("Serving on %s", StyleHighlight.Render("http://localhost"+opts.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loadServeSnapshot picks the snapshot source: explicit file or store.
func loadServeSnapshot(ctx context.Context, cfg Config, opts serveOpts) (*snapshot.Snapshot, error) {
	if opts.snapFile != "" {
		return snapshot.ReadFile(opts.snapFile)
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer st.Close(ctx)

	snap, err := st.Latest(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		printWarning("No stored snapshot yet; run 'pacscope collect --publish' first")
		return nil, err
	}
	return snap, err
}
