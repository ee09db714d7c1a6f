package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/interestmap/pkg/core/pulse"
	"github.com/matzehuels/interestmap/pkg/core/tree"
	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

type watchFlags struct {
	seed    uint64
	noPulse bool
	noWatch bool
	labels  bool
	logFile string
}

// watchCommand creates the watch command, a live map in the terminal.
func (c *CLI) watchCommand() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch [tree.json|tree.yaml|tree.toml]",
		Short: "Run a live interest map in the terminal",
		Long: `Run a live interest map in the terminal.

The map keeps simulating while it is shown. Select nodes with tab and drag
them with the arrow keys; the rest of the map responds. Press r to redraw,
space to release a node, s to save a snapshot and q to quit.

The tree file is watched and the map re-planned whenever it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (default: config, then clock)")
	cmd.Flags().BoolVar(&flags.noPulse, "no-pulse", false, "disable the ring pulse")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload the tree file on change")
	cmd.Flags().BoolVar(&flags.labels, "labels", false, "show interest group names")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "write logs to this file while the view is open")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, flags watchFlags) error {
	if err := validatePaths(path, flags.logFile); err != nil {
		return err
	}
	root, err := graph.ReadTreeFile(path)
	if err != nil {
		return err
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	restore, err := c.redirectLogs(flags.logFile)
	if err != nil {
		return err
	}
	defer restore()
	newLogHooks(c.Logger).register()

	frames := make(chan graph.Snapshot, 1)
	pulses := make(chan pulse.Pulse, 1)

	opts := c.Config.Map
	if flags.seed != 0 {
		opts.Seed = flags.seed
	}
	mapOpts := []interestmap.Option{interestmap.WithLogger(c.Logger)}
	if !flags.noPulse {
		mapOpts = append(mapOpts, interestmap.WithPulse(func(p pulse.Pulse) { offer(pulses, p) }))
	}
	m, err := interestmap.New(root, opts, mapOpts...)
	if err != nil {
		return err
	}
	unsubscribe := m.Subscribe(func(s graph.Snapshot) { offer(frames, s) })
	defer func() {
		unsubscribe()
		m.Destroy()
		close(frames)
		close(pulses)
	}()

	save := func(snap graph.Snapshot) (string, error) {
		saved, err := st.Save(ctx, snap)
		return saved.ID, err
	}
	model := NewWatchModel(m, frames, pulses, save)
	model.labels = flags.labels

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(watchCtx)
	if !flags.noWatch {
		g.Go(func() error {
			return watchTreeFile(gctx, path, loggerFromContext(ctx), func(root tree.Entity, err error) {
				p.Send(reloadMsg{root: root, err: err})
			})
		})
	}

	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run view: %w", runErr)
	}
	return nil
}

// offer delivers v without blocking, replacing an undelivered older value.
// It must have a single sender.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
