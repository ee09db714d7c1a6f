package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/pipeline"
)

// layoutFlags holds the layout command's non-pipeline flags.
type layoutFlags struct {
	output  string
	formats string
	noCache bool
	save    bool
}

// layoutCommand creates the layout command for settling a map headlessly.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags layoutFlags
		seed  uint64
		ticks int
		opts  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.yaml|tree.toml]",
		Short: "Settle an interest tree and export the map",
		Long: `Settle an interest tree and export the map.

The layout command plans the map for a tree file, runs the force simulation
for a fixed number of ticks without a clock and writes the frozen frame as
JSON, Graphviz DOT or SVG. The same tree, options, seed and tick count always
produce the same map.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.pipelineOptions()
			if cmd.Flags().Changed("seed") {
				base.Seed = seed
			}
			if cmd.Flags().Changed("ticks") {
				base.Ticks = ticks
			}
			base.Rings, base.Labels, base.Refresh = opts.Rings, opts.Labels, opts.Refresh
			base.Formats = parseFormats(flags.formats)
			return c.runLayout(cmd.Context(), args[0], base, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for a single format, or base name (default: <input>.<format>)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "json", "output formats: json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.save, "save", false, "also save the snapshot to the snapshot store")

	cmd.Flags().Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&ticks, "ticks", pipeline.DefaultTicks, "simulation ticks to run")
	cmd.Flags().BoolVar(&opts.Rings, "rings", false, "draw orbital rings (dot, svg)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw node names (dot, svg)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runLayout settles the tree, renders and writes the outputs.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if err := validatePaths(input, flags.output); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	newLogHooks(c.Logger).register()

	spinner := startSpinner(ctx, os.Stderr, "Settling map...")
	prog := newProgress(c.Logger)

	result, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		spinner.Fail("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Settled %d nodes", result.Stats.NodeCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, flags.output, opts.Formats)
	for _, format := range opts.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", paths[format], err)
		}
	}

	printSuccess("Layout complete")
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Snapshot.Dropped,
		result.CacheInfo.SnapshotHit && result.CacheInfo.RenderHit)

	if flags.save {
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		saved, err := st.Save(ctx, result.Snapshot)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		printDetail("Saved snapshot %s", saved.ID)
	}

	printNewline()
	printNextStep("Explore live", appName+" watch "+input)
	return nil
}

// validatePaths checks user-supplied paths. Empty optional paths are skipped.
func validatePaths(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses it verbatim; otherwise output (or the input without
// its extension) is a base name.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + ".map"
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
