package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/interestmap/pkg/graph"
	"github.com/matzehuels/interestmap/pkg/pipeline"
	"github.com/matzehuels/interestmap/pkg/store"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Manage saved map snapshots",
	}

	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No saved snapshots")
					return nil
				}
				fmt.Fprintln(output, snapshotTable(list))
				return nil
			})
		},
	}
}

// snapshotTable renders summaries as a bordered table.
func snapshotTable(list []store.Summary) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID,
			s.Title,
			strconv.Itoa(s.Nodes),
			strconv.FormatUint(s.Seed, 10),
			strconv.Itoa(s.Tick),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Nodes", "Seed", "Tick", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		}).
		Render()
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	var (
		format  string
		outPath string
		opts    pipeline.Options
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print or export a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			if err := validatePaths(outPath); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				snap, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				opts.Formats = []string{format}
				artifacts, err := pipeline.Render(snap, opts)
				if err != nil {
					return err
				}
				return writeArtifact(artifacts[format], outPath)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", graph.ExportJSON, "export format: json, dot, svg")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.Rings, "rings", false, "draw orbital rings (dot, svg)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw node names (dot, svg)")
	return cmd
}

func writeArtifact(data []byte, path string) error {
	if path == "" {
		_, err := output.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Exported snapshot")
	printFile(path)
	return nil
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
					printSuccess("Deleted snapshot %s", id)
				}
				return nil
			})
		},
	}
}
