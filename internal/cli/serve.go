package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/interestmap/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host live interest maps over HTTP",
		Long: `Host live interest maps over HTTP.

Clients create maps from trees, then send resize, redraw and drag commands
and read back frames. Frames can be saved to the snapshot store, and
POST /layouts settles a tree without keeping a live map.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	logger := loggerFromContext(ctx)
	newLogHooks(logger).register()

	srv := server.New(server.Config{
		Store:        st,
		Runner:       runner,
		MapDefaults:  c.Config.Map,
		MaxBodyBytes: c.Config.Server.MaxBodyBytes,
		Logger:       logger,
	})

	printSuccess("Serving interest maps on http://%s", addr)
	printDetail("cache: %s · store: %s", c.Config.Cache.Backend, c.Config.Store.Backend)
	return srv.Run(ctx, addr)
}
