package cli

import (
	"cmp"

	"github.com/spf13/cobra"

	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	"github.com/matzehuels/snhsdiag/pkg/server"
)

// serveCommand creates the serve command, which exposes the diagrams over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags engineFlags
		addr  string
		files []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams over HTTP",
		Long: `Serve exposes the builtin diagrams (and any --file definitions) over HTTP:

  GET /healthz
  GET /api/v1/diagrams
  GET /api/v1/diagrams/{name}
  GET /api/v1/diagrams/{name}/source
  GET /api/v1/diagrams/{name}/image.{png,svg,jpg,pdf,dot}

Rendered images share the artifact cache with the render command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			defs := builtin.All()
			if len(files) > 0 {
				extra, err := resolveTargets(nil, files)
				if err != nil {
					return err
				}
				defs = append(extra, defs...)
			}

			runner, err := c.newRunner(ctx, flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			sc := c.cfg.Server
			opts := server.Options{
				Addr:            cmp.Or(addr, sc.Addr),
				ReadTimeout:     sc.ReadTimeout.Duration,
				WriteTimeout:    sc.WriteTimeout.Duration,
				ShutdownTimeout: sc.ShutdownTimeout.Duration,
			}
			printInfo("Serving %d diagrams on %s", len(defs), StyleLink.Render("http://"+opts.Addr))
			return server.New(runner, defs, c.Logger).ListenAndServe(ctx, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "additional definition file to serve; repeatable")
	return cmd
}
