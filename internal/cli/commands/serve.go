package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmirlint/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [path...]",
		Short: "Serve the lint API over HTTP",
		Long: `Start an HTTP API sharing one rule catalog across requests.

Routes:
  POST /lint           Lint the XMIR document in the body (?severity=)
  GET  /rules          List rules
  GET  /rules/{name}   Show one rule with its motive
  GET  /runs           Recorded runs (?limit=), needs state_path
  GET  /runs/{id}      Defects of one run
  GET  /events         Server-Sent Events, one per finished lint run
  GET  /healthz        Liveness and version

When paths are given, changed *.xmir files under them are re-linted and
recorded.`,
		Example: `  # Serve on the default port
  xmirlint serve

  # Serve on port 9000 and re-lint ./target on change
  xmirlint serve --port 9000 ./target`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			// Build the catalog up front so broken rules fail at startup.
			if _, err := cmdCtx.Engine.Rules(cmd.Context()); err != nil {
				return err
			}

			srv := server.New(server.Config{
				Engine:     cmdCtx.Engine,
				Port:       cmdCtx.Cfg.Server.Port,
				WatchRoots: args,
				Logger:     cmdCtx.Logger,
			})
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default 8765)")

	return cmd
}
