package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/printers"
)

func addStatus(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the charts that will be reopened and their tabs.",
		Example: `
chartdesk status
chartdesk status --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := load(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			ws, err := rt.workspace()
			if err != nil {
				return output.HandleError(err)
			}
			ctx, cancel := context.WithCancel(rt.ctx)
			defer cancel()
			if err := ws.Start(ctx); err != nil {
				return output.HandleError(err)
			}
			ws.Drain()

			report := ws.Report()
			if output.JSON {
				return output.Print(report)
			}
			pp := &printers.PrettyPrint{}
			pp.Report(report)
			return nil
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
