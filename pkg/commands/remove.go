package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/session"
)

func addRemove(topLevel *cobra.Command) {
	yes := false

	cmd := &cobra.Command{
		Use:     "rm <chart>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored chart.",
		Example: `
chartdesk rm "Ada Lovelace"
chartdesk rm "Ada Lovelace" --yes
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: chartCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt, err := load(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			ws, err := rt.workspace()
			if err != nil {
				return output.HandleError(err)
			}
			s, ok := ws.Database.Lookup(args[0])
			if !ok {
				return output.HandleError(fmt.Errorf("%w: %s", database.ErrUnknownChart, args[0]))
			}
			if !yes {
				ok, err := options.Confirm(fmt.Sprintf("Delete %q", s.Name))
				if err != nil {
					return output.HandleError(err)
				}
				if !ok {
					return nil
				}
			}
			if err := ws.Request(rt.ctx, database.ActionDelete, s.ID, session.Discard); err != nil {
				return output.HandleError(err)
			}
			_, _ = fmt.Fprintf(color.Output, "deleted %s\n", s.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
