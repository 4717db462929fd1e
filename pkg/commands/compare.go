package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/session"
)

var errMissingChart = errors.New("no chart given")

func addCompare(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}
	sel := &selectorArgs{}

	cmd := &cobra.Command{
		Use:   "compare <chart> <other>",
		Short: "Show a chart with a second chart overlaid for comparison.",
		Example: `
chartdesk compare "Ada Lovelace" "Lord Byron"
`,
		Args:              cobra.MaximumNArgs(2),
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
			if err := sel.apply(ws); err != nil {
				return output.HandleError(err)
			}
			primary, err := chartArg(ws, args, 0, i.Interactive, "Primary chart")
			if err != nil {
				return output.HandleError(err)
			}
			if err := ws.Request(rt.ctx, database.ActionOpen, primary, session.Discard); err != nil {
				return output.HandleError(err)
			}
			secondary, err := chartArg(ws, args, 1, i.Interactive, "Compare with")
			if err != nil {
				return output.HandleError(err)
			}
			if err := ws.Request(rt.ctx, database.ActionOpenAsSecondary, secondary, session.Discard); err != nil {
				return output.HandleError(err)
			}
			return output.HandleError(render(ws))
		},
	}

	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, output)
	addSelectorArgs(cmd, sel)

	topLevel.AddCommand(cmd)
}
