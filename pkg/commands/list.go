package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/printers"
)

func addList(topLevel *cobra.Command) {
	lo := &options.ListOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored charts.",
		Example: `
chartdesk list
chartdesk list --filter smith
chartdesk list --since 2w --calendar
chartdesk list --calendar --year
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
			ws.Database.SetFilter(lo.Filter)
			now := time.Now()
			charts, err := lo.Keep(now, ws.Database.Items())
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(charts)
			}
			pp := &printers.PrettyPrint{ShowID: io.ShowID}
			switch {
			case lo.Calendar && lo.Year:
				pp.CalendarYear(now, charts...)
			case lo.Calendar:
				pp.Calendar(now, charts...)
			}
			pp.Charts(charts...)
			return nil
		},
	}

	options.AddListArgs(cmd, lo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
