package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/session"
)

func addEdit(topLevel *cobra.Command) {
	co := &options.ChartOptions{}
	i := &options.InteractiveOptions{}
	rename := ""

	cmd := &cobra.Command{
		Use:   "edit <chart>",
		Short: "Change the fields of a stored chart.",
		Example: `
chartdesk edit "Ada Lovelace" --place "Marylebone, London"
chartdesk edit "Ada Lovelace" --name "Augusta Ada King"
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: chartCompletions,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return options.PromptFlags(cmd, append([]string{"name"}, chartFlags...)...)
			}
			return nil
		},
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
			if err := ws.Request(rt.ctx, database.ActionOpen, args[0], session.Discard); err != nil {
				return output.HandleError(err)
			}
			data := ws.Bus.MustData(ws.Session.CurrentDocuments()[0])
			changed, err := co.Apply(&data)
			if err != nil {
				return output.HandleError(err)
			}
			if rename != "" {
				data.Name = rename
				changed |= chart.Name
			}
			if changed == chart.None {
				return output.HandleError(errors.New("nothing to change"))
			}
			if err := ws.Edit(changed, func(d *chart.Data) { *d = data }); err != nil {
				return output.HandleError(err)
			}
			if err := ws.Save(rt.ctx, ws.Session.Current()); err != nil {
				return output.HandleError(err)
			}
			return output.HandleError(render(ws))
		},
	}

	options.AddChartArgs(cmd, co)
	options.InteractiveArgs(cmd, i)
	options.AddOutputArg(cmd, output)
	cmd.Flags().StringVarP(&rename, "name", "n", "", "New name; the chart is stored under it.")

	topLevel.AddCommand(cmd)
}
