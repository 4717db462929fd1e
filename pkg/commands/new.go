package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/document"
	"tableflip.dev/chartdesk/pkg/store"
)

var chartFlags = []string{"time", "tz", "place", "location", "type", "comment"}

func addNew(topLevel *cobra.Command) {
	co := &options.ChartOptions{}
	i := &options.InteractiveOptions{}
	force := false

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create and store a chart.",
		Example: `
chartdesk new "Ada Lovelace" --time "1815-12-10 12:00" --tz 0 --place London --location "51.51,-0.13" --type female
chartdesk new "Launch" -i
`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return options.PromptFlags(cmd, chartFlags...)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			name := strings.Join(args, " ")
			rt, err := load(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			ws, err := rt.workspace()
			if err != nil {
				return output.HandleError(err)
			}
			if _, ok := ws.Database.Lookup(store.IDFor(name)); ok && !force {
				return output.HandleError(fmt.Errorf("a chart named %q already exists, use --force to overwrite it", name))
			}

			h, err := ws.NewChart(name)
			if err != nil {
				return output.HandleError(err)
			}
			data := ws.Bus.MustData(h)
			if _, err := co.Apply(&data); err != nil {
				return output.HandleError(err)
			}
			if err := ws.Bus.Replace(h, data); err != nil && !errors.Is(err, document.ErrNoChange) {
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
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite a chart with the same name.")

	topLevel.AddCommand(cmd)
}
