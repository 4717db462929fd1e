package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/database"
	"tableflip.dev/chartdesk/pkg/printers"
	"tableflip.dev/chartdesk/pkg/session"
	"tableflip.dev/chartdesk/pkg/view"
)

type chartView struct {
	Info      []string   `json:"info"`
	Secondary []string   `json:"secondary,omitempty"`
	Details   []view.Row `json:"details"`
	Zodiac    string     `json:"zodiac"`
	Houses    string     `json:"houseSystem"`
	Level     string     `json:"level"`
}

// render prints what the chart area currently shows.
func render(ws *app.Workspace) error {
	zodiac, houses, level := ws.Chart.Options()
	cv := chartView{
		Info:      ws.Info.Lines(),
		Secondary: ws.SecondaryInfo.Lines(),
		Details:   ws.Details.Rows(),
		Zodiac:    zodiac,
		Houses:    houses,
		Level:     level,
	}
	if output.JSON {
		return output.Print(cv)
	}
	pp := &printers.PrettyPrint{}
	pp.Info(cv.Info)
	if len(cv.Secondary) > 0 {
		pp.Title("Compared with")
		pp.Info(cv.Secondary)
	}
	pp.Details(cv.Details)
	_, _ = color.New(color.Faint).Fprintf(color.Output, "%s zodiac, %s houses, %s detail\n", zodiac, houses, level)
	return nil
}

// selectorArgs are the chart area selectors that can be given per command.
type selectorArgs struct {
	zodiac, houses, level string
}

func addSelectorArgs(cmd *cobra.Command, s *selectorArgs) {
	cmd.Flags().StringVar(&s.zodiac, "zodiac", "", "Zodiac for this run, overriding the settings.")
	cmd.Flags().StringVar(&s.houses, "houses", "", "House system for this run, overriding the settings.")
	cmd.Flags().StringVar(&s.level, "level", "", "Detail level for this run, overriding the settings.")
}

func (s *selectorArgs) apply(ws *app.Workspace) error {
	for opt, value := range map[string]string{
		view.OptZodiac:      s.zodiac,
		view.OptHouseSystem: s.houses,
		view.OptLevel:       s.level,
	} {
		if value == "" {
			continue
		}
		if err := ws.Composite.SetSelector(opt, value); err != nil {
			return err
		}
	}
	return nil
}

func addShow(topLevel *cobra.Command) {
	i := &options.InteractiveOptions{}
	sel := &selectorArgs{}

	cmd := &cobra.Command{
		Use:   "show [chart]",
		Short: "Show a stored chart.",
		Example: `
chartdesk show "Ada Lovelace"
chartdesk show "Ada Lovelace" --level full
chartdesk show -i
`,
		Args:              cobra.MaximumNArgs(1),
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
			ref, err := chartArg(ws, args, 0, i.Interactive, "Show which chart")
			if err != nil {
				return output.HandleError(err)
			}
			if err := ws.Request(rt.ctx, database.ActionOpen, ref, session.Discard); err != nil {
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

// chartArg returns args[n], or asks for a chart when interactive.
func chartArg(ws *app.Workspace, args []string, n int, interactive bool, label string) (string, error) {
	if n < len(args) {
		return args[n], nil
	}
	if !interactive {
		return "", errMissingChart
	}
	s, err := options.SelectChart(label, ws.Database.Items())
	if err != nil {
		return "", err
	}
	return s.ID, nil
}
