package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
chartdesk ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := load(cmd)
			if err != nil {
				return err
			}
			ws, err := rt.workspace()
			if err != nil {
				return err
			}
			i := ui.UI{Workspace: ws}
			return i.Do(rt.ctx)
		},
	}

	topLevel.AddCommand(cmd)
}
