package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/chartdesk/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "chartdesk",
		Short: base.Wrap80("Keep, compare and inspect charts from the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().String("log-level", "", "Log level, one of debug, info, warn or error.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addList(topLevel)
	addNew(topLevel)
	addEdit(topLevel)
	addShow(topLevel)
	addCompare(topLevel)
	addRemove(topLevel)
	addStatus(topLevel)
	addSettings(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
