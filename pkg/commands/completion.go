package commands

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(chartdesk completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(chartdesk completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// chartCompletions offers the names of stored charts.
func chartCompletions(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	rt, err := load(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws, err := rt.workspace()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws.Database.SetFilter(toComplete)
	var names []string
	for _, s := range ws.Database.Items() {
		if strings.HasPrefix(strings.ToLower(s.Name), strings.ToLower(toComplete)) {
			names = append(names, strconv.Quote(s.Name))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
