package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/app"
	"tableflip.dev/chartdesk/pkg/commands/options"
	"tableflip.dev/chartdesk/pkg/printers"
	"tableflip.dev/chartdesk/pkg/settings"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change view settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSettingsSnapshot(cmd, "show", "Print the current settings.", (*app.Workspace).Settings)
	addSettingsSnapshot(cmd, "defaults", "Print the default settings.", (*app.Workspace).DefaultSettings)
	addSettingsSet(cmd)
	addSettingsEditor(cmd)
	addSettingsExport(cmd)

	topLevel.AddCommand(cmd)
}

func addSettingsSnapshot(parent *cobra.Command, use, short string, get func(*app.Workspace) (settings.Snapshot, error)) {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
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
			snap, err := get(ws)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(snap)
			}
			pp := &printers.PrettyPrint{}
			pp.Settings(snap)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSettingsSet(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one option and save the settings file.",
		Example: `
chartdesk settings set window.astro.zodiac sidereal
chartdesk settings set window.astro.chart.orb 6
`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return settingKeys(cmd), cobra.ShellCompDirectiveNoFileComp
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
			if err := ws.SetSetting(args[0], args[1]); err != nil {
				return output.HandleError(err)
			}
			snap, err := ws.Settings()
			if err != nil {
				return output.HandleError(err)
			}
			v, _ := snap.Get(args[0])
			_, _ = fmt.Fprintf(color.Output, "%s = %v\n", args[0], v)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSettingsEditor(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "editor",
		Short: "List every editable option with its current value.",
		Args:  cobra.NoArgs,
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
			form, err := ws.SettingsForm()
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return output.Print(form.Fields)
			}
			snap, err := ws.Settings()
			if err != nil {
				return output.HandleError(err)
			}
			pp := &printers.PrettyPrint{}
			pp.Form(form, snap)
			return nil
		},
	}
	options.AddOutputArg(cmd, output)
	parent.AddCommand(cmd)
}

func addSettingsExport(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export-toml",
		Short: "Print the current settings as TOML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			rt, err := load(cmd)
			if err != nil {
				return err
			}
			ws, err := rt.workspace()
			if err != nil {
				return err
			}
			snap, err := ws.Settings()
			if err != nil {
				return err
			}
			b, err := settings.EncodeTOML(snap)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	parent.AddCommand(cmd)
}

func settingKeys(cmd *cobra.Command) []string {
	rt, err := load(cmd)
	if err != nil {
		return nil
	}
	ws, err := rt.workspace()
	if err != nil {
		return nil
	}
	form, err := ws.SettingsForm()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
