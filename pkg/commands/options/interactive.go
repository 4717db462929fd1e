package options

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tableflip.dev/chartdesk/pkg/store"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Prompt for the options that were not given.`)
}

// ErrNoTerminal is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNoTerminal = errors.New("cannot prompt: stdin is not a terminal")

// CanPrompt reports whether stdin is a terminal.
func CanPrompt() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var promptTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// PromptFlags asks for each named flag that was not set on the command
// line and stores the answer in it.
func PromptFlags(cmd *cobra.Command, names ...string) error {
	if !CanPrompt() {
		return ErrNoTerminal
	}
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := promptFlag(f); err != nil {
			return err
		}
	}
	return nil
}

func promptFlag(f *pflag.Flag) error {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s (%s)", f.Name, f.Usage),
		Default:   f.DefValue,
		Templates: promptTemplates,
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			return f.Value.Set(input)
		},
	}
	result, err := prompt.Run()
	if err != nil {
		return err
	}
	if result == "" {
		return nil
	}
	return f.Value.Set(result)
}

// Confirm asks a yes/no question and reports whether it was answered yes.
func Confirm(label string) (bool, error) {
	if !CanPrompt() {
		return false, ErrNoTerminal
	}
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SelectChart lets the user pick one of charts, searching by name.
func SelectChart(label string, charts []store.Summary) (store.Summary, error) {
	if len(charts) == 0 {
		return store.Summary{}, errors.New("no charts to choose from")
	}
	if !CanPrompt() {
		return store.Summary{}, ErrNoTerminal
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Name | bold }} {{ .Type | cyan }}",
		Inactive: "   {{ .Name }} {{ .Type | cyan }}",
		Selected: "{{ .Name | bold }}",
	}
	searcher := func(input string, index int) bool {
		name := strings.ToLower(charts[index].Name)
		return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     charts,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return store.Summary{}, err
	}
	return charts[i], nil
}
