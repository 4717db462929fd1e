package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/store"
	"tableflip.dev/chartdesk/pkg/timeutil"
)

// ListOptions narrows the chart listing.
type ListOptions struct {
	Filter   string
	Since    string
	Calendar bool
	Year     bool
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.Flags().StringVarP(&o.Filter, "filter", "f", "",
		"Only list charts whose name contains this text.")
	cmd.Flags().StringVar(&o.Since, "since", "",
		`Only list charts saved within this window, example: --since=3d or --since=1w2d.`)
	cmd.Flags().BoolVar(&o.Calendar, "calendar", false,
		"Show a calendar of the days charts were saved.")
	cmd.Flags().BoolVar(&o.Year, "year", false,
		"With --calendar, show the whole year instead of the current month.")
}

// Keep drops the charts saved before the --since window.
func (o *ListOptions) Keep(now time.Time, charts []store.Summary) ([]store.Summary, error) {
	if o.Since == "" {
		return charts, nil
	}
	window, _, err := timeutil.ParseWindow(o.Since)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-window)
	out := charts[:0:0]
	for _, c := range charts {
		if !c.Saved.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}
