package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/chartdesk/pkg/chart"
	"tableflip.dev/chartdesk/pkg/timeutil"
	"tableflip.dev/chartdesk/pkg/view"
)

// ChartOptions holds the fields of a chart given on the command line.
type ChartOptions struct {
	Time     string
	Timezone string
	Place    string
	Location string
	Type     string
	Comment  string
}

func AddChartArgs(cmd *cobra.Command, o *ChartOptions) {
	cmd.Flags().StringVarP(&o.Time, "time", "t", "",
		`Local date and time, example: --time="1990-04-12 06:30".`)
	cmd.Flags().StringVarP(&o.Timezone, "tz", "z", "",
		`Zone offset in hours east of UTC, example: --tz=+02:00 or --tz=-5.5.`)
	cmd.Flags().StringVarP(&o.Place, "place", "p", "",
		"Name of the place.")
	cmd.Flags().StringVarP(&o.Location, "location", "l", "",
		`Coordinates as "lat,lon", example: --location="59.91,10.75".`)
	cmd.Flags().StringVar(&o.Type, "type", "",
		fmt.Sprintf("Kind of chart, one of %v.", chart.AllTypes()))
	cmd.Flags().StringVarP(&o.Comment, "comment", "m", "",
		"Free text comment.")
}

// Apply writes the given fields onto data, leaving the rest alone, and
// reports which categories changed.
func (o *ChartOptions) Apply(data *chart.Data) (chart.Members, error) {
	before := *data
	if o.Timezone != "" {
		tz, err := timeutil.ParseOffset(o.Timezone)
		if err != nil {
			return chart.None, err
		}
		data.Timezone = tz
	}
	if o.Time != "" {
		ts, err := timeutil.ParseTimestamp(o.Time, data.Timezone)
		if err != nil {
			return chart.None, err
		}
		data.Timestamp = ts
	}
	if o.Location != "" {
		loc, err := view.ParseLocation(o.Location)
		if err != nil {
			return chart.None, err
		}
		data.Location = loc
	}
	if o.Place != "" {
		data.Place = o.Place
	}
	if o.Type != "" {
		t, err := chart.ParseType(o.Type)
		if err != nil {
			return chart.None, err
		}
		data.Type = t
	}
	if o.Comment != "" {
		data.Comment = o.Comment
	}
	return before.Diff(*data), nil
}
