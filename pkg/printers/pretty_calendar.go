package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/chartdesk/pkg/store"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month of on, highlighting the days charts were saved.
func (pp *PrettyPrint) Calendar(on time.Time, charts ...store.Summary) {
	then := time.Date(on.Year(), on.Month(), 1, 1, 0, 0, 0, time.Local)
	pp.PrintMonth(then, charts...)
}

// CalendarYear prints the twelve months of on's year.
func (pp *PrettyPrint) CalendarYear(on time.Time, charts ...store.Summary) {
	then := time.Date(on.Year(), 1, 1, 1, 0, 0, 0, time.Local)
	for i := 0; i < 12; i++ {
		pp.PrintMonth(then, charts...)
		then = NextMonth(then)
	}
}

func (pp *PrettyPrint) PrintMonth(then time.Time, charts ...store.Summary) {
	count := make([]int, DaysIn(then))
	for _, c := range charts {
		if c.Saved.IsZero() {
			continue
		}
		saved := c.Saved.Local()
		if saved.Year() == then.Year() && saved.Month() == then.Month() {
			count[saved.Day()-1]++
		}
	}
	pp.PrintMonthCount(then, count)
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	out := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(out, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	// Pad out the start of the month.
	_, _ = fmt.Fprint(out, strings.Repeat("   ", int(d-time.Sunday)))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < DaysIn(then); i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Fprintf(out, "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(out, "%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 1, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
