package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWindow is used by ParseWindow when no window is given.
	DefaultWindow = "1w"

	day  = 24 * time.Hour
	week = 7 * day
)

var (
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)

	// units is ordered largest first, which is also the FormatWindow order.
	units = []struct {
		label   string
		value   time.Duration
		aliases []string
	}{
		{"y", 365 * day, []string{"yr", "yrs", "year", "years"}},
		{"w", week, []string{"wk", "wks", "week", "weeks"}},
		{"d", day, []string{"day", "days"}},
		{"h", time.Hour, []string{"hr", "hrs", "hour", "hours"}},
		{"m", time.Minute, []string{"min", "mins", "minute", "minutes"}},
	}
)

func unitFor(name string) (time.Duration, bool) {
	for _, u := range units {
		if u.label == name {
			return u.value, true
		}
		for _, a := range u.aliases {
			if a == name {
				return u.value, true
			}
		}
	}
	return 0, false
}

// ParseWindow parses a look-back window such as "3d", "1w" or "1y2w" and
// returns it with its compact spelling. An empty input means DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	var total time.Duration
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", matches[1], err)
		}
		base, ok := unitFor(matches[2])
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d with the largest units first, dropping seconds.
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range units {
		if d < u.value {
			continue
		}
		n := d / u.value
		d -= n * u.value
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0m"
	}
	return b.String()
}
