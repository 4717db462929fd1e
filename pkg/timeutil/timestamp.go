package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads a local chart time given in the zone offset hours east
// of UTC and returns it in UTC. RFC 3339 input carries its own offset and
// ignores offset.
func ParseTimestamp(raw string, offset float64) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("timeutil: empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	zone := time.FixedZone("", int(math.Round(offset*3600)))
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, zone); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timeutil: cannot read %q as a timestamp, use YYYY-MM-DD HH:MM", raw)
}

// ParseOffset reads a zone offset in hours: "2", "-5.5", "+05:30" or
// "UTC+1". An empty input is UTC.
func ParseOffset(raw string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "UTC"), "GMT")
	if s == "" || s == "Z" {
		return 0, nil
	}

	var hours float64
	if h, m, ok := strings.Cut(s, ":"); ok {
		hh, err := strconv.Atoi(h)
		if err != nil {
			return 0, fmt.Errorf("timeutil: invalid offset %q", raw)
		}
		mm, err := strconv.Atoi(m)
		if err != nil || mm < 0 || mm >= 60 {
			return 0, fmt.Errorf("timeutil: invalid offset %q", raw)
		}
		hours = math.Abs(float64(hh)) + float64(mm)/60
		if strings.HasPrefix(h, "-") {
			hours = -hours
		}
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("timeutil: invalid offset %q", raw)
		}
		hours = f
	}
	if hours < -12 || hours > 14 {
		return 0, fmt.Errorf("timeutil: offset %q out of range", raw)
	}
	return hours, nil
}
