package timeutil

import (
	"testing"
	"time"
)

func TestParseTimestampInOffset(t *testing.T) {
	got, err := ParseTimestamp("1990-04-12 06:30", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1990, time.April, 12, 4, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseTimestampRFC3339IgnoresOffset(t *testing.T) {
	got, err := ParseTimestamp("1990-04-12T06:30:00-05:00", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1990, time.April, 12, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "12/04/1990"} {
		if _, err := ParseTimestamp(raw, 0); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseOffset(t *testing.T) {
	cases := map[string]float64{
		"":       0,
		"Z":      0,
		"2":      2,
		"-5.5":   -5.5,
		"+05:30": 5.5,
		"-03:30": -3.5,
		"UTC+1":  1,
		"gmt-4":  -4,
		"  +14 ": 14,
	}
	for raw, want := range cases {
		got, err := ParseOffset(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
	for _, raw := range []string{"15", "-13", "ab", "+02:75"} {
		if _, err := ParseOffset(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
