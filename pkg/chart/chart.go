// Package chart defines the chart record shared by every open document and
// the field categories used to describe changes to it.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultName is shown for charts that have not been named yet.
const DefaultName = "Untitled"

// Location is a geographic position in degrees (altitude in meters).
type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Longitude == 0 && l.Latitude == 0 && l.Altitude == 0
}

// String renders the location as "51.48N 0.00E".
func (l Location) String() string {
	ns, ew := "N", "E"
	if l.Latitude < 0 {
		ns = "S"
	}
	if l.Longitude < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.2f%s %.2f%s", math.Abs(l.Latitude), ns, math.Abs(l.Longitude), ew)
}

// New returns a chart named name, stamped with the current time.
func New(name string) Data {
	return Data{
		Name:      name,
		Type:      TypeUndefined,
		Timestamp: time.Now().UTC().Truncate(time.Minute),
	}
}

// Data is the chart payload. Its computed interpretation belongs to the
// calculation engine; this package only tracks which parts of it change.
type Data struct {
	Name      string    `json:"name"`
	Type      Type      `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Timezone  float64   `json:"timezone"`
	Location  Location  `json:"location"`
	Place     string    `json:"place,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

// Title returns the chart name or DefaultName when empty.
func (d Data) Title() string {
	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}
	return DefaultName
}

// LocalTime returns the timestamp shifted into the chart's timezone.
func (d Data) LocalTime() time.Time {
	offset := int(d.Timezone * 3600)
	return d.Timestamp.In(time.FixedZone(zoneName(d.Timezone), offset))
}

// Age returns the number of full years between the chart timestamp and at.
func (d Data) Age(at time.Time) int {
	if d.Timestamp.IsZero() || at.Before(d.Timestamp) {
		return 0
	}
	birth := d.Timestamp.UTC()
	at = at.UTC()
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Diff reports the categories in which other differs from d.
func (d Data) Diff(other Data) Members {
	var m Members
	if d.Name != other.Name {
		m |= Name
	}
	if d.Type != other.Type {
		m |= KindOf
	}
	if !d.Timestamp.Equal(other.Timestamp) {
		m |= Time
	}
	if d.Timezone != other.Timezone {
		m |= Timezone
	}
	if d.Location != other.Location {
		m |= Place
	}
	if d.Place != other.Place {
		m |= PlaceName
	}
	if d.Comment != other.Comment {
		m |= Comment
	}
	return m
}

func (d Data) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Title(), d.LocalTime().Format("2006-01-02 15:04 MST"), d.Location)
}

func zoneName(hours float64) string {
	sign := "+"
	if hours < 0 {
		sign = "-"
	}
	total := int(math.Round(math.Abs(hours) * 60))
	return fmt.Sprintf("UTC%s%02d:%02d", sign, total/60, total%60)
}
