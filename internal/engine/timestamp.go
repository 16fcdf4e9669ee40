package engine

import (
	"strconv"
	"strings"
	"time"
)

// Timestamps are "date space time". Single-digit month, day and hour are
// accepted; a trailing seconds field is tolerated.
var timestampLayouts = []string{
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
}

// Date is the calendar part of a parsed timestamp.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseTimestamp parses a timestamp cell. ok is false for anything that does
// not match the layout; such rows never match a year and never aggregate.
func ParseTimestamp(s string) (d Date, ok bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
		}
	}
	return Date{}, false
}

// String renders the date as Y-M-D without zero padding ("2004-1-15").
func (d Date) String() string {
	var b strings.Builder
	b.Grow(10)
	b.WriteString(strconv.Itoa(d.Year))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(int(d.Month)))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(d.Day))
	return b.String()
}
