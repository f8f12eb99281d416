// Package calendar anchors "today" and the ISO week in a user's timezone.
// Dates are exchanged as ISO strings (YYYY-MM-DD) so they compare
// lexicographically.
package calendar

import (
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout  = "2006-01-02"
	DefaultZone = "America/Sao_Paulo"
)

// ResolveLocation loads name, falling back to fallback when name is nil,
// blank or unknown. UTC is the last resort.
func ResolveLocation(name *string, fallback string) *time.Location {
	if name != nil {
		if tz := strings.TrimSpace(*name); tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				return loc
			}
		}
	}
	if fallback == "" {
		fallback = DefaultZone
	}
	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc
	}
	return time.UTC
}

// Day pins the local calendar date of now at midday so AddDate never
// crosses a DST transition into the wrong day.
func Day(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, loc)
}

func Today(now time.Time, loc *time.Location) string {
	return Day(now, loc).Format(DateLayout)
}

// Monday of the ISO week containing now.
func Monday(now time.Time, loc *time.Location) time.Time {
	d := Day(now, loc)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Week returns Monday and Sunday of the current ISO week.
func Week(now time.Time, loc *time.Location) (start, end string) {
	mon := Monday(now, loc)
	return mon.Format(DateLayout), mon.AddDate(0, 0, 6).Format(DateLayout)
}

// Weekdays returns Monday..Friday of the current ISO week.
func Weekdays(now time.Time, loc *time.Location) []time.Time {
	mon := Monday(now, loc)
	days := make([]time.Time, 5)
	for i := range days {
		days[i] = mon.AddDate(0, 0, i)
	}
	return days
}

// LocalDate is the calendar date of t as seen in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ValidDate reports whether s is a well-formed ISO date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
