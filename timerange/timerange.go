// Copyright (c) 2024 BVK Chaitanya

package timerange

import (
	"fmt"
	"math"
	"os"
	"time"
)

// Range is a half-open [Begin, End) time interval. Zero Begin or End leaves
// that side unbounded.
type Range struct {
	Begin, End time.Time
}

func (r *Range) IsZero() bool {
	return r.Begin.IsZero() && r.End.IsZero()
}

func (r *Range) InRange(v time.Time) bool {
	if r.IsZero() {
		return true
	}
	if !r.Begin.IsZero() && v.Before(r.Begin) {
		return false
	}
	if !r.End.IsZero() && !v.Before(r.End) {
		return false
	}
	return true
}

func (r *Range) Duration() time.Duration {
	if r.IsZero() {
		return math.MaxInt64
	}
	if r.End.IsZero() {
		return time.Since(r.Begin)
	}
	return r.End.Sub(r.Begin)
}

func (r *Range) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("[%s, %s)", format(r.Begin), format(r.End))
}

// Periods lists the period names accepted by Period.
var Periods = []string{"today", "yesterday", "this-week", "last-week", "this-month", "last-month", "this-year", "last-year", "lifetime"}

// Period returns the calendar period containing now, or the one before it,
// in now's time zone. Weeks begin on Sunday. Lifetime is the zero range.
func Period(name string, now time.Time) (*Range, error) {
	zone := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, zone)
	week := today.AddDate(0, 0, -int(now.Weekday()))
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, zone)
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, zone)

	switch name {
	case "today":
		return &Range{Begin: today, End: today.AddDate(0, 0, 1)}, nil
	case "yesterday":
		return &Range{Begin: today.AddDate(0, 0, -1), End: today}, nil
	case "this-week":
		return &Range{Begin: week, End: week.AddDate(0, 0, 7)}, nil
	case "last-week":
		return &Range{Begin: week.AddDate(0, 0, -7), End: week}, nil
	case "this-month":
		return &Range{Begin: month, End: month.AddDate(0, 1, 0)}, nil
	case "last-month":
		return &Range{Begin: month.AddDate(0, -1, 0), End: month}, nil
	case "this-year":
		return &Range{Begin: year, End: year.AddDate(1, 0, 0)}, nil
	case "last-year":
		return &Range{Begin: year.AddDate(-1, 0, 0), End: year}, nil
	case "lifetime", "":
		return new(Range), nil
	}
	return nil, fmt.Errorf("period %q is not one of %v: %w", name, Periods, os.ErrInvalid)
}
