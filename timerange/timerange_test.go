// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"testing"
	"time"
)

func TestPeriod(t *testing.T) {
	// Wednesday.
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		begin, end time.Time
	}{
		{"today", day(2025, 3, 12), day(2025, 3, 13)},
		{"yesterday", day(2025, 3, 11), day(2025, 3, 12)},
		{"this-week", day(2025, 3, 9), day(2025, 3, 16)},
		{"last-week", day(2025, 3, 2), day(2025, 3, 9)},
		{"this-month", day(2025, 3, 1), day(2025, 4, 1)},
		{"last-month", day(2025, 2, 1), day(2025, 3, 1)},
		{"this-year", day(2025, 1, 1), day(2026, 1, 1)},
		{"last-year", day(2024, 1, 1), day(2025, 1, 1)},
	}
	for _, test := range tests {
		r, err := Period(test.name, now)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Begin.Equal(test.begin) || !r.End.Equal(test.end) {
			t.Fatalf("%s: want [%v, %v), got %s", test.name, test.begin, test.end, r)
		}
		if r.Duration() <= 0 {
			t.Fatalf("%s: want positive duration, got %v", test.name, r.Duration())
		}
	}

	r, err := Period("lifetime", now)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsZero() || !r.InRange(time.Time{}) || !r.InRange(now) {
		t.Fatalf("want an unbounded range, got %s", r)
	}

	if _, err := Period("fortnight", now); err == nil {
		t.Fatalf("want non-nil error for an unknown period")
	}
}

func TestInRange(t *testing.T) {
	begin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := begin.Add(time.Hour)

	r := &Range{Begin: begin, End: end}
	if !r.InRange(begin) || !r.InRange(end.Add(-time.Nanosecond)) {
		t.Fatalf("want begin and end-1ns inside %s", r)
	}
	if r.InRange(end) || r.InRange(begin.Add(-time.Nanosecond)) {
		t.Fatalf("want end and begin-1ns outside %s", r)
	}

	open := &Range{Begin: begin}
	if !open.InRange(end.AddDate(10, 0, 0)) || open.InRange(begin.Add(-time.Second)) {
		t.Fatalf("unexpected result for half-open range %s", open)
	}
}
