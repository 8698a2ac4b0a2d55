package hours

import (
	"testing"
	"time"
)

// 2024-01-01 is a Monday.
func date(day int, hour int, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, time.UTC)
}

func TestGateOpen(t *testing.T) {
	t.Parallel()

	gate := NewGate(time.UTC)

	testCases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "monday mid morning", at: date(1, 9, 0), want: true},
		{name: "monday window start", at: date(1, 8, 0), want: true},
		{name: "monday last open minute", at: date(1, 17, 59), want: true},
		{name: "monday after close", at: date(1, 18, 0), want: false},
		{name: "monday before open", at: date(1, 7, 59), want: false},
		{name: "saturday", at: date(6, 10, 0), want: false},
		{name: "sunday", at: date(7, 10, 0), want: false},
		{name: "friday afternoon", at: date(5, 17, 30), want: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := gate.Open(tc.at); got != tc.want {
				t.Fatalf("Open(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestGateNext(t *testing.T) {
	t.Parallel()

	gate := NewGate(time.UTC)

	testCases := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{name: "saturday resumes monday", at: date(6, 10, 0), want: date(8, 8, 0)},
		{name: "sunday resumes monday", at: date(7, 10, 0), want: date(8, 8, 0)},
		{name: "friday evening skips weekend", at: date(5, 18, 0), want: date(8, 8, 0)},
		{name: "weekday before open waits same day", at: date(3, 6, 30), want: date(3, 8, 0)},
		{name: "weekday evening resumes next day", at: date(3, 19, 15), want: date(4, 8, 0)},
		{name: "inside window is a no-op", at: date(3, 9, 0), want: date(3, 9, 0)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := gate.Next(tc.at); !got.Equal(tc.want) {
				t.Fatalf("Next(%s) = %s, want %s", tc.at, got, tc.want)
			}
		})
	}
}

func TestGateNextIsAlwaysOpen(t *testing.T) {
	t.Parallel()

	gate := NewGate(time.UTC)

	for day := 1; day <= 14; day++ {
		for hour := 0; hour < 24; hour++ {
			at := date(day, hour, 30)
			next := gate.Next(at)
			if !gate.Open(next) {
				t.Fatalf("Next(%s) = %s is not inside the window", at, next)
			}
			if next.Before(at) {
				t.Fatalf("Next(%s) = %s is in the past", at, next)
			}
		}
	}
}
