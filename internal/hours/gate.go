package hours

import "time"

const (
	// OpenHour is the first hour of the business-hours window.
	OpenHour = 8
	// CloseHour is the last hour of the window, inclusive: a send started at
	// 17:59 is still allowed.
	CloseHour = 17
)

// Gate decides whether dispatch may proceed at a given wall-clock instant and,
// if not, the earliest future instant it may resume. The window is fixed to
// Monday-Friday, 08:00 through 17:59, evaluated in the configured location.
type Gate struct {
	loc *time.Location
}

func NewGate(loc *time.Location) *Gate {
	if loc == nil {
		loc = time.Local
	}
	return &Gate{loc: loc}
}

// Open reports whether t falls inside the business-hours window.
func (g *Gate) Open(t time.Time) bool {
	t = t.In(g.loc)

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	hour := t.Hour()
	return hour >= OpenHour && hour <= CloseHour
}

// Next returns the earliest instant at or after t when the window is open.
// Inside the window it returns t unchanged.
func (g *Gate) Next(t time.Time) time.Time {
	t = t.In(g.loc)
	if g.Open(t) {
		return t
	}

	var days int
	switch t.Weekday() {
	case time.Saturday:
		days = 2
	case time.Sunday:
		days = 1
	case time.Friday:
		if t.Hour() > CloseHour {
			days = 3
		}
	default:
		if t.Hour() > CloseHour {
			days = 1
		}
	}

	day := t.AddDate(0, 0, days)
	return time.Date(day.Year(), day.Month(), day.Day(), OpenHour, 0, 0, 0, g.loc)
}
