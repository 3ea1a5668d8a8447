package scanner

import "time"

// Window is a half-open publish-time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor covers daysBefore whole days before the match day through
// daysAfter whole days after it, in UTC.
func WindowFor(matchDate time.Time, daysBefore, daysAfter int) Window {
	day := time.Date(matchDate.Year(), matchDate.Month(), matchDate.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start: day.AddDate(0, 0, -daysBefore),
		End:   day.AddDate(0, 0, daysAfter+1),
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
