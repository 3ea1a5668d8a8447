package notifications

import (
	"fmt"
	"strings"
	"time"
)

// MissingMatch describes a finished match that still has no highlight.
type MissingMatch struct {
	MatchID     int64
	HomeTeam    string
	AwayTeam    string
	Competition string
	Kickoff     time.Time
	Attempts    int
	Capped      bool
}

// Label renders "Home vs Away".
func (m MissingMatch) Label() string {
	return fmt.Sprintf("%s vs %s", strings.TrimSpace(m.HomeTeam), strings.TrimSpace(m.AwayTeam))
}

// BatchSummary reports the outcome of one fetch run.
type BatchSummary struct {
	RunID     string
	Pass      string
	Day       string
	Processed int
	Found     int
	Empty     int
	Transient int
	Capped    int
	Skipped   int
	Aborted   bool
	Reached   int
	Remaining int
	Duration  time.Duration
}

func (s BatchSummary) message() string {
	duration := s.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	if s.Aborted {
		return fmt.Sprintf("Fetch for %s stopped: API quota exhausted after %d of %d matches (%d found) in %s",
			s.Day, s.Reached, s.Reached+s.Remaining, s.Found, duration)
	}
	return fmt.Sprintf("Fetch for %s complete: %d processed, %d found, %d empty, %d capped, %d skipped in %s",
		s.Day, s.Processed, s.Found, s.Empty, s.Capped, s.Skipped, duration)
}
