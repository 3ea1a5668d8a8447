package fetcher

import (
	"fmt"
	"time"

	"replay/internal/notifications"
)

// Report is the batch-level outcome of one run.
type Report struct {
	RunID string
	Pass  Pass
	Day   string

	// Processed counts matches that were searched in this run.
	Processed int
	Found     int
	Empty     int
	Transient int
	Capped    int
	// Skipped counts matches that needed no search.
	Skipped int

	// Aborted is set when every API key ran out of quota. Reached counts the
	// matches searched before the halt, including the one that hit it, and
	// Remaining counts the matches the run never looked at.
	Aborted   bool
	Reached   int
	Remaining int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r == nil || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Missing counts searched matches that still have no highlight.
func (r *Report) Missing() int {
	if r == nil {
		return 0
	}
	return r.Empty + r.Transient + r.Capped
}

// Summary renders a one-line operator message. Quota exhaustion is always
// reported as such and never as an empty result.
func (r *Report) Summary() string {
	if r == nil {
		return "no run"
	}
	if r.Aborted {
		return fmt.Sprintf("%s: ran out of API quota after %d match(es); %d found, %d not reached and left for the next run",
			r.Day, r.Reached, r.Found, r.Remaining)
	}
	if r.Processed == 0 {
		return fmt.Sprintf("%s: nothing to fetch (%d skipped)", r.Day, r.Skipped)
	}
	return fmt.Sprintf("%s: %d processed, %d found, %d still missing (%d capped), %d skipped",
		r.Day, r.Processed, r.Found, r.Missing(), r.Capped, r.Skipped)
}

// BatchSummary converts the report for notification delivery.
func (r *Report) BatchSummary() notifications.BatchSummary {
	return notifications.BatchSummary{
		RunID:     r.RunID,
		Pass:      string(r.Pass),
		Day:       r.Day,
		Processed: r.Processed,
		Found:     r.Found,
		Empty:     r.Empty,
		Transient: r.Transient,
		Capped:    r.Capped,
		Skipped:   r.Skipped,
		Aborted:   r.Aborted,
		Reached:   r.Reached,
		Remaining: r.Remaining,
		Duration:  r.Duration(),
	}
}
