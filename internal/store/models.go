package store

import (
	"strings"
	"time"
)

// Status is the match lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

var statusRank = map[Status]int{
	StatusScheduled: 0,
	StatusLive:      1,
	StatusFinished:  2,
}

// ParseStatus maps provider status strings onto the lifecycle.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "scheduled", "timed", "ns", "not_started", "status_scheduled", "":
		return StatusScheduled, true
	case "live", "in_play", "paused", "1h", "2h", "ht", "status_in_progress", "status_halftime":
		return StatusLive, true
	case "finished", "ft", "aet", "pen", "full_time", "status_final", "status_full_time":
		return StatusFinished, true
	}
	return "", false
}

// Advance returns the later of current and next so status never regresses.
func Advance(current, next Status) Status {
	if statusRank[next] > statusRank[current] {
		return next
	}
	return current
}

// Match is a fixture between two teams.
type Match struct {
	ID          int64
	ExternalID  string
	HomeTeam    string
	AwayTeam    string
	Competition string
	MatchDate   time.Time
	Status      Status
	HomeScore   *int
	AwayScore   *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Finished reports whether the match has ended.
func (m *Match) Finished() bool {
	return m != nil && m.Status == StatusFinished
}

// Day returns the UTC calendar day of the match as YYYY-MM-DD.
func (m *Match) Day() string {
	return DayKey(m.MatchDate)
}

// DayKey formats t as a UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Source records who created a highlight.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// Highlight is the resolved video for a match.
type Highlight struct {
	ID             int64
	MatchID        int64
	VideoID        string
	Title          string
	Description    string
	ThumbnailURL   string
	ChannelTitle   string
	PublishedAt    time.Time
	ViewCount      *int64
	Duration       string
	BlockedRegions []string
	AllowedRegions []string
	Source         Source
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Regions exposes the restriction lists for geo filtering.
func (h Highlight) Regions() (blocked, allowed []string) {
	return h.BlockedRegions, h.AllowedRegions
}

// URL returns the watch URL of the highlight.
func (h Highlight) URL() string {
	return "https://www.youtube.com/watch?v=" + h.VideoID
}

// Outcome names the result of the last fetch attempt.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeFound     Outcome = "found"
	OutcomeEmpty     Outcome = "empty"
	OutcomeTransient Outcome = "transient"
	OutcomeQuota     Outcome = "quota_exhausted"
	OutcomeCapped    Outcome = "capped"
)

// FetchState is the per-match orchestration bookkeeping.
type FetchState struct {
	MatchID       int64
	Attempts      int
	LastAttemptAt time.Time
	Terminal      bool
	LastOutcome   Outcome
}

// MatchHighlight pairs a match with its highlight, if any.
type MatchHighlight struct {
	Match     *Match
	Highlight *Highlight
	State     FetchState
}
