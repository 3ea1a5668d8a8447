package api

import (
	"time"

	"replay/internal/geo"
	"replay/internal/store"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Match describes a fixture.
type Match struct {
	ID          int64  `json:"id"`
	HomeTeam    string `json:"homeTeam"`
	AwayTeam    string `json:"awayTeam"`
	Competition string `json:"competition"`
	Kickoff     string `json:"kickoff"`
	Status      string `json:"status"`
	HomeScore   *int   `json:"homeScore,omitempty"`
	AwayScore   *int   `json:"awayScore,omitempty"`
	Attempts    int    `json:"attempts"`
	LastOutcome string `json:"lastOutcome,omitempty"`
}

// Highlight describes a resolved video and its availability for the caller.
type Highlight struct {
	MatchID        int64    `json:"matchId"`
	VideoID        string   `json:"videoId"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	ChannelTitle   string   `json:"channelTitle,omitempty"`
	ThumbnailURL   string   `json:"thumbnailUrl,omitempty"`
	PublishedAt    string   `json:"publishedAt,omitempty"`
	ViewCount      *int64   `json:"viewCount,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	BlockedRegions []string `json:"blockedRegions,omitempty"`
	AllowedRegions []string `json:"allowedRegions,omitempty"`
	Source         string   `json:"source"`
	Available      bool     `json:"available"`
}

// MatchHighlight pairs a match with its highlight.
type MatchHighlight struct {
	Match     Match      `json:"match"`
	Highlight *Highlight `json:"highlight"`
	Region    string     `json:"region,omitempty"`
}

// DayHighlights groups a day's matches by availability.
type DayHighlights struct {
	Date      string           `json:"date"`
	Region    string           `json:"region,omitempty"`
	Available []MatchHighlight `json:"available"`
	Blocked   []MatchHighlight `json:"blocked"`
	Pending   []Match          `json:"pending"`
}

// FromMatch converts a stored match.
func FromMatch(m *store.Match, state store.FetchState) Match {
	return Match{
		ID:          m.ID,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		Competition: m.Competition,
		Kickoff:     formatTime(m.MatchDate),
		Status:      string(m.Status),
		HomeScore:   m.HomeScore,
		AwayScore:   m.AwayScore,
		Attempts:    state.Attempts,
		LastOutcome: string(state.LastOutcome),
	}
}

// FromHighlight converts a stored highlight and evaluates it for region.
func FromHighlight(h *store.Highlight, region string) *Highlight {
	if h == nil {
		return nil
	}
	return &Highlight{
		MatchID:        h.MatchID,
		VideoID:        h.VideoID,
		URL:            h.URL(),
		Title:          h.Title,
		ChannelTitle:   h.ChannelTitle,
		ThumbnailURL:   h.ThumbnailURL,
		PublishedAt:    formatTime(h.PublishedAt),
		ViewCount:      h.ViewCount,
		Duration:       h.Duration,
		BlockedRegions: h.BlockedRegions,
		AllowedRegions: h.AllowedRegions,
		Source:         string(h.Source),
		Available:      geo.Available(region, h.BlockedRegions, h.AllowedRegions),
	}
}

// Regions lets geo.Partition split converted highlights.
func (m MatchHighlight) Regions() (blocked, allowed []string) {
	if m.Highlight == nil {
		return nil, nil
	}
	return m.Highlight.BlockedRegions, m.Highlight.AllowedRegions
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
