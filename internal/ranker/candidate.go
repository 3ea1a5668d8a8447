package ranker

import "time"

// Candidate is an unpersisted video under evaluation for one match.
// Optional enrichment fields stay nil or empty until video details are fetched.
type Candidate struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time

	ViewCount      *int64
	Duration       string
	BlockedRegions []string
	AllowedRegions []string

	Official bool
	Score    int
}

// Unrestricted reports whether the video carries no regional restriction.
func (c Candidate) Unrestricted() bool {
	return len(c.BlockedRegions) == 0 && len(c.AllowedRegions) == 0
}
