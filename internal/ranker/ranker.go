// Package ranker filters and orders matched candidates for a fixture.
//
// Candidates are kept only when they come from an official league or
// broadcaster channel, or when the title marks them as extended or full
// footage. If neither bucket has members the result is empty; the ranker
// never falls back to arbitrary matches. Survivors are scored on keyword
// presence, literal team names, view count tiers, and regional availability,
// then sorted best first. Callers persisting a highlight keep only the first.
package ranker

import (
	"sort"
	"strings"

	"replay/internal/textutil"
)

// Score weights.
const (
	officialBonus   = 100
	extendedBonus   = 50
	highlightsBonus = 40
	goalsBonus      = 30
	teamNameBonus   = 25

	views1MBonus   = 40
	views100kBonus = 30
	views10kBonus  = 20

	geoUnrestricted  = 30
	geoRestrictedCap = 25
	geoBlockedStep   = 2
)

// OfficialChannels are matched as substrings of the folded channel title.
var OfficialChannels = []string{
	"premier league", "la liga", "laliga", "serie a", "bundesliga", "ligue 1",
	"uefa", "champions league", "espn", "sky sports", "bt sport",
	"bein sports", "nbc sports", "cbs sports", "cbs sports golazo", "fox sports",
	"liga mx", "eredivisie", "primeira liga", "super lig",
	"dazn", "paramount+", "amazon prime", "tnt sports",
}

// Ranker scores candidates against a configurable official channel list.
type Ranker struct {
	official []string
}

// New returns a ranker using OfficialChannels plus any extra channel names.
func New(extraOfficial ...string) *Ranker {
	official := make([]string, 0, len(OfficialChannels)+len(extraOfficial))
	for _, name := range append(append([]string(nil), OfficialChannels...), extraOfficial...) {
		if name = textutil.Fold(name); name != "" {
			official = append(official, name)
		}
	}
	return &Ranker{official: official}
}

// IsOfficial reports whether channelTitle belongs to a league or broadcaster.
func (r *Ranker) IsOfficial(channelTitle string) bool {
	channel := textutil.Fold(channelTitle)
	if channel == "" {
		return false
	}
	for _, name := range r.official {
		if strings.Contains(channel, name) {
			return true
		}
	}
	return false
}

// Rank buckets, scores, and orders candidates for the home/away fixture.
// The input slice is not modified.
func (r *Ranker) Rank(candidates []Candidate, home, away string) []Candidate {
	var official, extended []Candidate
	for _, c := range candidates {
		c.Official = r.IsOfficial(c.ChannelTitle)
		title := textutil.Fold(c.Title)
		switch {
		case c.Official:
			official = append(official, c)
		case strings.Contains(title, "extended") || strings.Contains(title, "full"):
			extended = append(extended, c)
		}
	}
	ranked := append(official, extended...)
	if len(ranked) == 0 {
		return nil
	}
	for i := range ranked {
		ranked[i].Score = Score(ranked[i], home, away)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Score computes the ranking score of c for the home/away fixture.
func Score(c Candidate, home, away string) int {
	title := textutil.Fold(c.Title)
	score := 0
	if c.Official {
		score += officialBonus
	}
	if strings.Contains(title, "extended") {
		score += extendedBonus
	}
	if strings.Contains(title, "highlights") {
		score += highlightsBonus
	}
	if strings.Contains(title, "goals") {
		score += goalsBonus
	}
	if textutil.ContainsFolded(c.Title, home) {
		score += teamNameBonus
	}
	if textutil.ContainsFolded(c.Title, away) {
		score += teamNameBonus
	}
	if c.ViewCount != nil {
		switch views := *c.ViewCount; {
		case views > 1_000_000:
			score += views1MBonus
		case views > 100_000:
			score += views100kBonus
		case views > 10_000:
			score += views10kBonus
		}
	}
	return score + GeoScore(c)
}

// GeoScore rewards wide availability. Unrestricted videos score highest; a
// blocklist loses points per blocked region; an allowlist scores by its size
// and never reaches the unrestricted score.
func GeoScore(c Candidate) int {
	switch {
	case c.Unrestricted():
		return geoUnrestricted
	case len(c.AllowedRegions) > 0:
		return min(len(c.AllowedRegions), geoRestrictedCap)
	default:
		return max(geoRestrictedCap-geoBlockedStep*len(c.BlockedRegions), 0)
	}
}
