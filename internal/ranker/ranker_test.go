package ranker_test

import (
	"testing"

	"replay/internal/ranker"
)

func views(n int64) *int64 { return &n }

func TestRankReturnsEmptyWithoutOfficialOrExtended(t *testing.T) {
	r := ranker.New()
	got := r.Rank([]ranker.Candidate{
		{VideoID: "a", Title: "Arsenal 2-1 Chelsea highlights", ChannelTitle: "Random Fan Uploads"},
	}, "Arsenal", "Chelsea")
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestRankKeepsExtendedFromUnofficialChannels(t *testing.T) {
	r := ranker.New()
	got := r.Rank([]ranker.Candidate{
		{VideoID: "a", Title: "Arsenal 2-1 Chelsea extended highlights", ChannelTitle: "Fan Channel"},
		{VideoID: "b", Title: "Arsenal 2-1 Chelsea highlights", ChannelTitle: "Fan Channel"},
	}, "Arsenal", "Chelsea")
	if len(got) != 1 || got[0].VideoID != "a" {
		t.Fatalf("expected only the extended candidate, got %+v", got)
	}
	if got[0].Official {
		t.Fatal("fan channel must not be official")
	}
}

func TestRankOrdersByScore(t *testing.T) {
	r := ranker.New()
	got := r.Rank([]ranker.Candidate{
		{VideoID: "plain", Title: "Arsenal v Chelsea recap", ChannelTitle: "Premier League"},
		{VideoID: "popular", Title: "Arsenal v Chelsea | Highlights", ChannelTitle: "Premier League", ViewCount: views(2_000_000)},
		{VideoID: "extended", Title: "Extended Highlights: Arsenal v Chelsea", ChannelTitle: "NBC Sports", ViewCount: views(50_000)},
	}, "Arsenal", "Chelsea")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	order := []string{got[0].VideoID, got[1].VideoID, got[2].VideoID}
	want := []string{"extended", "popular", "plain"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", order, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Fatalf("scores not descending: %d then %d", got[i-1].Score, got[i].Score)
		}
	}
}

func TestScoreWeights(t *testing.T) {
	c := ranker.Candidate{
		Title:     "Atletico Madrid vs Sevilla | Extended Highlights & Goals",
		Official:  true,
		ViewCount: views(150_000),
	}
	// official 100 + extended 50 + highlights 40 + goals 30 + two names 50 + views 30 + unrestricted 30
	if got := ranker.Score(c, "Atlético Madrid", "Sevilla"); got != 330 {
		t.Fatalf("Score = %d, want 330", got)
	}
}

func TestGeoScore(t *testing.T) {
	unrestricted := ranker.GeoScore(ranker.Candidate{})
	oneBlocked := ranker.GeoScore(ranker.Candidate{BlockedRegions: []string{"US"}})
	fiveBlocked := ranker.GeoScore(ranker.Candidate{BlockedRegions: []string{"US", "CA", "MX", "BR", "AR"}})
	smallAllow := ranker.GeoScore(ranker.Candidate{AllowedRegions: []string{"GB", "IE"}})
	wideAllow := make([]string, 120)
	for i := range wideAllow {
		wideAllow[i] = "X"
	}
	largeAllow := ranker.GeoScore(ranker.Candidate{AllowedRegions: wideAllow})

	if !(unrestricted > oneBlocked && oneBlocked > fiveBlocked) {
		t.Fatalf("blocklist scores must shrink as the list grows: %d %d %d", unrestricted, oneBlocked, fiveBlocked)
	}
	if !(largeAllow > smallAllow) {
		t.Fatalf("wider allowlist should score higher: %d vs %d", largeAllow, smallAllow)
	}
	if largeAllow >= unrestricted {
		t.Fatalf("allowlist score %d must stay below unrestricted %d", largeAllow, unrestricted)
	}
}

func TestIsOfficialIsAccentInsensitive(t *testing.T) {
	r := ranker.New("Canal Fútbol")
	if !r.IsOfficial("beIN SPORTS USA") {
		t.Fatal("expected bein sports to be official")
	}
	if !r.IsOfficial("Süper Lig") {
		t.Fatal("expected accent-insensitive match for super lig")
	}
	if !r.IsOfficial("canal futbol") {
		t.Fatal("expected extra official channel")
	}
}
