package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"testing"
	"time"

	"replay/internal/api"
	"replay/internal/store"
	"replay/internal/testsupport"
)

type stubLocator struct {
	country string
	ips     []string
}

func (s *stubLocator) Country(_ context.Context, ip string) string {
	s.ips = append(s.ips, ip)
	return s.country
}

var day = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	server  *httptest.Server
	locator *stubLocator
	blocked *store.Match
	allowed *store.Match
	free    *store.Match
	pending *store.Match
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	repo := testsupport.MustOpenStore(t, cfg)
	kickoff := day.Add(15 * time.Hour)
	f := &fixture{
		locator: &stubLocator{},
		blocked: testsupport.NewMatch(t, repo, "a", "Arsenal", "Chelsea", "Premier League", kickoff, store.StatusFinished),
		allowed: testsupport.NewMatch(t, repo, "b", "Celtic", "Rangers", "Scottish Premiership", kickoff, store.StatusFinished),
		free:    testsupport.NewMatch(t, repo, "c", "Lens", "Lille", "Ligue 1", kickoff, store.StatusFinished),
		pending: testsupport.NewMatch(t, repo, "d", "Roma", "Lazio", "Serie A", kickoff.Add(3*time.Hour), store.StatusFinished),
	}
	ctx := context.Background()
	for _, h := range []*store.Highlight{
		{MatchID: f.blocked.ID, VideoID: "v-blocked", Title: "Arsenal v Chelsea | Highlights", BlockedRegions: []string{"US"}},
		{MatchID: f.allowed.ID, VideoID: "v-allowed", Title: "Celtic v Rangers | Highlights", AllowedRegions: []string{"GB", "IE"}},
		{MatchID: f.free.ID, VideoID: "v-free", Title: "Lens v Lille | Highlights"},
	} {
		if err := repo.SaveHighlight(ctx, h); err != nil {
			t.Fatalf("SaveHighlight: %v", err)
		}
	}
	srv, err := api.New(repo, f.locator, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	f.server = httptest.NewServer(srv.Handler())
	t.Cleanup(f.server.Close)
	return f
}

func getJSON(t *testing.T, req *http.Request, wantStatus int, out any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s: status %d, want %d", req.URL, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	var body map[string]bool
	getJSON(t, newRequest(t, f.server.URL+"/healthz"), http.StatusOK, &body)
	if !body["ok"] {
		t.Fatalf("unexpected body %v", body)
	}
}

func ids(items []api.MatchHighlight) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Highlight.VideoID)
	}
	return out
}

func TestDayHighlightsPartitionsByRegion(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		region    string
		available []string
		blocked   []string
	}{
		{"US", []string{"v-free"}, []string{"v-blocked", "v-allowed"}},
		{"gb", []string{"v-blocked", "v-allowed", "v-free"}, nil},
		{"FR", []string{"v-blocked", "v-free"}, []string{"v-allowed"}},
	}
	for _, tc := range cases {
		var resp api.DayHighlights
		getJSON(t, newRequest(t, f.server.URL+"/highlights?date=2025-03-01&region="+tc.region), http.StatusOK, &resp)
		if got := ids(resp.Available); !slices.Equal(got, tc.available) {
			t.Fatalf("region %s: available %v, want %v", tc.region, got, tc.available)
		}
		if got := ids(resp.Blocked); !slices.Equal(got, tc.blocked) {
			t.Fatalf("region %s: blocked %v, want %v", tc.region, got, tc.blocked)
		}
		if len(resp.Pending) != 1 || resp.Pending[0].ID != f.pending.ID {
			t.Fatalf("region %s: unexpected pending %+v", tc.region, resp.Pending)
		}
	}
	if len(f.locator.ips) != 0 {
		t.Fatal("explicit region must not trigger an IP lookup")
	}
}

func TestUnknownRegionFailsOpen(t *testing.T) {
	f := newFixture(t)
	var resp api.DayHighlights
	getJSON(t, newRequest(t, f.server.URL+"/highlights?date=2025-03-01"), http.StatusOK, &resp)
	if len(resp.Available) != 3 || len(resp.Blocked) != 0 || resp.Region != "" {
		t.Fatalf("unknown region must keep every highlight available: %+v", resp)
	}
	if len(f.locator.ips) != 1 {
		t.Fatalf("expected one IP lookup, got %v", f.locator.ips)
	}
}

func TestRegionFromHeadersAndLocator(t *testing.T) {
	f := newFixture(t)
	url := f.server.URL + "/matches/" + itoa(f.blocked.ID) + "/highlight"

	req := newRequest(t, url)
	req.Header.Set("CF-IPCountry", "US")
	var resp api.MatchHighlight
	getJSON(t, req, http.StatusOK, &resp)
	if resp.Region != "US" || resp.Highlight == nil || resp.Highlight.Available {
		t.Fatalf("expected blocked highlight for US header, got %+v", resp)
	}
	if resp.Highlight.URL != "https://www.youtube.com/watch?v=v-blocked" {
		t.Fatalf("unexpected url %q", resp.Highlight.URL)
	}

	f.locator.country = "GB"
	req = newRequest(t, url)
	req.Header.Set("CF-IPCountry", "XX")
	req.Header.Set("X-Forwarded-For", "81.2.69.160, 10.0.0.1")
	resp = api.MatchHighlight{}
	getJSON(t, req, http.StatusOK, &resp)
	if resp.Region != "GB" || !resp.Highlight.Available {
		t.Fatalf("expected available highlight via locator, got %+v", resp)
	}
	if len(f.locator.ips) != 1 || f.locator.ips[0] != "81.2.69.160" {
		t.Fatalf("unexpected lookup ips %v", f.locator.ips)
	}
}

func TestMatchHighlightErrors(t *testing.T) {
	f := newFixture(t)
	getJSON(t, newRequest(t, f.server.URL+"/matches/abc/highlight"), http.StatusBadRequest, nil)
	getJSON(t, newRequest(t, f.server.URL+"/matches/999/highlight"), http.StatusNotFound, nil)
	getJSON(t, newRequest(t, f.server.URL+"/highlights?date=yesterday"), http.StatusBadRequest, nil)

	var resp api.MatchHighlight
	getJSON(t, newRequest(t, f.server.URL+"/matches/"+itoa(f.pending.ID)+"/highlight?region=US"), http.StatusOK, &resp)
	if resp.Highlight != nil || resp.Match.HomeTeam != "Roma" {
		t.Fatalf("expected pending match without highlight, got %+v", resp)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
