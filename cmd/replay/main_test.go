package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"replay/internal/api"
	"replay/internal/testsupport"
)

type cliEnv struct {
	configPath string
	dataDir    string
	yt         *testsupport.FakeYouTube
}

func setupCLITestEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, key := range []string{"YOUTUBE_API_KEYS", "DATABASE_URL", "REDIS_URL", "NTFY_TOPIC", "NOTIFICATION_EMAIL", "SES_FROM_EMAIL"} {
		t.Setenv(key, "")
	}

	base := t.TempDir()
	yt := testsupport.NewFakeYouTube(t)
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[youtube]
api_keys = ["cli-key"]
base_url = %q
requests_per_second = 0

[channels."Premier League"]
primary = "PL-test"

[logging]
format = "json"
level = "warn"
`, dataDir, filepath.Join(base, "logs"), yt.URL())
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{configPath: configPath, dataDir: dataDir, yt: yt}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFixtures(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fixtures.json")
	fixtures := `[
  {"espn_event_id": "401", "home_team": "Arsenal", "away_team": "Chelsea", "league_name": "Premier League",
   "match_date": "2025-03-01", "match_time": "15:00", "status": "STATUS_FULL_TIME", "home_score": 2, "away_score": 1},
  {"external_id": "402", "home_team": "Everton", "away_team": "Fulham", "competition": "Premier League",
   "kickoff": "2025-03-01T17:30:00Z", "status": "scheduled"}
]`
	if err := os.WriteFile(path, []byte(fixtures), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return path
}

func TestCLIImportFetchAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	kickoff := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	env.yt.AddVideos("PL-test", testsupport.FakeVideo{
		ID:        "vid-arsenal",
		Title:     "Arsenal 2-1 Chelsea | Premier League Highlights",
		Channel:   "Premier League",
		Published: kickoff.Add(3 * time.Hour),
		Views:     1_500_000,
	})

	out, _, err := runCLI(t, []string{"matches", "import", writeFixtures(t, t.TempDir())}, env.configPath)
	if err != nil {
		t.Fatalf("matches import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 match(es) (1 finished)") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, _, err = runCLI(t, []string{"fetch", "--date", "2025-03-01"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, "1 processed, 1 found") {
		t.Fatalf("unexpected fetch output %q", out)
	}
	if !strings.Contains(out, "1 skipped") {
		t.Fatalf("expected scheduled match to be skipped, got %q", out)
	}
	if seen := env.yt.KeysSeen(); len(seen) == 0 || seen[0] != "cli-key" {
		t.Fatalf("expected configured key on requests, got %v", seen)
	}

	out, _, err = runCLI(t, []string{"highlight", "show", "1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("highlight show: %v", err)
	}
	var shown api.MatchHighlight
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode highlight show: %v (%q)", err, out)
	}
	if shown.Highlight == nil || shown.Highlight.VideoID != "vid-arsenal" {
		t.Fatalf("unexpected highlight %+v", shown.Highlight)
	}
	if shown.Match.Attempts != 1 || shown.Match.LastOutcome != "found" {
		t.Fatalf("unexpected match state %+v", shown.Match)
	}

	out, _, err = runCLI(t, []string{"status", "--date", "2025-03-01"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "2 match(es), 1 finished, 1 with highlights") {
		t.Fatalf("unexpected status output %q", out)
	}

	calls := env.yt.Calls()
	if _, _, err := runCLI(t, []string{"fetch", "--date", "2025-03-01"}, env.configPath); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := env.yt.Calls(); got != calls {
		t.Fatalf("expected no API calls for resolved day, got %d new", got-calls)
	}
}

func TestCLIFetchKeepsVideoDetailsOutOfRedis(t *testing.T) {
	env := setupCLITestEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	var dials atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			dials.Add(1)
			_ = conn.Close()
		}
	}()
	t.Setenv("REDIS_URL", "redis://"+ln.Addr().String()+"/0")

	kickoff := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	env.yt.AddVideos("PL-test", testsupport.FakeVideo{
		ID:        "vid-arsenal",
		Title:     "Arsenal 2-1 Chelsea | Premier League Highlights",
		Channel:   "Premier League",
		Published: kickoff.Add(3 * time.Hour),
	})
	if _, _, err := runCLI(t, []string{"matches", "import", writeFixtures(t, t.TempDir())}, env.configPath); err != nil {
		t.Fatalf("matches import: %v", err)
	}
	out, _, err := runCLI(t, []string{"fetch", "--date", "2025-03-01"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(out, "1 found") {
		t.Fatalf("unexpected fetch output %q", out)
	}
	if env.yt.VideoCalls() == 0 {
		t.Fatal("expected video details to be requested")
	}
	if n := dials.Load(); n != 0 {
		t.Fatalf("fetch run connected to redis %d time(s)", n)
	}
}

func TestCLIHighlightSetOverridesMatch(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"matches", "import", writeFixtures(t, t.TempDir())}, env.configPath); err != nil {
		t.Fatalf("matches import: %v", err)
	}

	out, _, err := runCLI(t, []string{"highlight", "set", "2", "https://youtu.be/manual123", "--channel", "Sky Sports"}, env.configPath)
	if err != nil {
		t.Fatalf("highlight set: %v", err)
	}
	if !strings.Contains(out, "manual123") {
		t.Fatalf("unexpected set output %q", out)
	}

	out, _, err = runCLI(t, []string{"highlight", "show", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("highlight show: %v", err)
	}
	for _, want := range []string{"Everton vs Fulham", "Everton vs Fulham | Highlights", "Sky Sports", "manual"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if env.yt.Calls() != 0 {
		t.Fatalf("manual override should not call the API, got %d calls", env.yt.Calls())
	}
}

func TestCLIFetchRequiresAPIKeys(t *testing.T) {
	env := setupCLITestEnv(t)
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	stripped := strings.Replace(string(data), `api_keys = ["cli-key"]`, "api_keys = []", 1)
	if err := os.WriteFile(env.configPath, []byte(stripped), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err = runCLI(t, []string{"fetch", "--date", "2025-03-01"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "youtube.api_keys is required") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestCLIMatchesImportRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"external_id": "9", "home_team": "A", "away_team": "B", "kickoff": "2025-03-01T12:00:00Z", "status": "abandoned"}]`), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	_, _, err := runCLI(t, []string{"matches", "import", path}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestCLITestNotifyWithoutTargets(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "Notification not sent") {
		t.Fatalf("unexpected output %q", out)
	}
}
