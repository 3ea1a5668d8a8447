package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"replay/internal/store"
	"replay/internal/store/postgres"
)

// connect opens the database named by REPLAY_TEST_DATABASE_URL or skips.
func connect(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("REPLAY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("REPLAY_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := postgres.Connect(ctx, url, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := postgres.Connect(context.Background(), " ", nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestPostgresHighlightLifecycle(t *testing.T) {
	s := connect(t)
	ctx := context.Background()
	kickoff := time.Date(2025, 3, 2, 16, 30, 0, 0, time.UTC)
	externalID := "test-" + uuid.NewString()

	m, err := s.UpsertMatch(ctx, &store.Match{
		ExternalID: externalID, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
		Competition: "Premier League", MatchDate: kickoff, Status: store.StatusFinished,
	})
	if err != nil {
		t.Fatalf("UpsertMatch: %v", err)
	}
	again, err := s.UpsertMatch(ctx, &store.Match{
		ExternalID: externalID, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
		Competition: "Premier League", MatchDate: kickoff, Status: store.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("UpsertMatch: %v", err)
	}
	if again.ID != m.ID || again.Status != store.StatusFinished {
		t.Fatalf("expected finished status to stick, got %+v", again)
	}

	state, err := s.RecordAttempt(ctx, m.ID, kickoff.Add(4*time.Hour))
	if err != nil || state.Attempts != 1 {
		t.Fatalf("RecordAttempt: %+v %v", state, err)
	}

	first := &store.Highlight{MatchID: m.ID, VideoID: "v1", Title: "Arsenal 2-1 Chelsea highlights", BlockedRegions: []string{"US"}}
	if err := s.SaveHighlight(ctx, first); err != nil {
		t.Fatalf("SaveHighlight: %v", err)
	}
	err = s.SaveHighlight(ctx, &store.Highlight{MatchID: m.ID, VideoID: "v2", Title: "dup"})
	if !errors.Is(err, store.ErrHighlightExists) {
		t.Fatalf("expected ErrHighlightExists, got %v", err)
	}

	if err := s.ReplaceHighlight(ctx, &store.Highlight{MatchID: m.ID, VideoID: "v3", Title: "manual"}); err != nil {
		t.Fatalf("ReplaceHighlight: %v", err)
	}
	got, err := s.GetHighlight(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetHighlight: %v", err)
	}
	if got.VideoID != "v3" || got.Source != store.SourceManual {
		t.Fatalf("unexpected highlight %+v", got)
	}
	state, err = s.GetFetchState(ctx, m.ID)
	if err != nil || !state.Terminal || state.LastOutcome != store.OutcomeFound {
		t.Fatalf("expected terminal found state, got %+v %v", state, err)
	}
}
