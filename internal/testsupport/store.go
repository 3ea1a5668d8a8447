package testsupport

import (
	"context"
	"testing"
	"time"

	"replay/internal/config"
	"replay/internal/store"
)

// MustOpenStore opens a SQLite store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewMatch stores a fixture between home and away and returns it.
func NewMatch(t testing.TB, repo store.Repository, externalID, home, away, competition string, kickoff time.Time, status store.Status) *store.Match {
	t.Helper()

	m, err := repo.UpsertMatch(context.Background(), &store.Match{
		ExternalID:  externalID,
		HomeTeam:    home,
		AwayTeam:    away,
		Competition: competition,
		MatchDate:   kickoff,
		Status:      status,
	})
	if err != nil {
		t.Fatalf("UpsertMatch: %v", err)
	}
	return m
}
