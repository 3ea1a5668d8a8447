package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"replay/internal/store"
)

// GetFetchState returns the bookkeeping for matchID; a match that was never
// attempted has a zero state.
func (s *Store) GetFetchState(ctx context.Context, matchID int64) (store.FetchState, error) {
	state := store.FetchState{MatchID: matchID}
	var (
		lastAttempt *time.Time
		outcome     string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT attempts, last_attempt_at, terminal, last_outcome FROM fetch_state WHERE match_id = $1`,
		matchID,
	).Scan(&state.Attempts, &lastAttempt, &state.Terminal, &outcome)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get fetch state %d: %w", matchID, err)
	}
	if lastAttempt != nil {
		state.LastAttemptAt = lastAttempt.UTC()
	}
	state.LastOutcome = store.Outcome(outcome)
	return state, nil
}

// RecordAttempt increments the attempt counter of matchID and stamps at.
func (s *Store) RecordAttempt(ctx context.Context, matchID int64, at time.Time) (store.FetchState, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fetch_state (match_id, attempts, last_attempt_at) VALUES ($1, 1, $2)
         ON CONFLICT (match_id) DO UPDATE SET
            attempts = fetch_state.attempts + 1, last_attempt_at = EXCLUDED.last_attempt_at`,
		matchID, at.UTC(),
	)
	if err != nil {
		return store.FetchState{}, fmt.Errorf("record attempt %d: %w", matchID, err)
	}
	return s.GetFetchState(ctx, matchID)
}

// SetOutcome stores the result of the last attempt for matchID.
func (s *Store) SetOutcome(ctx context.Context, matchID int64, outcome store.Outcome, terminal bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fetch_state (match_id, attempts, terminal, last_outcome) VALUES ($1, 0, $2, $3)
         ON CONFLICT (match_id) DO UPDATE SET
            terminal = EXCLUDED.terminal, last_outcome = EXCLUDED.last_outcome`,
		matchID, terminal, string(outcome),
	)
	if err != nil {
		return fmt.Errorf("set fetch outcome %d: %w", matchID, err)
	}
	return nil
}
