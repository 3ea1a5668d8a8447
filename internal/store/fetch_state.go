package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetFetchState returns the bookkeeping for matchID; a match that was never
// attempted has a zero state.
func (s *Store) GetFetchState(ctx context.Context, matchID int64) (FetchState, error) {
	state := FetchState{MatchID: matchID}
	var (
		lastAttempt sql.NullString
		terminal    int
		outcome     sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT attempts, last_attempt_at, terminal, last_outcome FROM fetch_state WHERE match_id = ?`,
		matchID,
	).Scan(&state.Attempts, &lastAttempt, &terminal, &outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get fetch state %d: %w", matchID, err)
	}
	state.LastAttemptAt = parseTime(lastAttempt.String)
	state.Terminal = terminal != 0
	state.LastOutcome = Outcome(outcome.String)
	return state, nil
}

// RecordAttempt increments the attempt counter of matchID and stamps at.
func (s *Store) RecordAttempt(ctx context.Context, matchID int64, at time.Time) (FetchState, error) {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO fetch_state (match_id, attempts, last_attempt_at) VALUES (?, 1, ?)
         ON CONFLICT(match_id) DO UPDATE SET attempts = attempts + 1, last_attempt_at = excluded.last_attempt_at`,
		matchID, formatTime(at),
	)
	if err != nil {
		return FetchState{}, fmt.Errorf("record attempt %d: %w", matchID, err)
	}
	return s.GetFetchState(ctx, matchID)
}

// SetOutcome stores the result of the last attempt for matchID.
func (s *Store) SetOutcome(ctx context.Context, matchID int64, outcome Outcome, terminal bool) error {
	flag := 0
	if terminal {
		flag = 1
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO fetch_state (match_id, attempts, terminal, last_outcome) VALUES (?, 0, ?, ?)
         ON CONFLICT(match_id) DO UPDATE SET terminal = excluded.terminal, last_outcome = excluded.last_outcome`,
		matchID, flag, nullableString(string(outcome)),
	)
	if err != nil {
		return fmt.Errorf("set fetch outcome %d: %w", matchID, err)
	}
	return nil
}
