package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"replay/internal/store"
)

const matchColumns = `id, external_id, home_team, away_team, competition, match_date,
    status, home_score, away_score, created_at, updated_at`

// UpsertMatch inserts m or updates the row with the same external id. The
// CASE keeps the status from moving backwards.
func (s *Store) UpsertMatch(ctx context.Context, m *store.Match) (*store.Match, error) {
	if err := store.ValidateMatch(m); err != nil {
		return nil, err
	}
	status := m.Status
	if status == "" {
		status = store.StatusScheduled
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO matches (external_id, home_team, away_team, competition, match_date, match_day,
            status, home_score, away_score)
         VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9)
         ON CONFLICT (external_id) DO UPDATE SET
            home_team = EXCLUDED.home_team, away_team = EXCLUDED.away_team,
            competition = EXCLUDED.competition, match_date = EXCLUDED.match_date,
            match_day = EXCLUDED.match_day,
            status = CASE
                WHEN `+statusRankSQL("EXCLUDED.status")+` > `+statusRankSQL("matches.status")+`
                THEN EXCLUDED.status ELSE matches.status END,
            home_score = COALESCE(EXCLUDED.home_score, matches.home_score),
            away_score = COALESCE(EXCLUDED.away_score, matches.away_score),
            updated_at = now()
         RETURNING `+matchColumns,
		m.ExternalID, m.HomeTeam, m.AwayTeam, m.Competition, m.MatchDate.UTC(), store.DayKey(m.MatchDate),
		string(status), m.HomeScore, m.AwayScore,
	)
	stored, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("upsert match %s: %w", m.ExternalID, err)
	}
	return stored, nil
}

func statusRankSQL(column string) string {
	return `(CASE ` + column + ` WHEN 'finished' THEN 2 WHEN 'live' THEN 1 ELSE 0 END)`
}

// GetMatch returns the match with id or store.ErrNotFound.
func (s *Store) GetMatch(ctx context.Context, id int64) (*store.Match, error) {
	m, err := scanMatch(s.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// ListMatchesByDay returns matches on the UTC calendar day of day, by kickoff.
func (s *Store) ListMatchesByDay(ctx context.Context, day time.Time) ([]*store.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE match_day = $1::date ORDER BY match_date, id`,
		store.DayKey(day),
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*store.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(row pgx.Row) (*store.Match, error) {
	var (
		m      store.Match
		status string
	)
	if err := row.Scan(&m.ID, &m.ExternalID, &m.HomeTeam, &m.AwayTeam, &m.Competition, &m.MatchDate,
		&status, &m.HomeScore, &m.AwayScore, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = store.Status(status)
	m.MatchDate = m.MatchDate.UTC()
	return &m, nil
}
