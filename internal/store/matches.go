package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const matchColumns = `id, external_id, home_team, away_team, competition, match_date,
    status, home_score, away_score, created_at, updated_at`

// UpsertMatch inserts m or updates the existing row with the same external id.
func (s *Store) UpsertMatch(ctx context.Context, m *Match) (*Match, error) {
	if err := validateMatch(m); err != nil {
		return nil, err
	}
	existing, err := s.matchByExternalID(ctx, m.ExternalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	now := formatTime(time.Now())
	status := m.Status
	if status == "" {
		status = StatusScheduled
	}
	if existing == nil {
		_, err = s.execWithRetry(ctx,
			`INSERT INTO matches (external_id, home_team, away_team, competition, match_date, match_day,
                status, home_score, away_score, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ExternalID, m.HomeTeam, m.AwayTeam, m.Competition,
			formatTime(m.MatchDate), DayKey(m.MatchDate),
			status, nullableInt(m.HomeScore), nullableInt(m.AwayScore), now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert match %s: %w", m.ExternalID, err)
		}
		return s.matchByExternalID(ctx, m.ExternalID)
	}

	status = Advance(existing.Status, status)
	_, err = s.execWithRetry(ctx,
		`UPDATE matches SET home_team = ?, away_team = ?, competition = ?, match_date = ?, match_day = ?,
            status = ?, home_score = COALESCE(?, home_score), away_score = COALESCE(?, away_score), updated_at = ?
         WHERE id = ?`,
		m.HomeTeam, m.AwayTeam, m.Competition, formatTime(m.MatchDate), DayKey(m.MatchDate),
		status, nullableInt(m.HomeScore), nullableInt(m.AwayScore), now, existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update match %s: %w", m.ExternalID, err)
	}
	return s.GetMatch(ctx, existing.ID)
}

// GetMatch returns the match with id or ErrNotFound.
func (s *Store) GetMatch(ctx context.Context, id int64) (*Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// ListMatchesByDay returns matches on the UTC calendar day of day, by kickoff.
func (s *Store) ListMatchesByDay(ctx context.Context, day time.Time) ([]*Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE match_day = ? ORDER BY match_date, id`,
		DayKey(day),
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) matchByExternalID(ctx context.Context, externalID string) (*Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE external_id = ?`, externalID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", externalID, err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	var (
		m         Match
		matchDate string
		status    string
		homeScore sql.NullInt64
		awayScore sql.NullInt64
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&m.ID, &m.ExternalID, &m.HomeTeam, &m.AwayTeam, &m.Competition, &matchDate,
		&status, &homeScore, &awayScore, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.MatchDate = parseTime(matchDate)
	m.Status = Status(status)
	m.HomeScore = intPtr(homeScore)
	m.AwayScore = intPtr(awayScore)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

// ValidateMatch checks the fields required to store a match.
func ValidateMatch(m *Match) error {
	return validateMatch(m)
}

func validateMatch(m *Match) error {
	switch {
	case m == nil:
		return errors.New("match must not be nil")
	case strings.TrimSpace(m.ExternalID) == "":
		return errors.New("match external id must be set")
	case strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "":
		return errors.New("match teams must be set")
	case strings.TrimSpace(m.Competition) == "":
		return errors.New("match competition must be set")
	case m.MatchDate.IsZero():
		return errors.New("match date must be set")
	}
	if m.Status != "" {
		if _, ok := statusRank[m.Status]; !ok {
			return fmt.Errorf("unknown match status %q", m.Status)
		}
	}
	return nil
}
