package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"replay/internal/store"
)

const uniqueViolation = "23505"

const highlightColumns = `id, match_id, video_id, title, description, thumbnail_url, channel_title,
    published_at, view_count, duration, blocked_regions, allowed_regions, source, created_at, updated_at`

// GetHighlight returns the highlight of matchID or store.ErrNotFound.
func (s *Store) GetHighlight(ctx context.Context, matchID int64) (*store.Highlight, error) {
	h, err := scanHighlight(s.pool.QueryRow(ctx,
		`SELECT `+highlightColumns+` FROM highlights WHERE match_id = $1`, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("highlight for match %d: %w", matchID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get highlight %d: %w", matchID, err)
	}
	return h, nil
}

// HasHighlight reports whether matchID already has a highlight.
func (s *Store) HasHighlight(ctx context.Context, matchID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM highlights WHERE match_id = $1)`, matchID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check highlight %d: %w", matchID, err)
	}
	return exists, nil
}

// SaveHighlight inserts the first highlight of a match. The unique match_id
// constraint settles concurrent writers.
func (s *Store) SaveHighlight(ctx context.Context, h *store.Highlight) error {
	if err := store.ValidateHighlight(h); err != nil {
		return err
	}
	if h.Source == "" {
		h.Source = store.SourceAuto
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO highlights (match_id, video_id, title, description, thumbnail_url, channel_title,
            published_at, view_count, duration, blocked_regions, allowed_regions, source)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         RETURNING id, created_at, updated_at`,
		h.MatchID, h.VideoID, h.Title, h.Description, h.ThumbnailURL, h.ChannelTitle,
		nullableTime(h.PublishedAt), h.ViewCount, h.Duration, regions(h.BlockedRegions), regions(h.AllowedRegions),
		string(h.Source),
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("match %d: %w", h.MatchID, store.ErrHighlightExists)
		}
		return fmt.Errorf("insert highlight %d: %w", h.MatchID, err)
	}
	return nil
}

// ReplaceHighlight overwrites (or creates) the highlight of a match as a
// manual override and marks its fetch state terminal.
func (s *Store) ReplaceHighlight(ctx context.Context, h *store.Highlight) error {
	if err := store.ValidateHighlight(h); err != nil {
		return err
	}
	if _, err := s.GetMatch(ctx, h.MatchID); err != nil {
		return err
	}
	h.Source = store.SourceManual

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace highlight: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO highlights (match_id, video_id, title, description, thumbnail_url, channel_title,
            published_at, view_count, duration, blocked_regions, allowed_regions, source)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         ON CONFLICT (match_id) DO UPDATE SET
            video_id = EXCLUDED.video_id, title = EXCLUDED.title, description = EXCLUDED.description,
            thumbnail_url = EXCLUDED.thumbnail_url, channel_title = EXCLUDED.channel_title,
            published_at = EXCLUDED.published_at, view_count = EXCLUDED.view_count,
            duration = EXCLUDED.duration, blocked_regions = EXCLUDED.blocked_regions,
            allowed_regions = EXCLUDED.allowed_regions, source = EXCLUDED.source, updated_at = now()`,
		h.MatchID, h.VideoID, h.Title, h.Description, h.ThumbnailURL, h.ChannelTitle,
		nullableTime(h.PublishedAt), h.ViewCount, h.Duration, regions(h.BlockedRegions), regions(h.AllowedRegions),
		string(h.Source),
	)
	if err != nil {
		return fmt.Errorf("replace highlight %d: %w", h.MatchID, err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO fetch_state (match_id, attempts, terminal, last_outcome) VALUES ($1, 0, TRUE, $2)
         ON CONFLICT (match_id) DO UPDATE SET terminal = TRUE, last_outcome = EXCLUDED.last_outcome`,
		h.MatchID, string(store.OutcomeFound),
	)
	if err != nil {
		return fmt.Errorf("mark match %d terminal: %w", h.MatchID, err)
	}
	return tx.Commit(ctx)
}

// ListDay returns every match of the UTC day with its highlight and state.
func (s *Store) ListDay(ctx context.Context, day time.Time) ([]store.MatchHighlight, error) {
	matches, err := s.ListMatchesByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	out := make([]store.MatchHighlight, 0, len(matches))
	for _, m := range matches {
		entry := store.MatchHighlight{Match: m}
		h, err := s.GetHighlight(ctx, m.ID)
		switch {
		case err == nil:
			entry.Highlight = h
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		if entry.State, err = s.GetFetchState(ctx, m.ID); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func scanHighlight(row pgx.Row) (*store.Highlight, error) {
	var (
		h           store.Highlight
		publishedAt *time.Time
		source      string
	)
	if err := row.Scan(&h.ID, &h.MatchID, &h.VideoID, &h.Title, &h.Description, &h.ThumbnailURL, &h.ChannelTitle,
		&publishedAt, &h.ViewCount, &h.Duration, &h.BlockedRegions, &h.AllowedRegions, &source,
		&h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	if publishedAt != nil {
		h.PublishedAt = publishedAt.UTC()
	}
	if len(h.BlockedRegions) == 0 {
		h.BlockedRegions = nil
	}
	if len(h.AllowedRegions) == 0 {
		h.AllowedRegions = nil
	}
	h.Source = store.Source(source)
	return &h, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func regions(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
