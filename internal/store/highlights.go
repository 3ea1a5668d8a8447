package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const highlightColumns = `id, match_id, video_id, title, description, thumbnail_url, channel_title,
    published_at, view_count, duration, blocked_regions, allowed_regions, source, created_at, updated_at`

// GetHighlight returns the highlight of matchID or ErrNotFound.
func (s *Store) GetHighlight(ctx context.Context, matchID int64) (*Highlight, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+highlightColumns+` FROM highlights WHERE match_id = ?`, matchID)
	h, err := scanHighlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("highlight for match %d: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get highlight %d: %w", matchID, err)
	}
	return h, nil
}

// HasHighlight reports whether matchID already has a highlight.
func (s *Store) HasHighlight(ctx context.Context, matchID int64) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM highlights WHERE match_id = ?`, matchID).Scan(&count); err != nil {
		return false, fmt.Errorf("check highlight %d: %w", matchID, err)
	}
	return count > 0, nil
}

// SaveHighlight inserts the first highlight of a match.
func (s *Store) SaveHighlight(ctx context.Context, h *Highlight) error {
	if err := validateHighlight(h); err != nil {
		return err
	}
	exists, err := s.HasHighlight(ctx, h.MatchID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("match %d: %w", h.MatchID, ErrHighlightExists)
	}
	if h.Source == "" {
		h.Source = SourceAuto
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO highlights (match_id, video_id, title, description, thumbnail_url, channel_title,
            published_at, view_count, duration, blocked_regions, allowed_regions, source, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.MatchID, h.VideoID, h.Title, nullableString(h.Description), nullableString(h.ThumbnailURL),
		nullableString(h.ChannelTitle), nullableTime(h.PublishedAt), nullableInt64(h.ViewCount),
		nullableString(h.Duration), EncodeRegions(h.BlockedRegions), EncodeRegions(h.AllowedRegions),
		h.Source, formatTime(now), formatTime(now),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("match %d: %w", h.MatchID, ErrHighlightExists)
		}
		return fmt.Errorf("insert highlight %d: %w", h.MatchID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		h.ID = id
	}
	h.CreatedAt, h.UpdatedAt = now, now
	return nil
}

// ReplaceHighlight overwrites (or creates) the highlight of a match as a
// manual override and marks its fetch state terminal.
func (s *Store) ReplaceHighlight(ctx context.Context, h *Highlight) error {
	if err := validateHighlight(h); err != nil {
		return err
	}
	if _, err := s.GetMatch(ctx, h.MatchID); err != nil {
		return err
	}
	h.Source = SourceManual
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO highlights (match_id, video_id, title, description, thumbnail_url, channel_title,
            published_at, view_count, duration, blocked_regions, allowed_regions, source, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(match_id) DO UPDATE SET
            video_id = excluded.video_id, title = excluded.title, description = excluded.description,
            thumbnail_url = excluded.thumbnail_url, channel_title = excluded.channel_title,
            published_at = excluded.published_at, view_count = excluded.view_count,
            duration = excluded.duration, blocked_regions = excluded.blocked_regions,
            allowed_regions = excluded.allowed_regions, source = excluded.source,
            updated_at = excluded.updated_at`,
		h.MatchID, h.VideoID, h.Title, nullableString(h.Description), nullableString(h.ThumbnailURL),
		nullableString(h.ChannelTitle), nullableTime(h.PublishedAt), nullableInt64(h.ViewCount),
		nullableString(h.Duration), EncodeRegions(h.BlockedRegions), EncodeRegions(h.AllowedRegions),
		h.Source, now, now,
	)
	if err != nil {
		return fmt.Errorf("replace highlight %d: %w", h.MatchID, err)
	}
	return s.SetOutcome(ctx, h.MatchID, OutcomeFound, true)
}

// ListDay returns every match of the UTC day with its highlight and state.
func (s *Store) ListDay(ctx context.Context, day time.Time) ([]MatchHighlight, error) {
	matches, err := s.ListMatchesByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	out := make([]MatchHighlight, 0, len(matches))
	for _, m := range matches {
		entry := MatchHighlight{Match: m}
		h, err := s.GetHighlight(ctx, m.ID)
		switch {
		case err == nil:
			entry.Highlight = h
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		if entry.State, err = s.GetFetchState(ctx, m.ID); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func scanHighlight(row rowScanner) (*Highlight, error) {
	var (
		h            Highlight
		description  sql.NullString
		thumbnail    sql.NullString
		channelTitle sql.NullString
		publishedAt  sql.NullString
		viewCount    sql.NullInt64
		duration     sql.NullString
		blocked      sql.NullString
		allowed      sql.NullString
		source       string
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(&h.ID, &h.MatchID, &h.VideoID, &h.Title, &description, &thumbnail, &channelTitle,
		&publishedAt, &viewCount, &duration, &blocked, &allowed, &source, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	h.Description = description.String
	h.ThumbnailURL = thumbnail.String
	h.ChannelTitle = channelTitle.String
	h.PublishedAt = parseTime(publishedAt.String)
	h.ViewCount = int64Ptr(viewCount)
	h.Duration = duration.String
	h.BlockedRegions = DecodeRegions(blocked)
	h.AllowedRegions = DecodeRegions(allowed)
	h.Source = Source(source)
	h.CreatedAt = parseTime(createdAt)
	h.UpdatedAt = parseTime(updatedAt)
	return &h, nil
}

// ValidateHighlight checks the fields required to store a highlight.
func ValidateHighlight(h *Highlight) error {
	return validateHighlight(h)
}

func validateHighlight(h *Highlight) error {
	switch {
	case h == nil:
		return errors.New("highlight must not be nil")
	case h.MatchID <= 0:
		return errors.New("highlight match id must be set")
	case strings.TrimSpace(h.VideoID) == "":
		return errors.New("highlight video id must be set")
	case strings.TrimSpace(h.Title) == "":
		return errors.New("highlight title must be set")
	}
	return nil
}
