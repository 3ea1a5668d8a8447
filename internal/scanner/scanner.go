// Package scanner pages through a channel's uploads playlist and keeps the
// items published inside a match's date window.
//
// Pagination is capped to bound quota spend per channel per match. On a
// quota failure the scanner rotates the run's key pool and retries the same
// page; when no key remains it returns ErrExhausted, which callers must not
// confuse with an empty result. By default the whole page budget is scanned
// because upload feeds can contain pinned or out-of-order items. The optional
// early exit stops only after a page that is entirely older than the window
// and whose items were observed in non-increasing publish order.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"replay/internal/keypool"
	"replay/internal/logging"
	"replay/internal/youtube"
)

// ErrExhausted means the feed could not be searched because every API key
// has run out of quota.
var ErrExhausted = errors.New("scan aborted: api keys exhausted")

// Lister fetches one page of a playlist.
type Lister interface {
	PlaylistItems(ctx context.Context, apiKey, playlistID, pageToken string, pageSize int) (*youtube.PlaylistPage, error)
}

// Options bounds a scan.
type Options struct {
	MaxPages             int
	PageSize             int
	EarlyExitOnStalePage bool
}

// Scanner reads uploads feeds.
type Scanner struct {
	lister Lister
	opts   Options
	logger *slog.Logger
}

// New constructs a scanner. Zero options fall back to 3 pages of 50 items.
func New(lister Lister, opts Options, logger *slog.Logger) *Scanner {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 3
	}
	if opts.PageSize <= 0 || opts.PageSize > youtube.MaxPageSize {
		opts.PageSize = youtube.MaxPageSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{lister: lister, opts: opts, logger: logger}
}

// Scan returns the items of playlistID published inside window, in feed order.
func (s *Scanner) Scan(ctx context.Context, pool *keypool.Pool, playlistID string, window Window) ([]youtube.PlaylistItem, error) {
	var matched []youtube.PlaylistItem
	pageToken := ""
	for page := 1; page <= s.opts.MaxPages; page++ {
		result, err := s.fetchPage(ctx, pool, playlistID, pageToken)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			if window.Contains(item.PublishedAt) {
				matched = append(matched, item)
			}
		}
		if s.opts.EarlyExitOnStalePage && staleAndOrdered(result.Items, window) {
			s.logger.Debug("stopping scan at stale page",
				logging.String("playlist_id", playlistID),
				logging.Int("page", page),
			)
			break
		}
		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}
	return matched, nil
}

// fetchPage requests one page, rotating the key pool on every quota
// failure until the page succeeds or no key remains.
func (s *Scanner) fetchPage(ctx context.Context, pool *keypool.Pool, playlistID, pageToken string) (*youtube.PlaylistPage, error) {
	for {
		key, err := pool.Current()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExhausted, err)
		}
		page, err := s.lister.PlaylistItems(ctx, key, playlistID, pageToken, s.opts.PageSize)
		if err == nil {
			return page, nil
		}
		if !youtube.IsQuotaError(err) {
			return nil, err
		}
		s.logger.Warn("api key quota exceeded; rotating",
			logging.String("playlist_id", playlistID),
			logging.Int("key_position", pool.Position()),
		)
		if rotateErr := pool.Rotate(); rotateErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrExhausted, rotateErr)
		}
	}
}

func staleAndOrdered(items []youtube.PlaylistItem, window Window) bool {
	if len(items) == 0 {
		return false
	}
	for i, item := range items {
		if !item.PublishedAt.Before(window.Start) {
			return false
		}
		if i > 0 && item.PublishedAt.After(items[i-1].PublishedAt) {
			return false
		}
	}
	return true
}
