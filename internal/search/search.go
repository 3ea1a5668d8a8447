// Package search runs the per-match highlight pipeline: channel directory,
// playlist scan, team matching, ranking, and detail enrichment.
//
// Feeds are tried strictly in directory order, one at a time, and the first
// feed yielding a ranked candidate wins. Quota exhaustion stops the search
// immediately and is reported as QuotaExhausted, never as Empty. Other
// failures on a feed are logged and the next feed is tried.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"replay/internal/channels"
	"replay/internal/keypool"
	"replay/internal/logging"
	"replay/internal/matcher"
	"replay/internal/ranker"
	"replay/internal/scanner"
	"replay/internal/youtube"
)

// DefaultMaxCandidates bounds how many matched items are ranked per feed.
const DefaultMaxCandidates = 10

// Query describes one fixture.
type Query struct {
	Home        string
	Away        string
	Competition string
	Date        time.Time
}

// Scanner returns in-window items of a feed.
type Scanner interface {
	Scan(ctx context.Context, pool *keypool.Pool, playlistID string, window scanner.Window) ([]youtube.PlaylistItem, error)
}

// Enricher fetches video details for ranked candidates.
type Enricher interface {
	VideoDetails(ctx context.Context, apiKey string, ids []string) (map[string]youtube.VideoDetails, error)
}

// Options tune the pipeline.
type Options struct {
	DaysBefore    int
	DaysAfter     int
	MaxCandidates int
}

// Searcher wires the pipeline stages together.
type Searcher struct {
	directory *channels.Directory
	scanner   Scanner
	matcher   *matcher.Matcher
	ranker    *ranker.Ranker
	enricher  Enricher
	opts      Options
	logger    *slog.Logger
}

// New constructs a Searcher. enricher may be nil to skip enrichment.
func New(directory *channels.Directory, scan Scanner, match *matcher.Matcher, rank *ranker.Ranker, enricher Enricher, opts Options, logger *slog.Logger) *Searcher {
	if opts.DaysBefore < 0 {
		opts.DaysBefore = 0
	}
	if opts.DaysAfter < 0 {
		opts.DaysAfter = 0
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Searcher{
		directory: directory,
		scanner:   scan,
		matcher:   match,
		ranker:    rank,
		enricher:  enricher,
		opts:      opts,
		logger:    logger,
	}
}

// Search tries every feed configured for the fixture's competition.
func (s *Searcher) Search(ctx context.Context, pool *keypool.Pool, q Query) Outcome {
	feeds := s.directory.Order(q.Competition)
	if len(feeds) == 0 {
		s.logger.Debug("no feeds configured for competition", logging.String("competition", q.Competition))
		return Outcome{Kind: Empty}
	}
	var transientErrs []error
	for _, feed := range feeds {
		outcome := s.SearchFeed(ctx, pool, feed, q)
		switch outcome.Kind {
		case Found, QuotaExhausted:
			return outcome
		case Transient:
			s.logger.Warn("feed search failed; trying next feed",
				logging.String("playlist_id", feed),
				logging.Error(outcome.Err),
			)
			transientErrs = append(transientErrs, outcome.Err)
		}
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: Transient, Err: err}
		}
	}
	if len(transientErrs) == len(feeds) {
		return Outcome{Kind: Transient, Err: errors.Join(transientErrs...)}
	}
	return Outcome{Kind: Empty}
}

// SearchFeed runs the pipeline against a single feed.
func (s *Searcher) SearchFeed(ctx context.Context, pool *keypool.Pool, playlistID string, q Query) Outcome {
	window := scanner.WindowFor(q.Date, s.opts.DaysBefore, s.opts.DaysAfter)
	items, err := s.scanner.Scan(ctx, pool, playlistID, window)
	if err != nil {
		if errors.Is(err, scanner.ErrExhausted) {
			return Outcome{Kind: QuotaExhausted, Err: err}
		}
		return Outcome{Kind: Transient, Err: fmt.Errorf("scan %s: %w", playlistID, err)}
	}

	var matched []ranker.Candidate
	for _, item := range items {
		if !s.matcher.Accepts(item.Title, q.Home, q.Away) {
			continue
		}
		matched = append(matched, ranker.Candidate{
			VideoID:      item.VideoID,
			Title:        item.Title,
			Description:  item.Description,
			ThumbnailURL: item.ThumbnailURL,
			ChannelID:    item.ChannelID,
			ChannelTitle: item.ChannelTitle,
			PublishedAt:  item.PublishedAt,
		})
		if len(matched) >= s.opts.MaxCandidates {
			break
		}
	}

	ranked := s.ranker.Rank(matched, q.Home, q.Away)
	if len(ranked) == 0 {
		return Outcome{Kind: Empty, Channel: playlistID}
	}
	if s.enricher != nil {
		ranked = s.ranker.Rank(s.enrich(ctx, pool, ranked), q.Home, q.Away)
	}
	s.logger.Debug("ranked candidates",
		logging.String("playlist_id", playlistID),
		logging.Int("matched", len(matched)),
		logging.Int("ranked", len(ranked)),
		logging.String("top_video", ranked[0].VideoID),
	)
	return Outcome{Kind: Found, Candidates: ranked, Channel: playlistID}
}

// enrich fills view counts, durations, and region restrictions. Failures
// leave candidates unenriched; a quota failure rotates the pool once.
func (s *Searcher) enrich(ctx context.Context, pool *keypool.Pool, candidates []ranker.Candidate) []ranker.Candidate {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.VideoID
	}
	details, err := s.fetchDetails(ctx, pool, ids)
	if err != nil {
		s.logger.Warn("video detail enrichment failed; ranking without details", logging.Error(err))
	}
	enriched := make([]ranker.Candidate, len(candidates))
	for i, c := range candidates {
		if d, ok := details[c.VideoID]; ok {
			c.ViewCount = d.ViewCount
			c.Duration = d.Duration
			c.BlockedRegions = d.BlockedRegions
			c.AllowedRegions = d.AllowedRegions
		}
		enriched[i] = c
	}
	return enriched
}

func (s *Searcher) fetchDetails(ctx context.Context, pool *keypool.Pool, ids []string) (map[string]youtube.VideoDetails, error) {
	key, err := pool.Current()
	if err != nil {
		return nil, err
	}
	details, err := s.enricher.VideoDetails(ctx, key, ids)
	if err == nil || !youtube.IsQuotaError(err) {
		return details, err
	}
	if rotateErr := pool.Rotate(); rotateErr != nil {
		return nil, rotateErr
	}
	if key, err = pool.Current(); err != nil {
		return nil, err
	}
	return s.enricher.VideoDetails(ctx, key, ids)
}
