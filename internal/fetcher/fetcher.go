package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"replay/internal/keypool"
	"replay/internal/logging"
	"replay/internal/notifications"
	"replay/internal/ranker"
	"replay/internal/search"
	"replay/internal/store"
)

// DefaultMaxAttempts caps the searches spent on one match.
const DefaultMaxAttempts = 12

// ErrRunInProgress is returned when another run holds the fetch lock.
var ErrRunInProgress = errors.New("another fetch run is in progress")

// Searcher resolves candidates for one fixture.
type Searcher interface {
	Search(ctx context.Context, pool *keypool.Pool, q search.Query) search.Outcome
}

// Selector decides whether a fixture is worth spending quota on.
type Selector interface {
	Wants(home, away, competition string) bool
}

// Options tune an Orchestrator.
type Options struct {
	MaxAttempts int
	// LockPath is the run lock file; empty disables locking.
	LockPath string
	Now      func() time.Time
	// Selector filters matches before any search; nil selects everything.
	Selector Selector
	// Notifier receives quota and batch events; nil disables them.
	Notifier notifications.Service
}

// Orchestrator runs fetch batches.
type Orchestrator struct {
	repo     store.Repository
	searcher Searcher
	keys     []string
	opts     Options
	logger   *slog.Logger
}

// New constructs an Orchestrator. keys seed a fresh pool for every run.
func New(repo store.Repository, searcher Searcher, keys []string, opts Options, logger *slog.Logger) (*Orchestrator, error) {
	if repo == nil || searcher == nil {
		return nil, errors.New("fetcher requires a repository and a searcher")
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.Noop()
	}
	return &Orchestrator{
		repo:     repo,
		searcher: searcher,
		keys:     append([]string(nil), keys...),
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "fetcher"),
	}, nil
}

// RunPass runs the batch for the day covered by pass.
func (o *Orchestrator) RunPass(ctx context.Context, pass Pass) (*Report, error) {
	return o.run(ctx, pass.TargetDay(o.opts.Now()), pass)
}

// Run processes every match of day once.
func (o *Orchestrator) Run(ctx context.Context, day time.Time) (*Report, error) {
	return o.run(ctx, day, "")
}

func (o *Orchestrator) run(ctx context.Context, day time.Time, pass Pass) (*Report, error) {
	if len(o.keys) == 0 {
		return nil, keypool.ErrNoKeys
	}
	unlock, err := o.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	report := &Report{
		RunID:     runID,
		Pass:      pass,
		Day:       store.DayKey(day),
		StartedAt: o.opts.Now(),
	}
	// One pool per run; it is never shared across runs.
	pool := keypool.New(o.keys)
	logger.Info("fetch run started",
		logging.String(logging.FieldEventType, "fetch_started"),
		logging.String("day", report.Day),
		logging.String("pass", pass.String()),
		logging.Int("api_keys", pool.Len()),
	)

	matches, err := o.repo.ListMatchesByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", report.Day, err)
	}

	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = o.opts.Now()
			return report, err
		}
		halted, err := o.process(ctx, logger, pool, m, report)
		if err != nil {
			report.FinishedAt = o.opts.Now()
			return report, err
		}
		if halted {
			report.Aborted = true
			report.Reached = report.Processed
			report.Remaining = len(matches) - i - 1
			break
		}
	}
	report.FinishedAt = o.opts.Now()

	if report.Aborted {
		logging.WarnWithContext(logger, "fetch run halted", "quota_exhausted",
			logging.Int("reached", report.Reached),
			logging.Int("remaining", report.Remaining),
			logging.String(logging.FieldErrorHint, "add API keys or wait for the daily quota reset"),
			logging.String(logging.FieldImpact, "remaining matches are retried on the next run"),
		)
		if err := o.opts.Notifier.NotifyQuotaExhausted(ctx, report.Reached, report.Remaining); err != nil {
			logger.Warn("quota notification failed", logging.Error(err))
		}
	}
	logger.Info("fetch run finished",
		logging.String(logging.FieldEventType, "fetch_finished"),
		logging.String("summary", report.Summary()),
		logging.Duration("duration", report.Duration()),
	)
	if err := o.opts.Notifier.NotifyBatchCompleted(ctx, report.BatchSummary()); err != nil {
		logger.Warn("batch notification failed", logging.Error(err))
	}
	return report, nil
}

// process handles one match and reports whether the batch must halt.
func (o *Orchestrator) process(ctx context.Context, logger *slog.Logger, pool *keypool.Pool, m *store.Match, report *Report) (bool, error) {
	ctx = logging.WithMatchID(ctx, m.ID)
	logger = logger.With(
		logging.Int64(logging.FieldMatchID, m.ID),
		logging.String(logging.FieldCompetition, m.Competition),
	)

	wanted, err := o.shouldSearch(ctx, logger, m)
	if err != nil {
		return false, err
	}
	if !wanted {
		report.Skipped++
		return false, nil
	}

	state, err := o.repo.RecordAttempt(ctx, m.ID, o.opts.Now())
	if err != nil {
		return false, err
	}
	report.Processed++

	outcome := o.searcher.Search(ctx, pool, queryFor(m))
	switch outcome.Kind {
	case search.Found:
		top, _ := outcome.Top()
		if err := o.saveHighlight(ctx, m, top); err != nil {
			return false, err
		}
		if err := o.repo.SetOutcome(ctx, m.ID, store.OutcomeFound, true); err != nil {
			return false, err
		}
		report.Found++
		logger.Info("highlight found",
			logging.String("match", m.HomeTeam+" vs "+m.AwayTeam),
			logging.String("video_id", top.VideoID),
			logging.String(logging.FieldChannel, top.ChannelTitle),
			logging.Int("score", top.Score),
			logging.Int("attempt", state.Attempts),
		)
		return false, nil
	case search.QuotaExhausted:
		// The attempt stays recorded; the match is retried on the next run.
		if err := o.repo.SetOutcome(ctx, m.ID, store.OutcomeQuota, false); err != nil {
			return false, err
		}
		return true, nil
	}

	capped := state.Attempts >= o.opts.MaxAttempts
	result := store.OutcomeEmpty
	switch {
	case capped:
		result = store.OutcomeCapped
		report.Capped++
	case outcome.Kind == search.Transient:
		result = store.OutcomeTransient
		report.Transient++
	default:
		report.Empty++
	}
	if err := o.repo.SetOutcome(ctx, m.ID, result, capped); err != nil {
		return false, err
	}
	attrs := []logging.Attr{
		logging.String("match", m.HomeTeam+" vs "+m.AwayTeam),
		logging.String("outcome", string(result)),
		logging.Int("attempt", state.Attempts),
		logging.Int("max_attempts", o.opts.MaxAttempts),
	}
	if outcome.Err != nil {
		attrs = append(attrs, logging.Error(outcome.Err))
	}
	logger.Info("no highlight yet", logging.Args(attrs...)...)
	return false, nil
}

// shouldSearch applies the skip rules. Skipped matches cost no network calls
// and keep their state untouched.
func (o *Orchestrator) shouldSearch(ctx context.Context, logger *slog.Logger, m *store.Match) (bool, error) {
	if !m.Finished() {
		logger.Debug("match not finished", logging.String("status", string(m.Status)))
		return false, nil
	}
	has, err := o.repo.HasHighlight(ctx, m.ID)
	if err != nil {
		return false, err
	}
	if has {
		logger.Debug("highlight already stored")
		return false, nil
	}
	state, err := o.repo.GetFetchState(ctx, m.ID)
	if err != nil {
		return false, err
	}
	if state.Terminal {
		logger.Debug("match is terminal", logging.String("outcome", string(state.LastOutcome)))
		return false, nil
	}
	if state.Attempts >= o.opts.MaxAttempts {
		// Cap lowered since the last attempt.
		logger.Debug("attempt cap reached", logging.Int("attempts", state.Attempts))
		return false, o.repo.SetOutcome(ctx, m.ID, store.OutcomeCapped, true)
	}
	if o.opts.Selector != nil && !o.opts.Selector.Wants(m.HomeTeam, m.AwayTeam, m.Competition) {
		logger.Debug("no team of interest")
		return false, nil
	}
	return true, nil
}

func (o *Orchestrator) saveHighlight(ctx context.Context, m *store.Match, c ranker.Candidate) error {
	err := o.repo.SaveHighlight(ctx, &store.Highlight{
		MatchID:        m.ID,
		VideoID:        c.VideoID,
		Title:          c.Title,
		Description:    c.Description,
		ThumbnailURL:   c.ThumbnailURL,
		ChannelTitle:   c.ChannelTitle,
		PublishedAt:    c.PublishedAt,
		ViewCount:      c.ViewCount,
		Duration:       c.Duration,
		BlockedRegions: c.BlockedRegions,
		AllowedRegions: c.AllowedRegions,
		Source:         store.SourceAuto,
	})
	if errors.Is(err, store.ErrHighlightExists) {
		// A manual override landed while searching.
		return nil
	}
	return err
}

func (o *Orchestrator) acquire() (func(), error) {
	if o.opts.LockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(o.opts.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(o.opts.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release fetch lock", logging.String("lock", o.opts.LockPath), logging.Error(err))
		}
	}, nil
}

func queryFor(m *store.Match) search.Query {
	return search.Query{
		Home:        m.HomeTeam,
		Away:        m.AwayTeam,
		Competition: m.Competition,
		Date:        m.MatchDate,
	}
}
