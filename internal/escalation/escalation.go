// Package escalation hands matches that still lack a highlight after the
// last daily pass to the operator for a manual override.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"replay/internal/logging"
	"replay/internal/notifications"
	"replay/internal/store"
)

// Selector decides whether a fixture is of interest.
type Selector interface {
	Wants(home, away, competition string) bool
}

// Result lists the unresolved matches of a day.
type Result struct {
	Day      string
	Missing  []notifications.MissingMatch
	Notified bool
}

// Escalator collects unresolved matches and notifies.
type Escalator struct {
	repo     store.Repository
	notifier notifications.Service
	selector Selector
	logger   *slog.Logger
}

// New constructs an Escalator. selector may be nil.
func New(repo store.Repository, notifier notifications.Service, selector Selector, logger *slog.Logger) (*Escalator, error) {
	if repo == nil {
		return nil, errors.New("escalation requires a repository")
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Escalator{
		repo:     repo,
		notifier: notifier,
		selector: selector,
		logger:   logging.NewComponentLogger(logger, "escalation"),
	}, nil
}

// Collect returns the finished matches of day that have no highlight.
func (e *Escalator) Collect(ctx context.Context, day time.Time) ([]notifications.MissingMatch, error) {
	rows, err := e.repo.ListDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", store.DayKey(day), err)
	}
	var missing []notifications.MissingMatch
	for _, row := range rows {
		m := row.Match
		if m == nil || row.Highlight != nil || !m.Finished() {
			continue
		}
		if e.selector != nil && !e.selector.Wants(m.HomeTeam, m.AwayTeam, m.Competition) {
			continue
		}
		missing = append(missing, notifications.MissingMatch{
			MatchID:     m.ID,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			Competition: m.Competition,
			Kickoff:     m.MatchDate,
			Attempts:    row.State.Attempts,
			Capped:      row.State.LastOutcome == store.OutcomeCapped,
		})
	}
	return missing, nil
}

// Run collects and, when anything is missing, notifies.
func (e *Escalator) Run(ctx context.Context, day time.Time) (*Result, error) {
	missing, err := e.Collect(ctx, day)
	if err != nil {
		return nil, err
	}
	result := &Result{Day: store.DayKey(day), Missing: missing}
	logger := logging.WithContext(ctx, e.logger)
	if len(missing) == 0 {
		logger.Info("all matches resolved", logging.String("day", result.Day))
		return result, nil
	}
	logging.WarnWithContext(logger, "matches still missing highlights", "highlights_missing",
		logging.String("day", result.Day),
		logging.Int("count", len(missing)),
		logging.String(logging.FieldErrorHint, "set highlights manually with replay highlight set"),
	)
	if err := e.notifier.NotifyMissingHighlights(ctx, result.Day, missing); err != nil {
		return result, fmt.Errorf("notify missing highlights: %w", err)
	}
	result.Notified = true
	return result, nil
}
