package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrHighlightExists is returned when a match already has a highlight.
	ErrHighlightExists = errors.New("match already has a highlight")
)

// Repository is the persistence surface used by the fetcher, escalation,
// API, and CLI.
type Repository interface {
	// UpsertMatch inserts or updates a match keyed by ExternalID. Status never
	// regresses. The stored match is returned.
	UpsertMatch(ctx context.Context, m *Match) (*Match, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatchesByDay(ctx context.Context, day time.Time) ([]*Match, error)

	GetFetchState(ctx context.Context, matchID int64) (FetchState, error)
	// RecordAttempt increments the attempt counter and stamps at.
	RecordAttempt(ctx context.Context, matchID int64, at time.Time) (FetchState, error)
	// SetOutcome records the result of the last attempt and the terminal flag.
	SetOutcome(ctx context.Context, matchID int64, outcome Outcome, terminal bool) error

	GetHighlight(ctx context.Context, matchID int64) (*Highlight, error)
	HasHighlight(ctx context.Context, matchID int64) (bool, error)
	// SaveHighlight stores the first highlight of a match and fails with
	// ErrHighlightExists otherwise.
	SaveHighlight(ctx context.Context, h *Highlight) error
	// ReplaceHighlight is the manual override path.
	ReplaceHighlight(ctx context.Context, h *Highlight) error
	ListDay(ctx context.Context, day time.Time) ([]MatchHighlight, error)

	Close() error
}
