// Package store persists matches, their resolved highlights, and the
// per-match fetch bookkeeping.
//
// Fetch state lives in its own table keyed by match id so fixture data and
// orchestration counters evolve independently. A match has at most one
// highlight; SaveHighlight refuses to overwrite and only ReplaceHighlight,
// the manual override path, may change an existing row. Match status only
// moves forward (scheduled, live, finished).
//
// The SQLite implementation lives here; internal/store/postgres provides the
// same Repository on PostgreSQL.
package store
