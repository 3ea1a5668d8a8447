// Package fetcher runs the attempt-capped highlight fetch over one calendar
// day of matches.
//
// A run owns its API key pool and processes matches strictly one at a time.
// Per match it decides whether to search at all, records the attempt before
// searching, and stores at most one highlight. A finished match moves from
// unattempted to found (terminal), awaiting retry, or capped (terminal).
// Quota exhaustion halts the remainder of the batch without touching the
// matches that were not reached. Runs are mutually exclusive through an
// exclusive file lock.
package fetcher
