// Command replay resolves football match highlights from broadcaster upload
// feeds and serves them over a small read API.
//
// Scheduled invocations run "replay fetch --pass today" every few hours and
// the two "yesterday" passes the morning after; the afternoon pass escalates
// matches that are still missing to the operator.
package main
