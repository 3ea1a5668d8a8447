// Package youtube is the minimal YouTube Data API v3 client used by the
// highlight search.
//
// Two endpoints are used: playlistItems.list to page through a channel's
// uploads playlist, and videos.list to enrich ranked candidates with view
// counts, durations, and region restrictions. The API key is supplied per
// call so the caller's key pool decides which credential is spent.
//
// Quota failures surface as *APIError values that match ErrQuotaExceeded via
// errors.Is; they are never retried here because the fix is a different key.
// Network errors and 429/5xx responses are retried with exponential backoff.
// Requests are paced with a token bucket, and video details are cached.
package youtube
