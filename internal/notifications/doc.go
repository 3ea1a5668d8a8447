// Package notifications delivers fetch events to operators.
//
// Two transports are supported: ntfy push messages for short status updates
// and SES email for the missing-highlights escalation digest. NewService
// combines whichever transports are configured, applies the per-event toggles
// from config.toml, and degrades to a no-op when nothing is configured.
// Callers depend only on the Service interface.
package notifications
