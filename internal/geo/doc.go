// Package geo answers viewer-facing availability questions for stored
// highlights.
//
// Available is the read-time predicate: an unknown viewer region is always
// available; when a video carries an allowlist the region must appear in it;
// otherwise the region must not appear in the blocklist. Partition splits a
// slice of highlights with that predicate.
//
// Locator resolves a client IP address to an ISO 3166-1 alpha-2 country code
// through an ip-api.com style endpoint. Private, loopback, and malformed
// addresses resolve to the unknown region without a network call. Successful
// lookups are cached in memory and, when configured, in Redis.
package geo
