// Package channels maps a competition to the broadcaster upload feeds that
// are searched for its highlights.
//
// Each Entry has one primary feed and an ordered list of fallbacks. Lookups
// are case- and accent-insensitive and never fail: a competition without an
// entry simply yields no feeds, and the caller finds nothing for it. The
// built-in table can be overridden per competition from configuration.
//
// Feed identifiers are uploads playlist ids ("UU..."). UploadsPlaylistID
// converts a channel id ("UC...") to its uploads playlist.
package channels
