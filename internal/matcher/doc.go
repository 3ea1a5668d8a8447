// Package matcher decides whether a video title names one specific fixture.
//
// The matcher prefers false negatives over false positives. Titles and team
// names are folded (lowercase, accents removed, punctuation flattened) before
// comparison. A team is present in a title when its full name, one of its
// curated alternates, or its unique identifier appears in the title. The
// unique identifier is the first distinctive token of the name, except for
// curated ambiguous pairs (two clubs sharing a city, for example) where the
// full name is required. Guard phrases are masked out of the title before a
// team is tested so that overlapping names ("inter" inside "inter miami")
// never count.
//
// A title is accepted only when both teams are present and it carries one of
// the highlight keywords.
package matcher
