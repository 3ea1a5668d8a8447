// Package textutil provides accent-insensitive text folding and tokenization.
// The matcher, ranker, channel directory and interest policy fold names
// through it; the matcher also tokenizes team names with it.
//
// Fold lowercases text, decomposes it, and drops combining marks so that
// "Atlético" and "Atletico" compare equal. A handful of letters that Unicode
// does not decompose (ø, æ, ł, ß, ...) are transliterated explicitly.
// Tokenize splits folded text on anything that is not a letter or digit.
package textutil
