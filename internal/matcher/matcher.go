package matcher

import (
	"slices"
	"strings"

	"replay/internal/textutil"
)

var punctuationReplacer = strings.NewReplacer(
	"-", " ",
	"_", " ",
	".", " ",
	"'", "",
	"’", "",
	"&", " and ",
)

// Matcher holds the curated tables used to recognise teams in titles.
type Matcher struct {
	pairs      [][2]string
	ambiguous  map[string]struct{}
	shared     map[string]struct{}
	alternates map[string][]string
	canonical  map[string]string
	guards     map[string][]string
	keywords   []string
}

// Option adjusts the built-in tables.
type Option func(*Matcher)

// WithAlternates adds accepted spellings per team on top of the built-ins.
func WithAlternates(extra map[string][]string) Option {
	return func(m *Matcher) {
		for team, names := range extra {
			key := Normalize(team)
			for _, name := range names {
				if name = Normalize(name); name != "" {
					m.alternates[key] = append(m.alternates[key], name)
				}
			}
		}
	}
}

// WithAmbiguousPairs adds clubs that must be named in full.
func WithAmbiguousPairs(pairs [][2]string) Option {
	return func(m *Matcher) {
		for _, pair := range pairs {
			m.pairs = append(m.pairs, [2]string{Normalize(pair[0]), Normalize(pair[1])})
		}
	}
}

// New returns a matcher seeded with the built-in tables.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		pairs:      make([][2]string, 0, len(ambiguousPairs)),
		ambiguous:  make(map[string]struct{}, len(ambiguousPairs)*2),
		shared:     make(map[string]struct{}, len(ambiguousPairs)),
		alternates: make(map[string][]string, len(alternates)),
		canonical:  make(map[string]string),
		guards:     make(map[string][]string, len(guards)),
		keywords:   Keywords,
	}
	for _, pair := range ambiguousPairs {
		m.pairs = append(m.pairs, [2]string{Normalize(pair[0]), Normalize(pair[1])})
	}
	for team, names := range alternates {
		key := Normalize(team)
		for _, name := range names {
			m.alternates[key] = append(m.alternates[key], Normalize(name))
		}
	}
	for team, phrases := range guards {
		key := Normalize(team)
		for _, phrase := range phrases {
			m.guards[key] = append(m.guards[key], Normalize(phrase))
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, pair := range m.pairs {
		m.ambiguous[pair[0]] = struct{}{}
		m.ambiguous[pair[1]] = struct{}{}
		first := distinctiveTokens(pair[0])
		for _, token := range distinctiveTokens(pair[1]) {
			if slices.Contains(first, token) {
				m.shared[token] = struct{}{}
			}
		}
	}
	for team, names := range m.alternates {
		for _, name := range names {
			if _, taken := m.canonical[name]; !taken && name != "" {
				m.canonical[name] = team
			}
		}
	}
	return m
}

// Normalize folds value and flattens punctuation so "Paris Saint-Germain"
// and "paris saint germain" compare equal.
func Normalize(value string) string {
	folded := punctuationReplacer.Replace(textutil.Fold(value))
	return strings.Join(strings.Fields(folded), " ")
}

// Identifier returns the token that identifies team in a title. Members of
// an ambiguous pair, and any name whose distinctive token is shared by such
// a pair, identify only by their full name. An empty result means the name
// has no distinctive token.
func (m *Matcher) Identifier(team string) string {
	name := m.resolve(team)
	if name == "" {
		return ""
	}
	if _, ok := m.ambiguous[name]; ok {
		return name
	}
	tokens := distinctiveTokens(name)
	if len(tokens) == 0 {
		return ""
	}
	if _, ok := m.shared[tokens[0]]; ok {
		return name
	}
	return tokens[0]
}

// Present reports whether team is named in title.
func (m *Matcher) Present(title, team string) bool {
	name := m.resolve(team)
	if name == "" {
		return false
	}
	text := m.mask(Normalize(title), name)
	if text == "" {
		return false
	}
	if strings.Contains(text, name) {
		return true
	}
	for _, alt := range m.alternates[name] {
		if alt != "" && strings.Contains(text, alt) {
			return true
		}
	}
	if id := m.Identifier(team); id != "" && strings.Contains(text, id) {
		return true
	}
	return false
}

// resolve maps a spelling of team onto the curated name it stands for:
// "Man Utd" and "Manchester United FC" both become "manchester united".
// Names the tables do not know are returned normalized.
func (m *Matcher) resolve(team string) string {
	name := Normalize(team)
	if name == "" {
		return ""
	}
	if _, ok := m.ambiguous[name]; ok {
		return name
	}
	if _, ok := m.alternates[name]; ok {
		return name
	}
	if canonical, ok := m.canonical[name]; ok {
		return canonical
	}
	padded := " " + name + " "
	for _, pair := range m.pairs {
		for _, member := range pair {
			if strings.Contains(padded, " "+member+" ") {
				return member
			}
		}
	}
	return name
}

func distinctiveTokens(name string) []string {
	var tokens []string
	for _, token := range textutil.Tokenize(name, 3) {
		if _, generic := genericTokens[token]; generic {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// HasKeyword reports whether title carries a highlight keyword.
func (m *Matcher) HasKeyword(title string) bool {
	text := Normalize(title)
	for _, kw := range m.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Accepts reports whether title refers to the fixture between home and away.
func (m *Matcher) Accepts(title, home, away string) bool {
	if !m.HasKeyword(title) {
		return false
	}
	return m.Present(title, home) && m.Present(title, away)
}

func (m *Matcher) mask(text, team string) string {
	for _, phrase := range m.guards[team] {
		if phrase == "" {
			continue
		}
		text = strings.ReplaceAll(text, phrase, " ")
	}
	return text
}
