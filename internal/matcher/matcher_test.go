package matcher_test

import (
	"testing"

	"replay/internal/matcher"
)

func TestIdentifier(t *testing.T) {
	m := matcher.New()
	tests := []struct {
		team string
		want string
	}{
		{"Arsenal", "arsenal"},
		{"Newcastle United", "newcastle"},
		{"FC Barcelona", "barcelona"},
		{"Real Sociedad", "sociedad"},
		{"AS Roma", "roma"},
		{"Sporting CP", ""},
		{"Manchester City", "manchester city"},
		{"Atlético Madrid", "atletico madrid"},
		{"Inter Milan", "inter milan"},
	}
	for _, tt := range tests {
		if got := m.Identifier(tt.team); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.team, got, tt.want)
		}
	}
}

func TestAmbiguousPairsRequireFullName(t *testing.T) {
	m := matcher.New()
	pairs := []struct {
		first, second string
		shared        string
	}{
		{"Manchester United", "Manchester City", "Manchester"},
		{"Real Madrid", "Atlético Madrid", "Madrid"},
		{"AC Milan", "Inter Milan", "Milan"},
		{"Borussia Dortmund", "Borussia Mönchengladbach", "Borussia"},
		{"Paris Saint-Germain", "Paris FC", "Paris"},
		{"Sheffield United", "Sheffield Wednesday", "Sheffield"},
		{"Bristol City", "Bristol Rovers", "Bristol"},
		{"West Ham United", "West Bromwich Albion", "West"},
	}
	for _, pair := range pairs {
		title := pair.shared + " 2-1 Opponents | Highlights"
		if m.Present(title, pair.first) {
			t.Errorf("%q alone must not identify %q", pair.shared, pair.first)
		}
		if m.Present(title, pair.second) {
			t.Errorf("%q alone must not identify %q", pair.shared, pair.second)
		}
		if !m.Present(pair.first+" vs Opponents", pair.first) {
			t.Errorf("full name must identify %q", pair.first)
		}
		if !m.Present(pair.second+" vs Opponents", pair.second) {
			t.Errorf("full name must identify %q", pair.second)
		}
	}
}

func TestAlternatesSatisfyPresence(t *testing.T) {
	m := matcher.New()
	if !m.Present("Man Utd 3-0 Everton | Extended Highlights", "Manchester United") {
		t.Fatal("expected alternate 'man utd' to identify Manchester United")
	}
	if m.Present("Man Utd 3-0 Everton | Extended Highlights", "Manchester City") {
		t.Fatal("'man utd' must not identify Manchester City")
	}
	if !m.Present("PSG v Lille highlights", "Paris Saint-Germain") {
		t.Fatal("expected PSG alternate")
	}
	if !m.Present("Paris Saint Germain v Lille highlights", "Paris Saint-Germain") {
		t.Fatal("expected hyphen-insensitive match")
	}
}

func TestDiacriticInsensitivity(t *testing.T) {
	m := matcher.New()
	if !m.Present("Atletico Madrid 2-0 Getafe | Resumen", "Atlético Madrid") {
		t.Fatal("unaccented title should match accented team name")
	}
	if !m.Present("Atlético Madrid 2-0 Getafe | Resumen", "Atletico Madrid") {
		t.Fatal("accented title should match unaccented team name")
	}
	if !m.Present("Köln vs Mönchengladbach highlights", "Borussia Monchengladbach") {
		t.Fatal("expected umlaut-insensitive alternate match")
	}
}

func TestGuardsBlockKnownCollisions(t *testing.T) {
	m := matcher.New()
	if m.Present("Inter Miami 2-2 Orlando | Highlights", "Inter Milan") {
		t.Fatal("inter miami must not identify Inter Milan")
	}
	if m.Present("Post-match interview: goals and highlights", "Inter Milan") {
		t.Fatal("'interview' must not identify Inter Milan")
	}
	if m.Present("Romania 1-0 Kosovo | Highlights", "AS Roma") {
		t.Fatal("romania must not identify AS Roma")
	}
	if !m.Present("Inter 1-0 Roma | Serie A Highlights", "Inter Milan") {
		t.Fatal("expected inter alternate to identify Inter Milan")
	}
	if !m.Present("Inter 1-0 Roma | Serie A Highlights", "AS Roma") {
		t.Fatal("expected roma to identify AS Roma")
	}
}

func TestAcceptsRequiresBothTeamsAndKeyword(t *testing.T) {
	m := matcher.New()
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"full match", "Arsenal 2-1 Chelsea | Premier League Highlights", true},
		{"localized keyword", "Arsenal vs Chelsea - Resumen", true},
		{"recap", "Chelsea vs Arsenal recap", true},
		{"no keyword", "Arsenal 2-1 Chelsea | Full Match", false},
		{"one team", "Arsenal 2-1 Brentford | Highlights", false},
		{"wrong teams", "Liverpool 1-1 Everton | Highlights", false},
		{"keyword only", "Premier League Highlights", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Accepts(tt.title, "Arsenal", "Chelsea"); got != tt.want {
				t.Fatalf("Accepts(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestWithAlternatesExtendsTables(t *testing.T) {
	m := matcher.New(matcher.WithAlternates(map[string][]string{
		"Brentford": {"The Bees"},
	}))
	if !m.Present("The Bees 1-0 Fulham highlights", "Brentford") {
		t.Fatal("expected configured alternate to match")
	}
}

func TestWithAmbiguousPairs(t *testing.T) {
	m := matcher.New(matcher.WithAmbiguousPairs([][2]string{{"Sporting Braga", "Sporting Lisbon"}}))
	if got := m.Identifier("Sporting Braga"); got != "sporting braga" {
		t.Fatalf("expected full-name identifier, got %q", got)
	}
}

func TestAmbiguousClubsWithOtherSpellings(t *testing.T) {
	m := matcher.New()
	tests := []struct {
		name  string
		title string
		home  string
		away  string
		want  bool
	}{
		{"suffixed united vs city", "Manchester City 2-0 Arsenal | Extended Highlights", "Manchester United FC", "Arsenal", false},
		{"suffixed united vs itself", "Manchester United 2-0 Arsenal | Extended Highlights", "Manchester United FC", "Arsenal", true},
		{"abbreviated united vs city", "Manchester City 2-0 Arsenal | Highlights", "Manchester Utd", "Arsenal", false},
		{"abbreviated united via alternate", "Man Utd 2-0 Arsenal | Highlights", "Manchester Utd", "Arsenal", true},
		{"real madrid cf vs atletico", "Atletico Madrid 1-0 Sevilla highlights", "Real Madrid CF", "Sevilla", false},
		{"real madrid cf vs itself", "Real Madrid 1-0 Sevilla highlights", "Real Madrid CF", "Sevilla", true},
		{"unlisted madrid club", "Atletico Madrid 1-0 Sevilla highlights", "Madrid CFF", "Sevilla", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Accepts(tt.title, tt.home, tt.away); got != tt.want {
				t.Fatalf("Accepts(%q, %q, %q) = %v, want %v", tt.title, tt.home, tt.away, got, tt.want)
			}
		})
	}
	if got := m.Identifier("Manchester United FC"); got != "manchester united" {
		t.Fatalf("Identifier(Manchester United FC) = %q", got)
	}
	if got := m.Identifier("Real Madrid CF"); got != "real madrid" {
		t.Fatalf("Identifier(Real Madrid CF) = %q", got)
	}
}
