package matcher

// genericTokens never serve as a team identifier on their own.
var genericTokens = map[string]struct{}{
	"club":     {},
	"fc":       {},
	"afc":      {},
	"cf":       {},
	"the":      {},
	"united":   {},
	"city":     {},
	"town":     {},
	"athletic": {},
	"real":     {},
	"sporting": {},
}

// Keywords marks a title as highlight footage.
var Keywords = []string{"highlight", "extended", "recap", "goals", "summary", "resumen"}

// ambiguousPairs share a token that would identify either club when
// truncated; both sides require their full name.
var ambiguousPairs = [][2]string{
	{"Manchester United", "Manchester City"},
	{"Real Madrid", "Atlético Madrid"},
	{"AC Milan", "Inter Milan"},
	{"Borussia Dortmund", "Borussia Mönchengladbach"},
	{"Paris Saint-Germain", "Paris FC"},
	{"Sheffield United", "Sheffield Wednesday"},
	{"Bristol City", "Bristol Rovers"},
	{"West Ham United", "West Bromwich Albion"},
}

// alternates lists accepted spellings and abbreviations per team, keyed by
// the folded full name.
var alternates = map[string][]string{
	"manchester united":        {"man utd", "man united", "manchester utd"},
	"manchester city":          {"man city"},
	"tottenham hotspur":        {"tottenham", "spurs"},
	"wolverhampton wanderers":  {"wolves"},
	"brighton and hove albion": {"brighton"},
	"west ham united":          {"west ham"},
	"nottingham forest":        {"nottm forest", "forest"},
	"atletico madrid":          {"atletico de madrid", "atleti"},
	"real madrid":              {"real madrid cf"},
	"athletic club":            {"athletic bilbao"},
	"paris saint germain":      {"psg", "paris sg"},
	"bayern munich":            {"bayern munchen", "fc bayern"},
	"borussia dortmund":        {"dortmund", "bvb"},
	"borussia monchengladbach": {"gladbach", "monchengladbach"},
	"bayer leverkusen":         {"leverkusen", "bayer 04"},
	"inter milan":              {"inter", "internazionale"},
	"ac milan":                 {"milan ac"},
	"as roma":                  {"roma"},
	"napoli":                   {"ssc napoli"},
	"juventus":                 {"juve"},
	"sporting cp":              {"sporting lisbon", "sporting portugal"},
	"olympique lyonnais":       {"lyon"},
	"olympique de marseille":   {"marseille"},
}

// guards are phrases masked from a title before the keyed team is tested.
var guards = map[string][]string{
	"inter milan":     {"inter miami", "internacional", "international", "interview", "winter"},
	"as roma":         {"romania"},
	"chelsea":         {"chelsea women", "chelsea fc women"},
	"arsenal":         {"arsenal women"},
	"bayern munich":   {"bayern munich women"},
	"atletico madrid": {"atletico mineiro", "atletico nacional", "atletico san luis"},
	"napoli":          {"napoli women"},
}
