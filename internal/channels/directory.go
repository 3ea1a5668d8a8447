package channels

import (
	"sort"
	"strings"

	"replay/internal/textutil"
)

// Uploads playlists of the broadcasters used by the built-in directory.
const (
	PremierLeague = "UUG5qGWdu8nIRZqJ_GgDwQ-w"
	LaLiga        = "UUTv-XvfzLX3i4IGWAm4sbmA"
	Bundesliga    = "UUGYYNGmyhZ_kwBF_lqqXdAQ"
	SerieA        = "UUBJeMCIeLQos7wacox4hmLQ"
	Ligue1        = "UUFosdztTqHjV_3YcR9gGSKg"
	CBSGolazo     = "UUET00YnetHT7tOpu12v8jxg"
	ESPNFC        = "UU6c1z7bA__85CIWZ_jpCK-Q"
	CoupeDeFrance = "UU0YatYmg5JRYzXJPxIdRd8g"
	SkySports     = "UUKy1dAqELo0zrOtPkf0eTMw"
	NBCSports     = "UUqZQlzSHbVJrwrn5XvzrzcA"
)

// Entry is the feed order for a single competition.
type Entry struct {
	Primary   string   `toml:"primary" json:"primary"`
	Fallbacks []string `toml:"fallbacks" json:"fallbacks"`
}

// Directory is a read-only competition to feed mapping.
type Directory struct {
	entries map[string]Entry
	names   map[string]string
}

// New builds a directory from entries keyed by competition name.
func New(entries map[string]Entry) *Directory {
	d := &Directory{
		entries: make(map[string]Entry, len(entries)),
		names:   make(map[string]string, len(entries)),
	}
	for name, entry := range entries {
		d.set(name, entry)
	}
	return d
}

// Default returns the built-in directory.
func Default() *Directory {
	return New(map[string]Entry{
		"Premier League":   {Primary: PremierLeague, Fallbacks: []string{NBCSports, SkySports, ESPNFC, CBSGolazo}},
		"La Liga":          {Primary: LaLiga, Fallbacks: []string{ESPNFC, CBSGolazo}},
		"Bundesliga":       {Primary: Bundesliga, Fallbacks: []string{ESPNFC}},
		"Serie A":          {Primary: SerieA, Fallbacks: []string{CBSGolazo, ESPNFC}},
		"Ligue 1":          {Primary: Ligue1, Fallbacks: []string{ESPNFC}},
		"Champions League": {Primary: CBSGolazo, Fallbacks: []string{ESPNFC, SkySports, NBCSports}},
		"Europa League":    {Primary: CBSGolazo, Fallbacks: []string{ESPNFC, SkySports}},
		"FA Cup":           {Primary: PremierLeague, Fallbacks: []string{SkySports, ESPNFC}},
		"League Cup":       {Primary: CBSGolazo, Fallbacks: []string{SkySports, ESPNFC}},
		"Copa del Rey":     {Primary: ESPNFC, Fallbacks: []string{LaLiga}},
		"Coppa Italia":     {Primary: CBSGolazo, Fallbacks: []string{SerieA, ESPNFC}},
		"DFB-Pokal":        {Primary: Bundesliga, Fallbacks: []string{ESPNFC}},
		"Coupe de France":  {Primary: CoupeDeFrance, Fallbacks: []string{Ligue1}},
	})
}

// WithOverrides returns a copy of d where each override replaces the entry
// for its competition. Overrides without a primary feed are ignored.
func (d *Directory) WithOverrides(overrides map[string]Entry) *Directory {
	merged := New(nil)
	for key, entry := range d.entries {
		merged.entries[key] = entry
		merged.names[key] = d.names[key]
	}
	for name, entry := range overrides {
		if strings.TrimSpace(entry.Primary) == "" {
			continue
		}
		merged.set(name, entry)
	}
	return merged
}

func (d *Directory) set(name string, entry Entry) {
	key := textutil.Fold(name)
	if key == "" {
		return
	}
	fallbacks := make([]string, 0, len(entry.Fallbacks))
	for _, id := range entry.Fallbacks {
		if id = UploadsPlaylistID(id); id != "" {
			fallbacks = append(fallbacks, id)
		}
	}
	d.entries[key] = Entry{Primary: UploadsPlaylistID(entry.Primary), Fallbacks: fallbacks}
	d.names[key] = strings.TrimSpace(name)
}

// ChannelsFor returns the primary feed and fallbacks for competition. An
// unknown competition returns an empty primary and no fallbacks.
func (d *Directory) ChannelsFor(competition string) (string, []string) {
	entry, ok := d.entries[textutil.Fold(competition)]
	if !ok {
		return "", nil
	}
	return entry.Primary, append([]string(nil), entry.Fallbacks...)
}

// Order returns the feeds to try for competition, primary first, without
// duplicates.
func (d *Directory) Order(competition string) []string {
	primary, fallbacks := d.ChannelsFor(competition)
	if primary == "" {
		return nil
	}
	order := []string{primary}
	seen := map[string]struct{}{primary: {}}
	for _, id := range fallbacks {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	return order
}

// Competitions lists the configured competition names in sorted order.
func (d *Directory) Competitions() []string {
	names := make([]string, 0, len(d.names))
	for _, name := range d.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UploadsPlaylistID converts a channel id to its uploads playlist id.
// Playlist ids and other values are returned trimmed but otherwise unchanged.
func UploadsPlaylistID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "UC") && len(id) == 24 {
		return "UU" + id[2:]
	}
	return id
}
