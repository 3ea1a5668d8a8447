// Package interest decides which fixtures are worth spending API quota on.
//
// A disabled or nil Policy wants every match. When enabled, all-match
// leagues are always wanted, filtered competitions want any team of interest
// from any league, cups borrow their league's list, and leagues without a
// configured list are let through.
package interest

import (
	"strings"

	"replay/internal/textutil"
)

// Config lists the teams of interest per league.
type Config struct {
	Enabled              bool
	Teams                map[string][]string
	AllMatchLeagues      []string
	FilteredCompetitions []string
	CupToLeague          map[string]string
}

// Policy is an immutable selection policy.
type Policy struct {
	enabled  bool
	teams    map[string][]string
	all      map[string]struct{}
	filtered map[string]struct{}
	cups     map[string]string
	every    []string
}

// New folds the configured names so lookups ignore case and accents.
func New(cfg Config) *Policy {
	p := &Policy{
		enabled:  cfg.Enabled,
		teams:    make(map[string][]string, len(cfg.Teams)),
		all:      foldSet(cfg.AllMatchLeagues),
		filtered: foldSet(cfg.FilteredCompetitions),
		cups:     make(map[string]string, len(cfg.CupToLeague)),
	}
	seen := make(map[string]struct{})
	for league, teams := range cfg.Teams {
		key := textutil.Fold(league)
		for _, team := range teams {
			folded := textutil.Fold(team)
			if folded == "" {
				continue
			}
			p.teams[key] = append(p.teams[key], folded)
			if _, ok := seen[folded]; !ok {
				seen[folded] = struct{}{}
				p.every = append(p.every, folded)
			}
		}
	}
	for cup, league := range cfg.CupToLeague {
		p.cups[textutil.Fold(cup)] = textutil.Fold(league)
	}
	return p
}

// Enabled reports whether the policy filters anything.
func (p *Policy) Enabled() bool {
	return p != nil && p.enabled
}

// Wants reports whether either side of the fixture is of interest.
func (p *Policy) Wants(home, away, competition string) bool {
	if !p.Enabled() {
		return true
	}
	return p.TeamOfInterest(home, competition) || p.TeamOfInterest(away, competition)
}

// TeamOfInterest reports whether team is followed in competition.
func (p *Policy) TeamOfInterest(team, competition string) bool {
	if !p.Enabled() {
		return true
	}
	league := textutil.Fold(competition)
	if _, ok := p.all[league]; ok {
		return true
	}
	name := textutil.Fold(team)
	if _, ok := p.filtered[league]; ok {
		return containsTeam(p.every, name)
	}
	if mapped, ok := p.cups[league]; ok {
		league = mapped
	}
	teams, ok := p.teams[league]
	if !ok {
		return true
	}
	return containsTeam(teams, name)
}

// containsTeam matches loosely so "Arsenal FC" and "Arsenal" agree.
func containsTeam(teams []string, name string) bool {
	if name == "" {
		return false
	}
	for _, team := range teams {
		if strings.Contains(name, team) || strings.Contains(team, name) {
			return true
		}
	}
	return false
}

func foldSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		if folded := textutil.Fold(value); folded != "" {
			out[folded] = struct{}{}
		}
	}
	return out
}
