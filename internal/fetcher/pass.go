package fetcher

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Pass names one of the scheduled daily runs.
type Pass string

const (
	// PassToday retries today's finished matches throughout the day.
	PassToday Pass = "today"
	// PassYesterdayMorning is the silent catch-up pass over yesterday.
	PassYesterdayMorning Pass = "yesterday-morning"
	// PassYesterdayAfternoon is the last pass over yesterday, followed by escalation.
	PassYesterdayAfternoon Pass = "yesterday-afternoon"
)

// Passes lists every pass in schedule order.
var Passes = []Pass{PassToday, PassYesterdayMorning, PassYesterdayAfternoon}

// ParsePass accepts a pass name case-insensitively.
func ParsePass(value string) (Pass, error) {
	normalized := Pass(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return PassToday, nil
	}
	if slices.Contains(Passes, normalized) {
		return normalized, nil
	}
	return "", fmt.Errorf("unknown pass %q (want one of %s)", value, PassNames())
}

// PassNames joins the pass names for flag help and errors.
func PassNames() string {
	names := make([]string, len(Passes))
	for i, p := range Passes {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// TargetDay returns the UTC day the pass covers relative to now.
func (p Pass) TargetDay(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if p == PassYesterdayMorning || p == PassYesterdayAfternoon {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// Escalates reports whether unresolved matches are escalated after the pass.
func (p Pass) Escalates() bool {
	return p == PassYesterdayAfternoon
}

func (p Pass) String() string {
	return string(p)
}
