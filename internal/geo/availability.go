package geo

import "strings"

// Restricted is implemented by records carrying regional restriction lists.
type Restricted interface {
	Regions() (blocked, allowed []string)
}

// Available reports whether a video with the given lists can be watched from
// region. An empty region is unknown and always available.
func Available(region string, blocked, allowed []string) bool {
	region = NormalizeRegion(region)
	if region == "" {
		return true
	}
	if len(allowed) > 0 {
		return containsRegion(allowed, region)
	}
	if len(blocked) > 0 {
		return !containsRegion(blocked, region)
	}
	return true
}

// Partition splits items into those available and those blocked for region,
// preserving order.
func Partition[T Restricted](items []T, region string) (available, blocked []T) {
	for _, item := range items {
		b, a := item.Regions()
		if Available(region, b, a) {
			available = append(available, item)
		} else {
			blocked = append(blocked, item)
		}
	}
	return available, blocked
}

// NormalizeRegion uppercases a two-letter region code. Anything else,
// including the Cloudflare "XX" and "T1" placeholders, is unknown.
func NormalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if len(region) != 2 || region == "XX" || region == "T1" {
		return ""
	}
	for _, r := range region {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return region
}

func containsRegion(list []string, region string) bool {
	for _, candidate := range list {
		if strings.EqualFold(strings.TrimSpace(candidate), region) {
			return true
		}
	}
	return false
}
