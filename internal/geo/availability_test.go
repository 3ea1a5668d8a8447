package geo_test

import (
	"testing"

	"replay/internal/geo"
)

type video struct {
	id      string
	blocked []string
	allowed []string
}

func (v video) Regions() ([]string, []string) { return v.blocked, v.allowed }

func TestAvailableBlocklist(t *testing.T) {
	blocked := []string{"US"}
	if geo.Available("US", blocked, nil) {
		t.Fatal("expected US to be blocked")
	}
	if !geo.Available("GB", blocked, nil) {
		t.Fatal("expected GB to be available")
	}
	if geo.Available("us", blocked, nil) {
		t.Fatal("region comparison must be case-insensitive")
	}
}

func TestAvailableAllowlist(t *testing.T) {
	allowed := []string{"GB", "IE"}
	for _, region := range []string{"GB", "IE"} {
		if !geo.Available(region, nil, allowed) {
			t.Fatalf("expected %s to be available", region)
		}
	}
	for _, region := range []string{"US", "FR"} {
		if geo.Available(region, nil, allowed) {
			t.Fatalf("expected %s to be unavailable", region)
		}
	}
	if geo.Available("US", []string{"FR"}, allowed) {
		t.Fatal("allowlist must take precedence over blocklist")
	}
}

func TestUnknownRegionFailsOpen(t *testing.T) {
	for _, region := range []string{"", "XX", "T1", "GBR", "1A"} {
		if !geo.Available(region, []string{"US"}, []string{"GB"}) {
			t.Fatalf("unknown region %q must be available", region)
		}
	}
}

func TestPartition(t *testing.T) {
	items := []video{
		{id: "open"},
		{id: "us-blocked", blocked: []string{"US"}},
		{id: "uk-only", allowed: []string{"GB", "IE"}},
	}
	available, blocked := geo.Partition(items, "US")
	if len(available) != 1 || available[0].id != "open" {
		t.Fatalf("unexpected available set: %+v", available)
	}
	if len(blocked) != 2 || blocked[0].id != "us-blocked" || blocked[1].id != "uk-only" {
		t.Fatalf("unexpected blocked set: %+v", blocked)
	}

	available, blocked = geo.Partition(items, "")
	if len(available) != 3 || len(blocked) != 0 {
		t.Fatalf("unknown region should keep everything available, got %d/%d", len(available), len(blocked))
	}
}
