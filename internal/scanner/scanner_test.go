package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"replay/internal/keypool"
	"replay/internal/scanner"
	"replay/internal/youtube"
)

type fakeLister struct {
	pages     map[string]*youtube.PlaylistPage
	quotaKeys map[string]bool
	calls     []string
}

func (f *fakeLister) PlaylistItems(_ context.Context, apiKey, playlistID, pageToken string, _ int) (*youtube.PlaylistPage, error) {
	f.calls = append(f.calls, apiKey+"/"+pageToken)
	if f.quotaKeys[apiKey] {
		return nil, &youtube.APIError{Status: 403, Reason: "quotaExceeded"}
	}
	page, ok := f.pages[pageToken]
	if !ok {
		return nil, fmt.Errorf("unexpected page token %q", pageToken)
	}
	return page, nil
}

func at(day int, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func item(id string, published time.Time) youtube.PlaylistItem {
	return youtube.PlaylistItem{VideoID: id, Title: id, PublishedAt: published}
}

func TestWindowFor(t *testing.T) {
	w := scanner.WindowFor(time.Date(2025, 3, 2, 20, 0, 0, 0, time.UTC), 1, 2)
	if !w.Start.Equal(at(1, 0)) || !w.End.Equal(at(5, 0)) {
		t.Fatalf("unexpected window %v - %v", w.Start, w.End)
	}
	if !w.Contains(at(1, 0)) || !w.Contains(at(4, 23)) {
		t.Fatal("window bounds should be inclusive of the first and last day")
	}
	if w.Contains(at(5, 0)) || w.Contains(time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)) {
		t.Fatal("window should exclude adjacent days")
	}
}

func TestScanFiltersWindowAndCapsPages(t *testing.T) {
	lister := &fakeLister{pages: map[string]*youtube.PlaylistPage{
		"":   {Items: []youtube.PlaylistItem{item("future", at(10, 0)), item("in", at(3, 12))}, NextPageToken: "p2"},
		"p2": {Items: []youtube.PlaylistItem{item("old", at(1, 0).Add(-time.Hour))}, NextPageToken: "p3"},
		"p3": {Items: []youtube.PlaylistItem{item("in-late", at(2, 22))}, NextPageToken: "p4"},
		"p4": {Items: []youtube.PlaylistItem{item("beyond-cap", at(2, 21))}},
	}}
	s := scanner.New(lister, scanner.Options{MaxPages: 3, PageSize: 50}, nil)
	items, err := s.Scan(context.Background(), keypool.New([]string{"k1"}), "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 2 || items[0].VideoID != "in" || items[1].VideoID != "in-late" {
		t.Fatalf("unexpected items %+v", items)
	}
	if len(lister.calls) != 3 {
		t.Fatalf("expected 3 page requests, got %v", lister.calls)
	}
}

func TestScanEarlyExitRequiresStaleOrderedPage(t *testing.T) {
	pages := map[string]*youtube.PlaylistPage{
		"":   {Items: []youtube.PlaylistItem{item("pinned", at(3, 0)), item("stale", at(1, 0).AddDate(0, 0, -5))}, NextPageToken: "p2"},
		"p2": {Items: []youtube.PlaylistItem{item("s1", at(1, 0).AddDate(0, 0, -6)), item("s2", at(1, 0).AddDate(0, 0, -7))}, NextPageToken: "p3"},
		"p3": {Items: []youtube.PlaylistItem{item("never", at(2, 0))}},
	}
	lister := &fakeLister{pages: pages}
	s := scanner.New(lister, scanner.Options{MaxPages: 3, EarlyExitOnStalePage: true}, nil)
	items, err := s.Scan(context.Background(), keypool.New([]string{"k1"}), "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 1 || items[0].VideoID != "pinned" {
		t.Fatalf("unexpected items %+v", items)
	}
	if len(lister.calls) != 2 {
		t.Fatalf("expected early exit after page 2, got calls %v", lister.calls)
	}

	unordered := &fakeLister{pages: map[string]*youtube.PlaylistPage{
		"":   {Items: []youtube.PlaylistItem{item("s1", at(1, 0).AddDate(0, 0, -7)), item("s2", at(1, 0).AddDate(0, 0, -6))}, NextPageToken: "p2"},
		"p2": {Items: []youtube.PlaylistItem{item("late-upload", at(3, 0))}},
	}}
	s = scanner.New(unordered, scanner.Options{MaxPages: 3, EarlyExitOnStalePage: true}, nil)
	items, err = s.Scan(context.Background(), keypool.New([]string{"k1"}), "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 1 || items[0].VideoID != "late-upload" {
		t.Fatalf("out-of-order stale page must not stop the scan, got %+v", items)
	}
}

func TestScanRotatesAndRetriesSamePage(t *testing.T) {
	lister := &fakeLister{
		quotaKeys: map[string]bool{"k1": true},
		pages: map[string]*youtube.PlaylistPage{
			"": {Items: []youtube.PlaylistItem{item("in", at(2, 21))}},
		},
	}
	pool := keypool.New([]string{"k1", "k2"})
	s := scanner.New(lister, scanner.Options{}, nil)
	items, err := s.Scan(context.Background(), pool, "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	want := []string{"k1/", "k2/"}
	if len(lister.calls) != 2 || lister.calls[0] != want[0] || lister.calls[1] != want[1] {
		t.Fatalf("unexpected calls %v", lister.calls)
	}
}

func TestScanReportsExhaustionDistinctFromEmpty(t *testing.T) {
	lister := &fakeLister{quotaKeys: map[string]bool{"k1": true, "k2": true}}
	pool := keypool.New([]string{"k1", "k2"})
	s := scanner.New(lister, scanner.Options{}, nil)
	items, err := s.Scan(context.Background(), pool, "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if !errors.Is(err, scanner.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got items=%v err=%v", items, err)
	}
	if !errors.Is(err, keypool.ErrExhausted) {
		t.Fatalf("expected wrapped pool error, got %v", err)
	}
	if len(lister.calls) != 2 {
		t.Fatalf("expected one call per key, got %v", lister.calls)
	}

	_, err = s.Scan(context.Background(), pool, "UUy", scanner.WindowFor(at(2, 20), 1, 2))
	if !errors.Is(err, scanner.ErrExhausted) || len(lister.calls) != 2 {
		t.Fatalf("exhausted pool must not issue requests, err=%v calls=%v", err, lister.calls)
	}
}

func TestScanTransientErrorIsNotExhaustion(t *testing.T) {
	lister := &fakeLister{pages: map[string]*youtube.PlaylistPage{}}
	s := scanner.New(lister, scanner.Options{}, nil)
	_, err := s.Scan(context.Background(), keypool.New([]string{"k1"}), "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err == nil || errors.Is(err, scanner.ErrExhausted) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

type rateLimitedLister struct {
	calls int
}

func (l *rateLimitedLister) PlaylistItems(context.Context, string, string, string, int) (*youtube.PlaylistPage, error) {
	l.calls++
	return nil, &youtube.APIError{Status: 403, Reason: "rateLimitExceeded"}
}

func TestScanRateLimitKeepsKey(t *testing.T) {
	lister := &rateLimitedLister{}
	pool := keypool.New([]string{"k1"})
	s := scanner.New(lister, scanner.Options{}, nil)
	_, err := s.Scan(context.Background(), pool, "UUx", scanner.WindowFor(at(2, 20), 1, 2))
	if err == nil || errors.Is(err, scanner.ErrExhausted) {
		t.Fatalf("expected transient rate limit error, got %v", err)
	}
	if pool.Exhausted() {
		t.Fatal("rate limit must not exhaust the key pool")
	}
	if key, err := pool.Current(); err != nil || key != "k1" {
		t.Fatalf("expected key k1 to stay active, got %q %v", key, err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected a single request, got %d", lister.calls)
	}
}
