package youtube_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"replay/internal/cache"
	"replay/internal/youtube"
)

const playlistPayload = `{
  "nextPageToken": "NEXT",
  "items": [
    {
      "snippet": {
        "title": "Arsenal 2-1 Chelsea | Highlights",
        "description": "All the goals",
        "channelId": "UCG5qGWdu8nIRZqJ_GgDwQ-w",
        "channelTitle": "Premier League",
        "publishedAt": "2025-03-02T20:00:00Z",
        "thumbnails": {"medium": {"url": "https://img/m.jpg"}, "high": {"url": "https://img/h.jpg"}},
        "resourceId": {"videoId": "vid1"}
      },
      "contentDetails": {"videoId": "vid1", "videoPublishedAt": "2025-03-02T19:30:00Z"}
    },
    {
      "snippet": {"title": "Private video", "resourceId": {"videoId": "vid2"}},
      "contentDetails": {"videoId": "vid2"}
    }
  ]
}`

func fastRetry() youtube.Option {
	return youtube.WithRetry(youtube.RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})
}

func TestPlaylistItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlistItems" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("playlistId") != "UUabc" || q.Get("key") != "key-1" || q.Get("maxResults") != "50" || q.Get("pageToken") != "TOKEN" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(playlistPayload))
	}))
	defer server.Close()

	client, err := youtube.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	page, err := client.PlaylistItems(context.Background(), "key-1", "UUabc", "TOKEN", 0)
	if err != nil {
		t.Fatalf("PlaylistItems: %v", err)
	}
	if page.NextPageToken != "NEXT" {
		t.Fatalf("unexpected next token %q", page.NextPageToken)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected private video to be skipped, got %d items", len(page.Items))
	}
	item := page.Items[0]
	if item.VideoID != "vid1" || item.ChannelTitle != "Premier League" {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.ThumbnailURL != "https://img/h.jpg" {
		t.Fatalf("expected high thumbnail, got %q", item.ThumbnailURL)
	}
	want := time.Date(2025, 3, 2, 19, 30, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(want) {
		t.Fatalf("expected video publish time %v, got %v", want, item.PublishedAt)
	}
}

func TestQuotaErrorsAreClassifiedAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"reason":"quotaExceeded"}]}}`))
	}))
	defer server.Close()

	client, err := youtube.New(server.URL, fastRetry())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.PlaylistItems(context.Background(), "key", "UUabc", "", 50)
	if !youtube.IsQuotaError(err) {
		t.Fatalf("expected quota error, got %v", err)
	}
	var apiErr *youtube.APIError
	if !errors.As(err, &apiErr) || apiErr.Reason != "quotaExceeded" || apiErr.Status != 403 {
		t.Fatalf("expected APIError details, got %#v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("quota errors must not be retried, got %d calls", calls.Load())
	}
}

func TestForbiddenWithoutQuotaReasonIsNotQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden","errors":[{"reason":"playlistItemsNotAccessible"}]}}`))
	}))
	defer server.Close()

	client, _ := youtube.New(server.URL, fastRetry())
	_, err := client.PlaylistItems(context.Background(), "key", "UUabc", "", 50)
	if err == nil || youtube.IsQuotaError(err) {
		t.Fatalf("expected non-quota error, got %v", err)
	}
}

func TestRateLimitIsRetriedWithSameKey(t *testing.T) {
	var calls atomic.Int32
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Rate limit exceeded.","errors":[{"reason":"rateLimitExceeded"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client, _ := youtube.New(server.URL, fastRetry())
	if _, err := client.PlaylistItems(context.Background(), "key-1", "UUabc", "", 50); err != nil {
		t.Fatalf("expected rate limit to clear on retry, got %v", err)
	}
	if calls.Load() != 2 || keys[0] != "key-1" || keys[1] != "key-1" {
		t.Fatalf("unexpected retries calls=%d keys=%v", calls.Load(), keys)
	}
}

func TestPersistentRateLimitIsNotQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Rate limit exceeded.","errors":[{"reason":"rateLimitExceeded"}]}}`))
	}))
	defer server.Close()

	client, _ := youtube.New(server.URL, fastRetry())
	_, err := client.PlaylistItems(context.Background(), "key-1", "UUabc", "", 50)
	if err == nil || youtube.IsQuotaError(err) {
		t.Fatalf("expected a transient rate limit error, got %v", err)
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client, _ := youtube.New(server.URL, fastRetry())
	page, err := client.PlaylistItems(context.Background(), "key", "UUabc", "", 50)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(page.Items) != 0 || calls.Load() != 2 {
		t.Fatalf("unexpected result items=%d calls=%d", len(page.Items), calls.Load())
	}
}

func TestVideoDetailsBatchesAndCaches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if part := r.URL.Query().Get("part"); part != "statistics,contentDetails" {
			t.Errorf("unexpected part %q", part)
		}
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		if len(ids) != 2 {
			t.Errorf("expected 2 ids, got %v", ids)
		}
		_, _ = w.Write([]byte(`{"items":[
		  {"id":"a","statistics":{"viewCount":"1500000"},"contentDetails":{"duration":"PT10M5S","regionRestriction":{"blocked":["US"]}}},
		  {"id":"b","statistics":{},"contentDetails":{"duration":"PT1H2M3S","regionRestriction":{"allowed":["GB","IE"]}}}
		]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	client, _ := youtube.New(server.URL, youtube.WithCache(cache.New(ctx, cache.Options{TTL: time.Minute}, nil)))
	details, err := client.VideoDetails(ctx, "key", []string{"a", "b", "a"})
	if err != nil {
		t.Fatalf("VideoDetails: %v", err)
	}
	a := details["a"]
	if a.ViewCount == nil || *a.ViewCount != 1_500_000 || a.Duration != "10:05" || len(a.BlockedRegions) != 1 {
		t.Fatalf("unexpected details for a: %+v", a)
	}
	b := details["b"]
	if b.ViewCount != nil || b.Duration != "1:02:03" || len(b.AllowedRegions) != 2 {
		t.Fatalf("unexpected details for b: %+v", b)
	}

	if _, err := client.VideoDetails(ctx, "key", []string{"a", "b"}); err != nil {
		t.Fatalf("cached VideoDetails: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected cached second call, got %d requests", calls.Load())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"PT4M13S":  "4:13",
		"PT1H0M0S": "1:00:00",
		"PT45S":    "0:45",
		"PT2H":     "2:00:00",
		"P1D":      "P1D",
		"":         "",
	}
	for input, want := range tests {
		if got := youtube.FormatDuration(input); got != want {
			t.Errorf("FormatDuration(%q) = %q, want %q", input, got, want)
		}
	}
}
