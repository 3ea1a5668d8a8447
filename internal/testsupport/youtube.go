package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// FakeVideo is one upload served by FakeYouTube.
type FakeVideo struct {
	ID        string
	Title     string
	Channel   string
	Published time.Time
	Views     int64
	Duration  string
	Blocked   []string
	Allowed   []string
}

// FakeYouTube serves the playlistItems and videos resources of the Data API
// from memory. Keys listed in QuotaKeys answer with quotaExceeded.
type FakeYouTube struct {
	Server *httptest.Server

	mu            sync.Mutex
	feeds         map[string][]FakeVideo
	quotaKeys     map[string]bool
	playlistCalls atomic.Int32
	videoCalls    atomic.Int32
	keysSeen      []string
}

// NewFakeYouTube starts a fake Data API server and registers cleanup.
func NewFakeYouTube(t testing.TB) *FakeYouTube {
	t.Helper()
	fake := &FakeYouTube{
		feeds:     make(map[string][]FakeVideo),
		quotaKeys: make(map[string]bool),
	}
	fake.Server = httptest.NewServer(fake.handler(t))
	t.Cleanup(fake.Server.Close)
	return fake
}

// URL returns the base URL of the fake server.
func (f *FakeYouTube) URL() string {
	return f.Server.URL
}

// AddVideos appends uploads to playlistID.
func (f *FakeYouTube) AddVideos(playlistID string, videos ...FakeVideo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeds[playlistID] = append(f.feeds[playlistID], videos...)
}

// ExhaustKey makes every request with key fail with quotaExceeded.
func (f *FakeYouTube) ExhaustKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotaKeys[key] = true
}

// PlaylistCalls returns the number of playlistItems requests served.
func (f *FakeYouTube) PlaylistCalls() int {
	return int(f.playlistCalls.Load())
}

// VideoCalls returns the number of videos requests served.
func (f *FakeYouTube) VideoCalls() int {
	return int(f.videoCalls.Load())
}

// Calls returns the total number of Data API requests served.
func (f *FakeYouTube) Calls() int {
	return f.PlaylistCalls() + f.VideoCalls()
}

// KeysSeen returns the API keys of every request in arrival order.
func (f *FakeYouTube) KeysSeen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keysSeen...)
}

func (f *FakeYouTube) handler(t testing.TB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		f.mu.Lock()
		f.keysSeen = append(f.keysSeen, key)
		exhausted := f.quotaKeys[key]
		f.mu.Unlock()

		switch r.URL.Path {
		case "/playlistItems":
			f.playlistCalls.Add(1)
		case "/videos":
			f.videoCalls.Add(1)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if exhausted {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"reason":"quotaExceeded"}]}}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/playlistItems" {
			f.writePlaylist(w, r)
			return
		}
		f.writeVideos(w, r)
	})
}

func (f *FakeYouTube) writePlaylist(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	videos := append([]FakeVideo(nil), f.feeds[r.URL.Query().Get("playlistId")]...)
	f.mu.Unlock()

	size, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
	if size <= 0 {
		size = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))
	end := min(offset+size, len(videos))
	if offset > end {
		offset = end
	}

	items := make([]map[string]any, 0, end-offset)
	for _, v := range videos[offset:end] {
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"title":        v.Title,
				"channelTitle": v.Channel,
				"publishedAt":  v.Published.UTC().Format(time.RFC3339),
				"thumbnails":   map[string]any{"high": map[string]string{"url": "https://i.ytimg.com/vi/" + v.ID + "/hqdefault.jpg"}},
				"resourceId":   map[string]string{"videoId": v.ID},
			},
			"contentDetails": map[string]string{
				"videoId":          v.ID,
				"videoPublishedAt": v.Published.UTC().Format(time.RFC3339),
			},
		})
	}
	payload := map[string]any{"items": items}
	if end < len(videos) {
		payload["nextPageToken"] = strconv.Itoa(end)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (f *FakeYouTube) writeVideos(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	byID := make(map[string]FakeVideo)
	for _, feed := range f.feeds {
		for _, v := range feed {
			byID[v.ID] = v
		}
	}
	f.mu.Unlock()

	items := make([]map[string]any, 0)
	for _, id := range strings.Split(r.URL.Query().Get("id"), ",") {
		v, ok := byID[id]
		if !ok {
			continue
		}
		duration := v.Duration
		if duration == "" {
			duration = "PT8M12S"
		}
		restriction := map[string]any{}
		if len(v.Blocked) > 0 {
			restriction["blocked"] = v.Blocked
		}
		if len(v.Allowed) > 0 {
			restriction["allowed"] = v.Allowed
		}
		items = append(items, map[string]any{
			"id":         id,
			"statistics": map[string]string{"viewCount": strconv.FormatInt(v.Views, 10)},
			"contentDetails": map[string]any{
				"duration":          duration,
				"regionRestriction": restriction,
			},
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}
