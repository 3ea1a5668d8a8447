package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"replay/internal/cache"
)

// VideoDetails carries the enrichment fields for one video.
type VideoDetails struct {
	ID             string   `json:"id"`
	ViewCount      *int64   `json:"view_count,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	BlockedRegions []string `json:"blocked_regions,omitempty"`
	AllowedRegions []string `json:"allowed_regions,omitempty"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration          string `json:"duration"`
			RegionRestriction struct {
				Allowed []string `json:"allowed"`
				Blocked []string `json:"blocked"`
			} `json:"regionRestriction"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// VideoDetails fetches statistics and content details for ids, batching 50
// ids per request. Cached entries are served without a request. Unknown ids
// are absent from the result.
func (c *Client) VideoDetails(ctx context.Context, apiKey string, ids []string) (map[string]VideoDetails, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	details := make(map[string]VideoDetails, len(ids))
	var pending []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, seen := details[id]; seen {
			continue
		}
		if cached, ok := cache.GetJSON[VideoDetails](ctx, c.cache, c.detailsKey(id)); ok {
			details[id] = cached
			continue
		}
		pending = append(pending, id)
	}

	for start := 0; start < len(pending); start += MaxPageSize {
		end := min(start+MaxPageSize, len(pending))
		params := url.Values{}
		params.Set("part", "statistics,contentDetails")
		params.Set("id", strings.Join(pending[start:end], ","))
		params.Set("key", apiKey)

		var payload videosResponse
		if err := c.get(ctx, "videos", params, &payload); err != nil {
			return details, fmt.Errorf("list video details: %w", err)
		}
		for _, item := range payload.Items {
			d := VideoDetails{
				ID:             item.ID,
				Duration:       FormatDuration(item.ContentDetails.Duration),
				BlockedRegions: item.ContentDetails.RegionRestriction.Blocked,
				AllowedRegions: item.ContentDetails.RegionRestriction.Allowed,
			}
			if views, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
				d.ViewCount = &views
			}
			details[item.ID] = d
			cache.SetJSON(ctx, c.cache, c.detailsKey(item.ID), d)
		}
	}
	return details, nil
}

func (c *Client) detailsKey(id string) string {
	return c.cache.Key("yt-video", id)
}
