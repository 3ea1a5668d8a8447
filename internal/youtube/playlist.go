package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PlaylistItem is one upload from a channel feed.
type PlaylistItem struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
}

// PlaylistPage is one page of a playlist.
type PlaylistPage struct {
	Items         []PlaylistItem
	NextPageToken string
}

type thumbnail struct {
	URL string `json:"url"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title        string               `json:"title"`
			Description  string               `json:"description"`
			ChannelID    string               `json:"channelId"`
			ChannelTitle string               `json:"channelTitle"`
			PublishedAt  string               `json:"publishedAt"`
			Thumbnails   map[string]thumbnail `json:"thumbnails"`
			ResourceID   struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

var unavailableTitles = map[string]struct{}{
	"private video": {},
	"deleted video": {},
}

// PlaylistItems fetches one page of playlistID using apiKey.
func (c *Client) PlaylistItems(ctx context.Context, apiKey, playlistID, pageToken string, pageSize int) (*PlaylistPage, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, errors.New("playlist id must not be empty")
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("key", apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var payload playlistItemsResponse
	if err := c.get(ctx, "playlistItems", params, &payload); err != nil {
		return nil, fmt.Errorf("list playlist %s: %w", playlistID, err)
	}

	page := &PlaylistPage{NextPageToken: payload.NextPageToken}
	for _, item := range payload.Items {
		snippet := item.Snippet
		if _, skip := unavailableTitles[strings.ToLower(strings.TrimSpace(snippet.Title))]; skip {
			continue
		}
		videoID := snippet.ResourceID.VideoID
		if videoID == "" {
			videoID = item.ContentDetails.VideoID
		}
		if videoID == "" {
			continue
		}
		published := parseTimestamp(item.ContentDetails.VideoPublishedAt)
		if published.IsZero() {
			published = parseTimestamp(snippet.PublishedAt)
		}
		page.Items = append(page.Items, PlaylistItem{
			VideoID:      videoID,
			Title:        snippet.Title,
			Description:  snippet.Description,
			ThumbnailURL: bestThumbnail(snippet.Thumbnails),
			ChannelID:    snippet.ChannelID,
			ChannelTitle: snippet.ChannelTitle,
			PublishedAt:  published,
		})
	}
	return page, nil
}

func bestThumbnail(thumbs map[string]thumbnail) string {
	for _, size := range []string{"high", "medium", "default"} {
		if thumb, ok := thumbs[size]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
