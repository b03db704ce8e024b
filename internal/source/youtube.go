// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/request"
)

// youtubeAPIBase is the YouTube Data API v3 endpoint.
const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTube discovers the latest uploads of one channel via the Data API:
// channel handle or ID → uploads playlist → playlist items.
type YouTube struct {
	APIKey     string
	HTTPClient *http.Client
	// BaseURL overrides the API endpoint in tests.
	BaseURL string

	// Scrubber removes the API key from error messages.
	Scrubber *strings.Replacer
}

// NewYouTube returns a YouTube adapter. httpc may be nil to use the default
// client.
func NewYouTube(apiKey string, httpc *http.Client) *YouTube {
	var scrubber *strings.Replacer
	if apiKey != "" {
		scrubber = strings.NewReplacer(apiKey, "[EXPUNGED]")
	}
	return &YouTube{
		APIKey:     apiKey,
		HTTPClient: httpc,
		Scrubber:   scrubber,
	}
}

func (y *YouTube) base() string {
	if y.BaseURL != "" {
		return y.BaseURL
	}
	return youtubeAPIBase
}

type youtubeListResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
		} `json:"id"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Fetch returns up to limit candidates from the channel's uploads playlist,
// newest first.
func (y *YouTube) Fetch(ctx context.Context, src *config.Source, limit int) ([]Item, error) {
	if y.APIKey == "" {
		return nil, fmt.Errorf("youtube: %w: API key is required", ErrNotConfigured)
	}
	if limit <= 0 {
		return nil, nil
	}

	ident := extractChannelIdentifier(src.Channel)
	if ident == "" {
		return nil, fmt.Errorf("youtube: channel is empty")
	}

	playlistID, err := y.resolveUploadsPlaylist(ctx, ident)
	if err != nil {
		return nil, err
	}

	resp, err := y.get(ctx, "/playlistItems", url.Values{
		"part":       {"contentDetails,snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, it := range resp.Items {
		if len(items) >= limit {
			break
		}
		videoID := it.ContentDetails.VideoID
		if videoID == "" {
			continue
		}
		publishedAt := it.ContentDetails.VideoPublishedAt
		if publishedAt == "" {
			publishedAt = it.Snippet.PublishedAt
		}
		items = append(items, Item{
			Kind:        config.KindYouTube,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
			Title:       it.Snippet.Title,
			Channel:     ident,
			VideoID:     videoID,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

// resolveUploadsPlaylist resolves a channel identifier (handle "@x" or
// channel ID "UC...") to the channel's uploads playlist ID, falling back to
// a channel search for anything else.
func (y *YouTube) resolveUploadsPlaylist(ctx context.Context, ident string) (string, error) {
	var channelID string

	if handle, ok := strings.CutPrefix(ident, "@"); ok {
		resp, err := y.get(ctx, "/channels", url.Values{
			"part":      {"contentDetails"},
			"forHandle": {handle},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Items) > 0 {
			if uploads := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads; uploads != "" {
				return uploads, nil
			}
		}
		channelID, err = y.searchChannel(ctx, handle)
		if err != nil {
			return "", err
		}
	}

	if channelID == "" && strings.HasPrefix(ident, "UC") {
		channelID = ident
	}

	if channelID == "" {
		var err error
		channelID, err = y.searchChannel(ctx, ident)
		if err != nil {
			return "", err
		}
	}

	if channelID == "" {
		return "", fmt.Errorf("youtube: could not resolve channel id for %q", ident)
	}

	resp, err := y.get(ctx, "/channels", url.Values{
		"part": {"contentDetails"},
		"id":   {channelID},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("youtube: channel not found: %q", ident)
	}
	uploads := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return "", fmt.Errorf("youtube: uploads playlist not found for channel %q", ident)
	}
	return uploads, nil
}

func (y *YouTube) searchChannel(ctx context.Context, query string) (string, error) {
	resp, err := y.get(ctx, "/search", url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"channel"},
		"maxResults": {"1"},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].ID.ChannelID, nil
}

func (y *YouTube) get(ctx context.Context, path string, params url.Values) (youtubeListResponse, error) {
	params.Set("key", y.APIKey)
	return request.Make[youtubeListResponse](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        y.base() + path + "?" + params.Encode(),
		HTTPClient: y.HTTPClient,
		Scrubber:   y.Scrubber,
	})
}

// extractChannelIdentifier normalizes a channel handle, ID or URL to a
// handle ("@x") or a bare identifier.
func extractChannelIdentifier(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	if strings.HasPrefix(value, "@") {
		return value
	}

	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		parsed, err := url.Parse(value)
		if err != nil {
			return value
		}
		var parts []string
		for _, p := range strings.Split(parsed.Path, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
		// Examples:
		//	/@handle
		//	/channel/UCxxxx
		if len(parts) > 0 && strings.HasPrefix(parts[0], "@") {
			return parts[0]
		}
		if len(parts) >= 2 && parts[0] == "channel" {
			return parts[1]
		}
		// /c/... or /user/... fall back to using the last segment as query.
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	return value
}
