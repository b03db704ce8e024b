// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mmcdole/gofeed"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/request"
)

// RSS fetches the latest entries of one feed.
type RSS struct {
	HTTPClient *http.Client
	Logger     *slog.Logger

	fp   *gofeed.Parser
	conv *md.Converter
}

// NewRSS returns an RSS adapter. httpc may be nil to use the default client.
func NewRSS(httpc *http.Client, logger *slog.Logger) *RSS {
	if httpc == nil {
		httpc = request.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSS{
		HTTPClient: httpc,
		Logger:     logger,
		fp:         gofeed.NewParser(),
		conv:       md.NewConverter("", true, nil),
	}
}

// Fetch returns up to limit candidates from the feed, in feed order. Block
// and keep rules from the source definition are applied here, before the
// candidates reach the orchestrator.
func (r *RSS) Fetch(ctx context.Context, src *config.Source, limit int) ([]Item, error) {
	if limit <= 0 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", request.UserAgent)

	res, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed %q: want 200, got %d", src.URL, res.StatusCode)
	}

	feed, err := r.fp.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", src.URL, err)
	}

	var items []Item
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Link == "" {
			continue
		}

		if src.BlockRule != nil {
			if blocked := r.applyRule(src.BlockRule, entry); blocked {
				r.Logger.Debug("blocked by block rule", "item", entry.Link)
				continue
			}
		}
		if src.KeepRule != nil {
			if keep := r.applyRule(src.KeepRule, entry); !keep {
				r.Logger.Debug("skipped by keep rule", "item", entry.Link)
				continue
			}
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		if markdown, err := r.conv.ConvertString(summary); err == nil {
			summary = markdown
		}

		items = append(items, Item{
			Kind:    config.KindRSS,
			URL:     entry.Link,
			Title:   entry.Title,
			Summary: summary,
			FeedURL: src.URL,
		})
	}

	return items, nil
}

func (r *RSS) applyRule(rule *starlark.Function, entry *gofeed.Item) bool {
	var categories []starlark.Value
	for _, category := range entry.Categories {
		categories = append(categories, starlark.String(category))
	}
	val, err := starlark.Call(
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { r.Logger.Info(msg) },
		},
		rule,
		starlark.Tuple{starlarkstruct.FromStringDict(
			starlarkstruct.Default,
			starlark.StringDict{
				"title":       starlark.String(entry.Title),
				"url":         starlark.String(entry.Link),
				"description": starlark.String(entry.Description),
				"content":     starlark.String(entry.Content),
				"categories":  starlark.NewList(categories),
			},
		)},
		[]starlark.Tuple{},
	)
	if err != nil {
		r.Logger.Warn("applying rule for item", "item", entry.Link, "error", err)
		return false
	}

	ret, ok := val.(starlark.Bool)
	if !ok {
		r.Logger.Warn("rule returned non-boolean value", "item", entry.Link)
		return false
	}
	return bool(ret)
}
