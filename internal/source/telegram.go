// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/request"
)

// telegramBase is the public Telegram web preview.
const telegramBase = "https://t.me"

// Telegram fetches the latest posts of a public channel through the t.me/s
// web preview. No Telegram credentials are required; private channels are
// not reachable this way.
type Telegram struct {
	HTTPClient *http.Client
	// BaseURL overrides the endpoint in tests.
	BaseURL string
}

// NewTelegram returns a Telegram adapter. httpc may be nil to use the
// default client.
func NewTelegram(httpc *http.Client) *Telegram {
	if httpc == nil {
		httpc = request.DefaultClient
	}
	return &Telegram{HTTPClient: httpc}
}

func (t *Telegram) base() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return telegramBase
}

// Fetch returns up to limit text posts from the channel, newest first. The
// candidate URL is the canonical https://t.me/<channel>/<id> message link.
func (t *Telegram) Fetch(ctx context.Context, src *config.Source, limit int) ([]Item, error) {
	channel := strings.TrimPrefix(strings.TrimSpace(src.Channel), "@")
	if channel == "" {
		return nil, fmt.Errorf("telegram: channel is empty")
	}
	if limit <= 0 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base()+"/s/"+channel, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", request.UserAgent)

	res, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching channel %q: want 200, got %d", channel, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing channel %q: %w", channel, err)
	}

	// The preview page lists messages oldest first; collect them all, then
	// walk backwards so the newest posts win the limit.
	var all []Item
	doc.Find(".tgme_widget_message").Each(func(_ int, sel *goquery.Selection) {
		post, ok := sel.Attr("data-post")
		if !ok {
			return
		}
		text := strings.TrimSpace(sel.Find(".tgme_widget_message_text").Text())
		if text == "" {
			return
		}
		all = append(all, Item{
			Kind:    config.KindTelegram,
			URL:     telegramBase + "/" + post,
			Channel: channel,
			Text:    text,
		})
	})

	var items []Item
	for i := len(all) - 1; i >= 0 && len(items) < limit; i-- {
		items = append(items, all[i])
	}
	return items, nil
}
