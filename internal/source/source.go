// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package source discovers candidate items from content sources: RSS feeds,
// YouTube channels and Telegram channels.
//
// Each adapter turns one configured source into a list of candidates with a
// stable URL identity. Adapters only discover; deduplication and processing
// are the orchestrator's business.
package source

import "errors"

// ErrNotConfigured marks a source whose adapter lacks required credentials.
// The orchestrator excludes such sources from the pass instead of treating
// them as failures.
var ErrNotConfigured = errors.New("source is not configured")

// Item is one candidate discovered by an adapter. It lives for a single
// orchestrator pass; only its outcome is persisted, via the ledger.
type Item struct {
	// Kind is one of config.KindRSS, config.KindYouTube, config.KindTelegram.
	Kind string
	// URL uniquely identifies the item across sources and runs.
	URL string

	Title string

	// Summary is the RSS entry summary, converted to Markdown.
	Summary string
	// FeedURL is the RSS feed the item came from.
	FeedURL string

	// Channel is the YouTube or Telegram channel the item came from.
	Channel string
	// VideoID is set for YouTube items.
	VideoID string
	// PublishedAt is the upstream publication timestamp, when known.
	PublishedAt string

	// Text is the Telegram post body.
	Text string
}
