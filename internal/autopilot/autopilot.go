// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package autopilot orchestrates one content pipeline pass: discover
// candidates, drop the already-processed ones, generate articles and publish
// them, within the configured caps.
package autopilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/contenthub/contentpilot/internal/article"
	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/filelock"
	"github.com/contenthub/contentpilot/internal/ledger"
	"github.com/contenthub/contentpilot/internal/profile"
	"github.com/contenthub/contentpilot/internal/source"
	"github.com/contenthub/contentpilot/internal/wordpress"
)

// ErrAlreadyRunning indicates another process holds the run lock.
var ErrAlreadyRunning = errors.New("autopilot is already running")

// lockName keys the cross-process run lock in the state directory.
const lockName = "autopilot"

// Run statuses, reported in [Result].
const (
	StatusOK         = "ok"
	StatusDisabled   = "disabled"
	StatusNoSources  = "no_sources"
	StatusDailyLimit = "daily_limit_reached"
	StatusDryRun     = "dry_run"
)

// Result summarizes one pass.
type Result struct {
	Status string

	// Processed is always Published + Drafted.
	Processed int
	Published int
	Drafted   int
	// Skipped counts items that entered processing and failed. It never
	// exceeds len(Errors).
	Skipped int

	// Details holds one line per processed item and per notable run event
	// (an excluded source, the daily cap closing mid-run).
	Details []string

	// Errors holds one message per failed feed, channel or item. Item
	// failures never abort the pass.
	Errors []string

	// Planned lists the queue URLs of a dry run.
	Planned []string
}

// Deduper is the ledger subset the orchestrator needs.
type Deduper interface {
	IsProcessed(ctx context.Context, url string) (bool, error)
	MarkProcessed(ctx context.Context, url, source, title, status string) error
	CountProcessedToday(ctx context.Context, statuses ...string) (int, error)
}

// Fetcher discovers candidates for one source.
type Fetcher interface {
	Fetch(ctx context.Context, src *config.Source, limit int) ([]source.Item, error)
}

// TranscriptFetcher returns the caption text of a YouTube video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Generator produces an article from source material.
type Generator interface {
	Generate(ctx context.Context, prof profile.Profile, material string) (*article.Article, error)
}

// Publisher creates the WordPress post for a generated article.
type Publisher interface {
	Publish(ctx context.Context, art *article.Article, status string) (*wordpress.CreatedPost, error)
}

// Orchestrator runs the content pipeline. All collaborator fields must be
// set, except Transcripts, which is only needed when YouTube sources are
// enabled.
type Orchestrator struct {
	Config *config.Config
	Ledger Deduper

	// Fetchers maps a source kind to its adapter.
	Fetchers    map[string]Fetcher
	Transcripts TranscriptFetcher

	Generator Generator
	Publisher Publisher

	Logger *slog.Logger

	// DryRun stops the pass after queue assembly and reports what would be
	// processed.
	DryRun bool
}

// queued is one deduplicated queue entry with its resolved post status.
type queued struct {
	item   source.Item
	status string
}

// RunOnce executes one pass over the given sources. kinds optionally
// restricts the pass to an explicit subset of source kinds and runs them
// regardless of the global and per-kind enable flags (manual triggers); an
// empty kinds derives the set from the enable flags. A kind whose mode
// resolves to off never runs, even when requested.
//
// Only one pass may run at a time per state directory; a concurrent call
// from another process fails with [ErrAlreadyRunning]. Item-level failures
// are recorded in the result, they never abort the pass.
func (o *Orchestrator) RunOnce(ctx context.Context, sources []*config.Source, kinds []string) (*Result, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	if !o.Config.Autopilot.Enabled && len(kinds) == 0 {
		log.Info("autopilot is disabled")
		return &Result{Status: StatusDisabled}, nil
	}

	selected := o.selectKinds(kinds)
	if len(selected) == 0 || !hasSelectedSource(sources, selected) {
		log.Info("no sources selected")
		return &Result{Status: StatusNoSources}, nil
	}

	dailyLimit := int(o.Config.Autopilot.DailyLimitTotal)
	if dailyLimit > 0 {
		count, err := o.Ledger.CountProcessedToday(ctx, ledger.StatusPublished, ledger.StatusDraft)
		if err != nil {
			return nil, err
		}
		if count >= dailyLimit {
			log.Info("daily limit reached", "count", count, "limit", dailyLimit)
			return &Result{Status: StatusDailyLimit}, nil
		}
	}

	lock, err := filelock.Acquire(o.Config.StateDir, lockName)
	if err != nil {
		if errors.Is(err, filelock.ErrAlreadyLocked) {
			return nil, ErrAlreadyRunning
		}
		return nil, err
	}
	defer lock.Release()

	res := &Result{Status: StatusOK}
	queue := o.assemble(ctx, sources, selected, res, log)

	if max := int(o.Config.Autopilot.MaxPerRun); max > 0 && len(queue) > max {
		queue = queue[:max]
	}

	if o.DryRun {
		res.Status = StatusDryRun
		for _, q := range queue {
			res.Planned = append(res.Planned, q.item.URL)
		}
		log.Info("dry run", "queue", len(res.Planned))
		return res, nil
	}

	if len(queue) == 0 {
		log.Info("nothing new to process")
		return res, nil
	}

	for _, q := range queue {
		if dailyLimit > 0 {
			count, err := o.Ledger.CountProcessedToday(ctx, ledger.StatusPublished, ledger.StatusDraft)
			if err != nil {
				return nil, err
			}
			if count >= dailyLimit {
				res.Details = append(res.Details, fmt.Sprintf("daily limit reached during run: %d/%d", count, dailyLimit))
				log.Info("daily limit reached mid-run", "count", count, "limit", dailyLimit)
				break
			}
		}

		if err := o.processItem(ctx, q, res, log); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", q.item.Kind, q.item.URL, err))
			res.Skipped++
			log.Error("item failed", "kind", q.item.Kind, "url", q.item.URL, "error", err)
		}
	}

	res.Processed = res.Published + res.Drafted
	log.Info("pass finished",
		"processed", res.Processed,
		"published", res.Published,
		"drafted", res.Drafted,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return res, nil
}

// selectKinds resolves the effective kind set to the resolved post status of
// each kind. An explicit kinds list wins over the per-kind enable flags;
// without one, only enabled kinds are selected. Kinds whose mode resolves to
// off are excluded either way.
func (o *Orchestrator) selectKinds(kinds []string) map[string]string {
	selected := make(map[string]string)
	for _, kind := range []string{config.KindRSS, config.KindYouTube, config.KindTelegram} {
		settings := o.kindSettings(kind)
		status, ok := settings.Status()
		if !ok {
			continue
		}
		if len(kinds) > 0 {
			if !slices.Contains(kinds, kind) {
				continue
			}
		} else if !settings.Enabled {
			continue
		}
		selected[kind] = status
	}
	return selected
}

// hasSelectedSource reports whether at least one source definition belongs
// to a selected kind.
func hasSelectedSource(sources []*config.Source, selected map[string]string) bool {
	for _, s := range sources {
		if _, ok := selected[s.Kind]; ok {
			return true
		}
	}
	return false
}

// assemble builds the deduplicated queue, in kind priority order: RSS, then
// YouTube, then Telegram. A failing feed or channel is recorded and skipped,
// it never takes the other sources down with it; an unconfigured source
// (missing credentials) is excluded with a detail line instead of an error.
func (o *Orchestrator) assemble(ctx context.Context, sources []*config.Source, selected map[string]string, res *Result, log *slog.Logger) []queued {
	var queue []queued
	inQueue := make(map[string]bool)

	for _, kind := range []string{config.KindRSS, config.KindYouTube, config.KindTelegram} {
		status, ok := selected[kind]
		if !ok {
			continue
		}
		settings := o.kindSettings(kind)

		fetcher := o.Fetchers[kind]
		if fetcher == nil {
			continue
		}

		for _, src := range config.ByKind(sources, kind) {
			items, err := fetcher.Fetch(ctx, src, int(settings.Limit))
			if err != nil {
				if errors.Is(err, source.ErrNotConfigured) {
					res.Details = append(res.Details, fmt.Sprintf("%s %s: %v", kind, src, err))
					log.Warn("source not configured, excluding", "kind", kind, "source", src.String(), "error", err)
					continue
				}
				res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", kind, src, err))
				log.Error("source failed", "kind", kind, "source", src.String(), "error", err)
				continue
			}

			for _, item := range items {
				if item.URL == "" || inQueue[item.URL] {
					continue
				}
				processed, err := o.Ledger.IsProcessed(ctx, item.URL)
				if err != nil {
					res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", kind, item.URL, err))
					continue
				}
				if processed {
					continue
				}
				inQueue[item.URL] = true
				queue = append(queue, queued{item: item, status: status})
			}
		}
	}

	return queue
}

// processItem generates, publishes and records one queue entry. The ledger
// is only written after a successful publish, so a failed item is retried on
// the next pass.
func (o *Orchestrator) processItem(ctx context.Context, q queued, res *Result, log *slog.Logger) error {
	material, err := o.material(ctx, q.item)
	if err != nil {
		return err
	}

	prof := profile.Resolve(o.Config.Content, q.item.URL)
	art, err := o.Generator.Generate(ctx, prof, material)
	if err != nil {
		return err
	}

	art.HTMLContent = article.InjectAdBlock(art.HTMLContent, o.Config.Ads.Code, int(o.Config.Ads.Paragraph))

	created, err := o.Publisher.Publish(ctx, art, q.status)
	if err != nil {
		return err
	}

	ledgerStatus := ledger.StatusDraft
	if q.status == "publish" {
		ledgerStatus = ledger.StatusPublished
	}
	if err := o.Ledger.MarkProcessed(ctx, q.item.URL, q.item.Kind, art.SEOTitle, ledgerStatus); err != nil {
		return err
	}

	switch q.status {
	case "publish":
		res.Published++
	default:
		res.Drafted++
	}
	res.Details = append(res.Details, fmt.Sprintf("%s %s -> %s (%s)", q.item.Kind, q.item.URL, q.status, created.Link))
	log.Info("item processed", "kind", q.item.Kind, "url", q.item.URL, "post", created.Link, "status", q.status)
	return nil
}

// material builds the generation input for one item.
func (o *Orchestrator) material(ctx context.Context, item source.Item) (string, error) {
	switch item.Kind {
	case config.KindRSS:
		var b strings.Builder
		b.WriteString(item.Title)
		if item.Summary != "" {
			b.WriteString("\n\n")
			b.WriteString(item.Summary)
		}
		return b.String(), nil

	case config.KindYouTube:
		if o.Transcripts == nil {
			return "", fmt.Errorf("transcripts are not available")
		}
		transcript, err := o.Transcripts.Fetch(ctx, item.VideoID)
		if err != nil {
			return "", err
		}
		if item.Title != "" {
			return item.Title + "\n\n" + transcript, nil
		}
		return transcript, nil

	case config.KindTelegram:
		return item.Text, nil
	}

	return "", fmt.Errorf("unknown source kind %q", item.Kind)
}

func (o *Orchestrator) kindSettings(kind string) config.SourceSettings {
	switch kind {
	case config.KindRSS:
		return o.Config.Autopilot.RSS
	case config.KindYouTube:
		return o.Config.Autopilot.YouTube
	case config.KindTelegram:
		return o.Config.Autopilot.Telegram
	}
	return config.SourceSettings{}
}
