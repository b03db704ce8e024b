// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/contenthub/contentpilot/internal/api/gemini"
	"github.com/contenthub/contentpilot/internal/api/openai"
	"github.com/contenthub/contentpilot/internal/article"
	"github.com/contenthub/contentpilot/internal/autopilot"
	"github.com/contenthub/contentpilot/internal/cli"
	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/images"
	"github.com/contenthub/contentpilot/internal/ledger"
	"github.com/contenthub/contentpilot/internal/source"
	"github.com/contenthub/contentpilot/internal/wordpress"
)

func main() { cli.Main(new(app)) }

type app struct {
	configPath  string
	sourcesPath string
	once        bool
	dryRun      bool
	kindsFlag   string
	every       time.Duration
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.configPath, "config", "contentpilot.yaml", "Path to the configuration `file`.")
	fs.StringVar(&a.sourcesPath, "sources", "", "Path to the sources `file`, overriding the configuration.")
	fs.BoolVar(&a.once, "once", false, "Run a single pass and exit.")
	fs.BoolVar(&a.dryRun, "dry", false, "Assemble the queue, but generate and publish nothing.")
	fs.StringVar(&a.kindsFlag, "kinds", "", "Comma-separated source `kinds` to run, bypassing the enable flags (requires -once or -dry).")
	fs.DurationVar(&a.every, "every", 0, "Pass `interval`, overriding the configured poll minutes.")
}

func (a *app) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments", cli.ErrInvalidArgs)
	}

	kinds, err := parseKinds(a.kindsFlag)
	if err != nil {
		return err
	}
	if len(kinds) > 0 && !a.once && !a.dryRun {
		return fmt.Errorf("%w: -kinds requires -once or -dry", cli.ErrInvalidArgs)
	}

	level := slog.LevelInfo
	if a.dryRun {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cfg.StateDir == "" {
		cfg.StateDir = "state"
	}

	ldg, err := ledger.Open(ctx, filepath.Join(cfg.StateDir, "ledger.db"))
	if err != nil {
		return err
	}
	defer ldg.Close()

	if a.once || a.dryRun {
		res, err := a.pass(ctx, cfg, ldg, kinds, logger)
		if err != nil {
			return err
		}
		a.report(env, res)
		if len(res.Errors) > 0 {
			return cli.ExitCode(fmt.Errorf("%d source or item failures", len(res.Errors)), 2)
		}
		return nil
	}

	// Daemon mode: each kind is polled on its own interval. A tick runs one
	// pass over whichever kinds are due, then the configuration is reloaded
	// so edits take effect without a restart.
	allKinds := []string{config.KindRSS, config.KindYouTube, config.KindTelegram}
	lastRun := make(map[string]time.Time, len(allKinds))
	for {
		wait := time.Minute

		if cfg.Autopilot.Enabled {
			now := time.Now()
			var due []string
			for _, kind := range allKinds {
				if now.Sub(lastRun[kind]) >= a.kindInterval(cfg, kind) {
					due = append(due, kind)
				}
			}

			if len(due) > 0 {
				res, err := a.pass(ctx, cfg, ldg, due, logger)
				switch {
				case errors.Is(err, autopilot.ErrAlreadyRunning):
					logger.Warn("skipping pass, another instance is running")
				case err != nil:
					logger.Error("pass failed", "error", err)
				default:
					a.report(env, res)
				}
				// A failed pass still advances the clocks, so a
				// persistently broken kind does not busy-loop.
				now = time.Now()
				for _, kind := range due {
					lastRun[kind] = now
				}
			}

			wait = nextDue(lastRun, now, func(kind string) time.Duration { return a.kindInterval(cfg, kind) })
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
		if cfg.StateDir == "" {
			cfg.StateDir = "state"
		}
	}
}

// nextDue returns how long to sleep until the soonest kind comes due, at
// least a second so a tick never spins.
func nextDue(lastRun map[string]time.Time, now time.Time, interval func(kind string) time.Duration) time.Duration {
	wait := time.Duration(-1)
	for kind, last := range lastRun {
		until := last.Add(interval(kind)).Sub(now)
		if wait < 0 || until < wait {
			wait = until
		}
	}
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// parseKinds validates a comma-separated source kind list.
func parseKinds(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var kinds []string
	for _, k := range strings.Split(value, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		switch k {
		case config.KindRSS, config.KindYouTube, config.KindTelegram:
		default:
			return nil, fmt.Errorf("%w: unknown source kind %q", cli.ErrInvalidArgs, k)
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// pass loads the sources and runs one orchestrator pass over the given
// kinds; a nil kinds derives the set from the enable flags.
func (a *app) pass(ctx context.Context, cfg *config.Config, ldg *ledger.Ledger, kinds []string, logger *slog.Logger) (*autopilot.Result, error) {
	sourcesPath := cfg.SourcesFile
	if a.sourcesPath != "" {
		sourcesPath = a.sourcesPath
	}
	sources, err := config.LoadSources(sourcesPath, func(msg string) { logger.Info(msg) })
	if err != nil {
		return nil, err
	}

	o, err := a.orchestrator(cfg, ldg, logger)
	if err != nil {
		return nil, err
	}
	return o.RunOnce(ctx, sources, kinds)
}

// orchestrator wires the pipeline collaborators from the configuration.
func (a *app) orchestrator(cfg *config.Config, ldg *ledger.Ledger, logger *slog.Logger) (*autopilot.Orchestrator, error) {
	openaiClient := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, nil)

	var text article.TextGenerator
	switch cfg.Provider {
	case "openai":
		text = article.TextGeneratorFunc(openaiClient.ChatCompletion)
	case "gemini":
		text = article.TextGeneratorFunc(gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model, nil).GenerateContent)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	var covers wordpress.CoverGenerator
	if cfg.Images.Enabled {
		covers = images.New(openaiClient, cfg.Images)
	}

	wp := wordpress.New(cfg.WordPress.URL, cfg.WordPress.Username, cfg.WordPress.Password, nil)

	return &autopilot.Orchestrator{
		Config: cfg,
		Ledger: ldg,
		Fetchers: map[string]autopilot.Fetcher{
			config.KindRSS:      source.NewRSS(nil, logger),
			config.KindYouTube:  source.NewYouTube(cfg.YouTubeAPIKey, nil),
			config.KindTelegram: source.NewTelegram(nil),
		},
		Transcripts: source.NewTranscripts(nil),
		Generator:   article.New(text, logger),
		Publisher:   wordpress.NewPublisher(wp, covers, logger),
		Logger:      logger,
		DryRun:      a.dryRun,
	}, nil
}

// kindInterval returns how often one kind is polled: the -every flag when
// set, otherwise the kind's configured poll minutes, never under a minute.
func (a *app) kindInterval(cfg *config.Config, kind string) time.Duration {
	if a.every > 0 {
		return a.every
	}

	var minutes int
	switch kind {
	case config.KindRSS:
		minutes = int(cfg.Autopilot.RSS.PollMinutes)
	case config.KindYouTube:
		minutes = int(cfg.Autopilot.YouTube.PollMinutes)
	case config.KindTelegram:
		minutes = int(cfg.Autopilot.Telegram.PollMinutes)
	}

	d := time.Duration(minutes) * time.Minute
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

func (a *app) report(env *cli.Env, res *autopilot.Result) {
	switch res.Status {
	case autopilot.StatusDryRun:
		fmt.Fprintf(env.Stdout, "dry run: %d items in queue\n", len(res.Planned))
		for _, url := range res.Planned {
			fmt.Fprintf(env.Stdout, "  %s\n", url)
		}
	case autopilot.StatusOK:
		fmt.Fprintf(env.Stdout, "processed %d (published %d, drafted %d), skipped %d, %d errors\n",
			res.Processed, res.Published, res.Drafted, res.Skipped, len(res.Errors))
	default:
		fmt.Fprintf(env.Stdout, "%s\n", res.Status)
	}
	for _, d := range res.Details {
		fmt.Fprintf(env.Stdout, "%s\n", d)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(env.Stdout, "error: %s\n", e)
	}
}
