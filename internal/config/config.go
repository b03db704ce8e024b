// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads and validates contentpilot configuration.
//
// Scalar settings live in a YAML file and are decoded once, at startup, into
// an immutable [Config]. Content sources (feeds and channels) live in a
// separate Starlark file, see sources.go.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Int is an int that tolerates malformed YAML values: a value that can't be
// parsed as an integer keeps the declared default instead of failing the
// whole config load.
type Int int

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Int) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*i = Int(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*i = Int(n)
		}
	}
	return nil
}

// SourceSettings holds per-source autopilot policy.
type SourceSettings struct {
	Enabled bool `yaml:"enabled"`
	// Mode is the publish policy: "publish", "draft", or anything else to
	// keep the source off.
	Mode        string `yaml:"mode"`
	PollMinutes Int    `yaml:"poll_minutes"`
	// Limit caps how many candidates are fetched per feed or channel.
	Limit Int `yaml:"limit"`
}

// Status resolves the source mode to a WordPress post status. ok is false
// when the mode keeps the source off.
func (s SourceSettings) Status() (status string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case "publish":
		return "publish", true
	case "draft":
		return "draft", true
	}
	return "", false
}

// AutopilotSettings holds run-level autopilot policy.
type AutopilotSettings struct {
	Enabled bool `yaml:"enabled"`
	// MaxPerRun caps how many items one run may process; 0 means no cap.
	MaxPerRun Int `yaml:"max_per_run"`
	// DailyLimitTotal caps how many items may be published or drafted per
	// day across all sources; 0 means no cap.
	DailyLimitTotal Int            `yaml:"daily_limit_total"`
	RSS             SourceSettings `yaml:"rss"`
	YouTube         SourceSettings `yaml:"youtube"`
	Telegram        SourceSettings `yaml:"telegram"`
}

// OpenAISettings configures the OpenAI-compatible provider.
type OpenAISettings struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// GeminiSettings configures the Gemini provider.
type GeminiSettings struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// WordPressSettings configures the publishing target.
type WordPressSettings struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	// Password is a WordPress application password.
	Password string `yaml:"password"`
}

// ContentSettings configures the content profile axes. Each axis accepts a
// fixed value or "random".
type ContentSettings struct {
	Language string `yaml:"language"`
	Style    string `yaml:"style"`
	Format   string `yaml:"format"`
	Mood     string `yaml:"mood"`
	// TargetLengthChars is a soft length hint; 0 disables it.
	TargetLengthChars Int `yaml:"target_length_chars"`
	HeadingsH2        Int `yaml:"headings_h2"`
	HeadingsH3        Int `yaml:"headings_h3"`
}

// AdsSettings configures ad-block injection into generated HTML.
type AdsSettings struct {
	Code string `yaml:"code"`
	// Paragraph is the paragraph number after which the ad block is
	// inserted.
	Paragraph Int `yaml:"paragraph"`
}

// ImageSettings configures cover image generation.
type ImageSettings struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	Size           string `yaml:"size"`
	PromptTemplate string `yaml:"prompt_template"`
}

// Config is the full contentpilot configuration. It is decoded and defaulted
// once at load time and treated as read-only afterwards; per-run variations
// (like the resolved post status) are derived values, never mutations.
type Config struct {
	// StateDir holds the run lock and the dedup ledger database.
	StateDir string `yaml:"state_dir"`
	// SourcesFile is the path to the Starlark source definitions.
	SourcesFile string `yaml:"sources_file"`

	Autopilot AutopilotSettings `yaml:"autopilot"`

	// Provider selects the article generator: "openai" or "gemini".
	Provider string         `yaml:"provider"`
	OpenAI   OpenAISettings `yaml:"openai"`
	Gemini   GeminiSettings `yaml:"gemini"`

	YouTubeAPIKey string `yaml:"youtube_api_key"`

	WordPress WordPressSettings `yaml:"wordpress"`
	Content   ContentSettings   `yaml:"content"`
	Ads       AdsSettings       `yaml:"ads"`
	Images    ImageSettings     `yaml:"images"`
}

// Default returns the configuration defaults.
func Default() *Config {
	c := &Config{
		SourcesFile: "sources.star",
		Provider:    "openai",
	}
	c.Autopilot.MaxPerRun = 3
	c.Autopilot.DailyLimitTotal = 10
	c.Autopilot.RSS = SourceSettings{Enabled: true, Mode: "draft", PollMinutes: 10, Limit: 3}
	c.Autopilot.YouTube = SourceSettings{Mode: "draft", PollMinutes: 10, Limit: 3}
	c.Autopilot.Telegram = SourceSettings{Mode: "draft", PollMinutes: 10, Limit: 3}
	c.OpenAI.BaseURL = "https://api.openai.com/v1"
	c.OpenAI.Model = "gpt-4o"
	c.Gemini.Model = "gemini-1.5-flash"
	c.Content = ContentSettings{Language: "ru", Style: "professional", Format: "article", Mood: "neutral"}
	c.Ads.Paragraph = 3
	c.Images.Model = "gpt-image-1"
	c.Images.Size = "1024x1024"
	return c
}

// Load reads the YAML configuration at path. A missing file yields the
// defaults; a present file is decoded on top of them, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	c.normalize()
	return c, nil
}

// normalize clamps negative caps to zero, matching the convention that zero
// means "no cap".
func (c *Config) normalize() {
	for _, v := range []*Int{
		&c.Autopilot.MaxPerRun,
		&c.Autopilot.DailyLimitTotal,
		&c.Autopilot.RSS.Limit,
		&c.Autopilot.YouTube.Limit,
		&c.Autopilot.Telegram.Limit,
	} {
		if *v < 0 {
			*v = 0
		}
	}
	for _, v := range []*Int{
		&c.Autopilot.RSS.PollMinutes,
		&c.Autopilot.YouTube.PollMinutes,
		&c.Autopilot.Telegram.PollMinutes,
	} {
		if *v < 1 {
			*v = 1
		}
	}
}
