// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package profile resolves the content profile applied to one generation
// call: language, style, format and mood, plus optional soft length and
// heading hints.
//
// An axis configured as "random" is picked deterministically from the seed
// (the candidate URL), so regenerating an article for the same URL always
// reproduces the same profile.
package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/contenthub/contentpilot/internal/config"
)

const randomChoice = "random"

// Axis defaults.
const (
	DefaultLanguage = "ru"
	DefaultStyle    = "professional"
	DefaultFormat   = "article"
	DefaultMood     = "neutral"
)

var languages = map[string]string{
	"ru": "Russian",
	"en": "English",
}

var styles = map[string]string{
	"entertainment": "entertaining, light, engaging",
	"author":        "personal, with the author's own observations (no invented facts)",
	"professional":  "professional, expert, precise and practical",
	"thematic":      "thematic, focused on a narrow niche",
	randomChoice:    "",
}

var formats = map[string]string{
	"article":       "a full article (structured, with conclusions)",
	"post":          "a post (shorter, more dynamic, less filler)",
	"pr":            "a PR piece (presents value, no aggressive promises)",
	"press_release": "a press release (neutral, facts, announcements, optional quotes)",
	"release_notes": "release notes (what's new, who benefits, how to use it)",
	randomChoice:    "",
}

var moods = map[string]string{
	"neutral":    "neutral, calm",
	"serious":    "serious, no jokes or slang",
	"humor":      "with light, appropriate humor",
	"playful":    "playful and friendly, but not overfamiliar",
	randomChoice: "",
}

// Profile is a resolved content profile. All axes hold concrete values;
// "random" is resolved before a Profile is constructed.
type Profile struct {
	Language string
	Style    string
	Format   string
	Mood     string

	// Soft constraints; zero disables them.
	TargetLengthChars int
	HeadingsH2        int
	HeadingsH3        int
}

// Resolve builds the profile for one generation call. seed is the candidate
// URL; it keeps "random" axes stable across retries for the same item.
func Resolve(content config.ContentSettings, seed string) Profile {
	language := normalize(content.Language, languages, DefaultLanguage)
	style := normalize(content.Style, styles, DefaultStyle)
	format := normalize(content.Format, formats, DefaultFormat)
	mood := normalize(content.Mood, moods, DefaultMood)

	if style == randomChoice {
		style = stablePick(choices(styles), seed+"|style")
	}
	if format == randomChoice {
		format = stablePick(choices(formats), seed+"|format")
	}
	if mood == randomChoice {
		mood = stablePick(choices(moods), seed+"|mood")
	}

	return Profile{
		Language:          language,
		Style:             style,
		Format:            format,
		Mood:              mood,
		TargetLengthChars: positive(int(content.TargetLengthChars)),
		HeadingsH2:        positive(int(content.HeadingsH2)),
		HeadingsH3:        positive(int(content.HeadingsH3)),
	}
}

// PromptBlock renders the profile as an instruction block appended to the
// generation system prompt. Length and heading hints are stated as
// approximate, never as hard requirements.
func (p Profile) PromptBlock() string {
	var b strings.Builder
	b.WriteString("### STYLE AND FORMAT SETTINGS:\n")
	fmt.Fprintf(&b, "- Language: %s\n", describe(p.Language, languages))
	fmt.Fprintf(&b, "- Style: %s\n", describe(p.Style, styles))
	fmt.Fprintf(&b, "- Format: %s\n", describe(p.Format, formats))
	fmt.Fprintf(&b, "- Author's mood: %s\n", describe(p.Mood, moods))
	if p.TargetLengthChars > 0 {
		fmt.Fprintf(&b, "- Approximate length: ~%d characters (including spaces), ±20%% is fine\n", p.TargetLengthChars)
	}
	if p.HeadingsH2 > 0 || p.HeadingsH3 > 0 {
		fmt.Fprintf(&b, "- Headings: roughly <h2> × %d and <h3> × %d (±1 is fine)\n", p.HeadingsH2, p.HeadingsH3)
	}
	b.WriteString("Follow these settings, but never at the expense of factual accuracy or readability.")
	return b.String()
}

// stablePick deterministically selects one of options from seed: the first
// eight hex digits of sha256(seed), reduced modulo the option count.
func stablePick(options []string, seed string) string {
	digest := sha256.Sum256([]byte(seed))
	n, _ := strconv.ParseUint(hex.EncodeToString(digest[:])[:8], 16, 64)
	return options[int(n%uint64(len(options)))]
}

func normalize(value string, allowed map[string]string, def string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return def
	}
	if _, ok := allowed[v]; !ok {
		return def
	}
	return v
}

// choices returns the non-random keys of an axis in sorted order, so the
// stable pick indexes a stable list.
func choices(allowed map[string]string) []string {
	out := make([]string, 0, len(allowed))
	for k := range allowed {
		if k == randomChoice {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func describe(value string, allowed map[string]string) string {
	if desc, ok := allowed[value]; ok && desc != "" {
		return desc
	}
	return value
}

func positive(n int) int {
	if n > 0 {
		return n
	}
	return 0
}
