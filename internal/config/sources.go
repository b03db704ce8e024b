// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Source kinds, in queue priority order.
const (
	KindRSS      = "rss"
	KindYouTube  = "youtube"
	KindTelegram = "telegram"
)

// Source is one content source defined in the Starlark sources file.
type Source struct {
	Kind string
	// URL is the feed URL for RSS sources.
	URL string
	// Channel is the channel handle or ID for YouTube and Telegram sources.
	Channel string
	Title   string
	// BlockRule and KeepRule optionally filter RSS candidates. A block rule
	// returning true drops the item; a keep rule returning false drops it.
	BlockRule *starlark.Function
	KeepRule  *starlark.Function
}

func (s *Source) String() string {
	if s.Kind == KindRSS {
		return fmt.Sprintf("<%s url=%q>", s.Kind, s.URL)
	}
	return fmt.Sprintf("<%s channel=%q>", s.Kind, s.Channel)
}

func (s *Source) Type() string          { return "source" }
func (s *Source) Freeze()               {} // immutable
func (s *Source) Truth() starlark.Bool  { return starlark.Bool(s.URL != "" || s.Channel != "") }
func (s *Source) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", s.Type()) }

func rssBuiltin(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) > 0 {
		return nil, errors.New("rss: unexpected positional arguments")
	}
	s := &Source{Kind: KindRSS}
	if err := starlark.UnpackArgs("rss", args, kwargs,
		"url", &s.URL,
		"title?", &s.Title,
		"block_rule?", &s.BlockRule,
		"keep_rule?", &s.KeepRule,
	); err != nil {
		return nil, err
	}
	return s, nil
}

func channelBuiltin(kind string) func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: unexpected positional arguments", kind)
		}
		s := &Source{Kind: kind}
		if err := starlark.UnpackArgs(kind, args, kwargs,
			"channel", &s.Channel,
			"title?", &s.Title,
		); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// ParseSources parses a Starlark sources file. The file must define a
// "sources" list built from the rss, youtube and telegram builtins:
//
//	sources = [
//	    rss(url = "https://example.com/feed.xml"),
//	    youtube(channel = "@somechannel"),
//	    telegram(channel = "somechannel"),
//	]
func ParseSources(filename string, src []byte, print func(string)) ([]*Source, error) {
	if print == nil {
		print = func(string) {}
	}
	globals, err := starlark.ExecFileOptions(
		&syntax.FileOptions{
			TopLevelControl: true,
		},
		&starlark.Thread{
			Print: func(_ *starlark.Thread, msg string) { print(msg) },
		},
		filename,
		src,
		starlark.StringDict{
			"rss":      starlark.NewBuiltin("rss", rssBuiltin),
			"youtube":  starlark.NewBuiltin("youtube", channelBuiltin(KindYouTube)),
			"telegram": starlark.NewBuiltin("telegram", channelBuiltin(KindTelegram)),
		},
	)
	if err != nil {
		return nil, err
	}

	sourcesList, ok := globals["sources"].(*starlark.List)
	if !ok {
		return nil, errors.New("sources must be defined and be a list")
	}

	var sources []*Source

	iter := sourcesList.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		source, ok := elem.(*Source)
		if !ok {
			continue
		}
		if source.Kind == KindRSS {
			if _, err := url.Parse(source.URL); err != nil {
				return nil, fmt.Errorf("invalid URL %q of source %q", source.URL, source.Title)
			}
		}
		sources = append(sources, source)
	}

	return sources, nil
}

// LoadSources reads and parses the Starlark sources file at path. A missing
// file yields no sources.
func LoadSources(path string, print func(string)) ([]*Source, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ParseSources(path, src, print)
}

// ByKind returns the sources of the given kind, preserving file order.
func ByKind(sources []*Source, kind string) []*Source {
	var out []*Source
	for _, s := range sources {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
