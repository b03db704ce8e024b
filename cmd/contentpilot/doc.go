// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Contentpilot watches content sources (RSS feeds, YouTube channels and
Telegram channels), turns new items into articles with a text generation
model and publishes them to a WordPress site.

Sources are defined in a Starlark file, by default sources.star:

	sources = [
	    rss(url = "https://example.com/feed.xml"),
	    youtube(channel = "@somechannel"),
	    telegram(channel = "somechannel"),
	]

Everything else lives in a YAML configuration file, by default
contentpilot.yaml. Omitted keys keep their defaults; a missing file runs
entirely on defaults.

Run a single pass:

	$ contentpilot -once

See what a pass would do, without generating or publishing anything:

	$ contentpilot -once -dry

Run specific kinds regardless of the enable switches, for example after
adding a new channel:

	$ contentpilot -once -kinds youtube,telegram

Without -once, contentpilot keeps running and polls each source kind on its
own interval, reloading the configuration and the sources before each pass.
It exits with code 2 when a -once pass had source or item failures.
*/
package main

import (
	_ "embed"

	"github.com/contenthub/contentpilot/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
