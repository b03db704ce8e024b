// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/contenthub/contentpilot/internal/request"
)

// timedTextBase serves YouTube's caption tracks as XML.
const timedTextBase = "https://video.google.com/timedtext"

// Transcript languages tried in order.
var transcriptLanguages = []string{"ru", "uk", "en"}

// Transcripts fetches video captions used as generation input for YouTube
// candidates.
type Transcripts struct {
	HTTPClient *http.Client
	// BaseURL overrides the endpoint in tests.
	BaseURL string
}

// NewTranscripts returns a transcript fetcher. httpc may be nil to use the
// default client.
func NewTranscripts(httpc *http.Client) *Transcripts {
	if httpc == nil {
		httpc = request.DefaultClient
	}
	return &Transcripts{HTTPClient: httpc}
}

func (t *Transcripts) base() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return timedTextBase
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the caption text of videoID, trying each preferred language
// in turn. It fails when no language has a caption track.
func (t *Transcripts) Fetch(ctx context.Context, videoID string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("transcript: video id is empty")
	}

	for _, lang := range transcriptLanguages {
		text, err := t.fetchLang(ctx, videoID, lang)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("transcript: no captions available for video %q", videoID)
}

func (t *Transcripts) fetchLang(ctx context.Context, videoID, lang string) (string, error) {
	params := url.Values{"v": {videoID}, "lang": {lang}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base()+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", request.UserAgent)

	res, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	// A missing caption track comes back as an empty 200 response.
	if res.StatusCode != http.StatusOK {
		return "", nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("transcript: parsing captions for %q: %w", videoID, err)
	}

	var lines []string
	for _, segment := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(segment.Value))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
