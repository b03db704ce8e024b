// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package article turns source material into a publish-ready article using a
// text generation model.
package article

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/contenthub/contentpilot/internal/profile"
)

// Article is one generated article with its SEO fields.
type Article struct {
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
	FocusKeyword   string `json:"focus_keyword"`
	HTMLContent    string `json:"html_content"`
}

// TextGenerator produces model output for a system and a user message. Both
// the OpenAI and the Gemini clients satisfy it.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// TextGeneratorFunc adapts a function to the TextGenerator interface.
type TextGeneratorFunc func(ctx context.Context, system, user string) (string, error)

func (f TextGeneratorFunc) Generate(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

const systemPrompt = `You are an experienced online magazine editor. You rewrite source material into an original, well-structured article. You never invent facts that are not in the source material and never copy it verbatim.

Respond with a single JSON object and nothing else. The object must have exactly these keys:
- "seo_title": the article title, at most 60 characters
- "seo_description": a meta description, at most 160 characters
- "focus_keyword": the main keyword phrase, 2-4 words
- "html_content": the article body as HTML, using <p>, <h2>, <h3>, <ul>, <li> tags only`

// Generator generates articles in the resolved content profile.
type Generator struct {
	Text   TextGenerator
	Logger *slog.Logger
}

// New returns an article generator on top of the given text model.
func New(text TextGenerator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{Text: text, Logger: logger}
}

// Generate produces an article from the source material, following the
// profile. Unparseable model output degrades to a plain-text fallback article
// instead of failing the item.
func (g *Generator) Generate(ctx context.Context, prof profile.Profile, material string) (*Article, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("article: source material is empty")
	}

	system := systemPrompt + "\n\n" + prof.PromptBlock()

	raw, err := g.Text.Generate(ctx, system, material)
	if err != nil {
		return nil, err
	}

	art, err := parseArticle(raw)
	if err != nil {
		g.Logger.Warn("model output is not valid JSON, using fallback article", "error", err)
		art = fallbackArticle(raw)
	}
	if strings.TrimSpace(art.HTMLContent) == "" {
		return nil, fmt.Errorf("article: generated article is empty")
	}
	return art, nil
}

// parseArticle decodes the model output, tolerating Markdown code fences
// around the JSON object.
func parseArticle(raw string) (*Article, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	var art Article
	if err := json.Unmarshal([]byte(s), &art); err != nil {
		return nil, err
	}
	return &art, nil
}

// fallbackArticle wraps raw model output into a minimal article: the first
// line becomes the title, the full text becomes escaped paragraphs.
func fallbackArticle(raw string) *Article {
	raw = strings.TrimSpace(raw)

	title := raw
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if len([]rune(title)) > 60 {
		title = string([]rune(title)[:60])
	}

	var b strings.Builder
	for _, para := range strings.Split(raw, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>\n")
	}

	return &Article{
		SEOTitle:    title,
		HTMLContent: strings.TrimSpace(b.String()),
	}
}

// InjectAdBlock inserts code after the paragraph-th closing </p> tag of
// content. When content has fewer paragraphs, the code is appended at the
// end. Empty code or a non-positive paragraph leaves content unchanged.
func InjectAdBlock(content, code string, paragraph int) string {
	code = strings.TrimSpace(code)
	if code == "" || paragraph <= 0 {
		return content
	}

	rest := content
	offset := 0
	for n := 0; n < paragraph; n++ {
		i := strings.Index(rest, "</p>")
		if i < 0 {
			return content + "\n" + code
		}
		offset += i + len("</p>")
		rest = content[offset:]
	}

	return content[:offset] + "\n" + code + "\n" + content[offset:]
}
