// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package images generates cover images for published articles.
package images

import (
	"context"
	"fmt"
	"strings"

	"github.com/contenthub/contentpilot/internal/config"
)

// ImageModel generates one image from a prompt. The OpenAI client satisfies
// it.
type ImageModel interface {
	GenerateImage(ctx context.Context, model, prompt, size string) ([]byte, error)
}

// defaultPromptTemplate is used when the configuration does not set one.
// {title} and {keyword} are substituted from the article.
const defaultPromptTemplate = `A wide editorial cover illustration for an article titled "{title}" about {keyword}. Clean modern digital art, no text, no letters, no watermarks.`

// Generator produces cover images per the image settings.
type Generator struct {
	Model    ImageModel
	Settings config.ImageSettings
}

// New returns a cover image generator.
func New(model ImageModel, settings config.ImageSettings) *Generator {
	return &Generator{Model: model, Settings: settings}
}

// Cover generates a cover image for an article. keyword may be empty; the
// title is then used for both placeholders.
func (g *Generator) Cover(ctx context.Context, title, keyword string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("images: article title is empty")
	}
	if keyword = strings.TrimSpace(keyword); keyword == "" {
		keyword = title
	}

	tmpl := g.Settings.PromptTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = defaultPromptTemplate
	}
	prompt := strings.NewReplacer(
		"{title}", title,
		"{keyword}", keyword,
	).Replace(tmpl)

	return g.Model.GenerateImage(ctx, g.Settings.Model, prompt, normalizeSize(g.Settings.Model, g.Settings.Size))
}

// normalizeSize maps DALL·E-era sizes to the ones gpt-image models accept.
func normalizeSize(model, size string) string {
	if !strings.HasPrefix(model, "gpt-image") {
		return size
	}
	switch size {
	case "1792x1024":
		return "1536x1024"
	case "1024x1792":
		return "1024x1536"
	}
	return size
}
