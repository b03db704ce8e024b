// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package wordpress

import (
	"context"
	"log/slog"

	"github.com/contenthub/contentpilot/internal/article"
)

// CoverGenerator produces a cover image for an article.
type CoverGenerator interface {
	Cover(ctx context.Context, title, keyword string) ([]byte, error)
}

// PostCreator is the Client subset the publisher needs.
type PostCreator interface {
	CreatePost(ctx context.Context, p Post) (*CreatedPost, error)
	UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int, error)
}

// Publisher turns a generated article into a WordPress post, optionally with
// a generated cover image.
type Publisher struct {
	Client PostCreator
	// Covers is nil when image generation is disabled.
	Covers CoverGenerator
	Logger *slog.Logger
}

// NewPublisher returns a publisher. covers may be nil to skip cover images.
func NewPublisher(client PostCreator, covers CoverGenerator, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{Client: client, Covers: covers, Logger: logger}
}

// Publish creates a post from the article with the given status ("publish"
// or "draft"). A cover generation or upload failure degrades to a post
// without a featured image, it never fails the whole item.
func (p *Publisher) Publish(ctx context.Context, art *article.Article, status string) (*CreatedPost, error) {
	post := Post{
		Title:   art.SEOTitle,
		Content: art.HTMLContent,
		Status:  status,
		Excerpt: art.SEODescription,
		Meta: PostMeta{
			YoastTitle:        art.SEOTitle,
			YoastMetaDesc:     art.SEODescription,
			YoastFocusKeyword: art.FocusKeyword,
		},
	}

	if p.Covers != nil {
		if mediaID, err := p.cover(ctx, art); err != nil {
			p.Logger.Warn("cover image failed, posting without one", "title", art.SEOTitle, "error", err)
		} else {
			post.FeaturedMedia = mediaID
		}
	}

	return p.Client.CreatePost(ctx, post)
}

func (p *Publisher) cover(ctx context.Context, art *article.Article) (int, error) {
	img, err := p.Covers.Cover(ctx, art.SEOTitle, art.FocusKeyword)
	if err != nil {
		return 0, err
	}
	return p.Client.UploadMedia(ctx, "cover.png", "image/png", img)
}
