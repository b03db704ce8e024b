// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package images

import (
	"context"
	"strings"
	"testing"

	"github.com/contenthub/contentpilot/internal/config"
	"github.com/contenthub/contentpilot/internal/testutil"
)

type fakeModel struct {
	model, prompt, size string
}

func (f *fakeModel) GenerateImage(_ context.Context, model, prompt, size string) ([]byte, error) {
	f.model, f.prompt, f.size = model, prompt, size
	return []byte("image bytes"), nil
}

func TestCover(t *testing.T) {
	t.Parallel()

	fake := &fakeModel{}
	g := New(fake, config.ImageSettings{Model: "gpt-image-1", Size: "1024x1024"})

	got, err := g.Cover(t.Context(), "A title", "some keyword")
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, got, []byte("image bytes"))
	testutil.AssertEqual(t, fake.model, "gpt-image-1")
	testutil.AssertEqual(t, fake.size, "1024x1024")
	if !strings.Contains(fake.prompt, `"A title"`) || !strings.Contains(fake.prompt, "some keyword") {
		t.Fatalf("prompt misses the article fields: %q", fake.prompt)
	}
}

func TestCoverCustomTemplate(t *testing.T) {
	t.Parallel()

	fake := &fakeModel{}
	g := New(fake, config.ImageSettings{
		Model:          "gpt-image-1",
		PromptTemplate: "cover for {title} / {keyword}",
	})

	if _, err := g.Cover(t.Context(), "T", "K"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, fake.prompt, "cover for T / K")
}

func TestCoverEmptyKeywordFallsBackToTitle(t *testing.T) {
	t.Parallel()

	fake := &fakeModel{}
	g := New(fake, config.ImageSettings{PromptTemplate: "{title}|{keyword}"})

	if _, err := g.Cover(t.Context(), "A title", "  "); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, fake.prompt, "A title|A title")
}

func TestCoverEmptyTitle(t *testing.T) {
	t.Parallel()

	g := New(&fakeModel{}, config.ImageSettings{})
	if _, err := g.Cover(t.Context(), " ", "k"); err == nil {
		t.Fatal("want an error for an empty title")
	}
}

func TestNormalizeSize(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		model, size, want string
	}{
		"gpt-image wide":      {"gpt-image-1", "1792x1024", "1536x1024"},
		"gpt-image tall":      {"gpt-image-1", "1024x1792", "1024x1536"},
		"gpt-image square":    {"gpt-image-1", "1024x1024", "1024x1024"},
		"dall-e keeps legacy": {"dall-e-3", "1792x1024", "1792x1024"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertEqual(t, normalizeSize(tc.model, tc.size), tc.want)
		})
	}
}
