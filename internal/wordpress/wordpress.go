// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package wordpress publishes articles to a WordPress site through its REST
// API, authenticated with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/contenthub/contentpilot/internal/request"
)

// Client talks to the WordPress REST API of one site.
type Client struct {
	// BaseURL is the site URL, without the /wp-json suffix.
	BaseURL  string
	Username string
	// Password is a WordPress application password.
	Password   string
	HTTPClient *http.Client

	scrubber *strings.Replacer
}

// New returns a WordPress client. httpc may be nil to use the default client.
func New(baseURL, username, password string, httpc *http.Client) *Client {
	var scrubber *strings.Replacer
	if password != "" {
		scrubber = strings.NewReplacer(password, "[EXPUNGED]")
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Username:   username,
		Password:   password,
		HTTPClient: httpc,
		scrubber:   scrubber,
	}
}

func (c *Client) authorization() string {
	creds := c.Username + ":" + c.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

// PostMeta carries the Yoast SEO fields of a post.
type PostMeta struct {
	YoastTitle        string `json:"_yoast_wpseo_title,omitempty"`
	YoastMetaDesc     string `json:"_yoast_wpseo_metadesc,omitempty"`
	YoastFocusKeyword string `json:"_yoast_wpseo_focuskw,omitempty"`
}

// Post is the payload for creating a post.
type Post struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Status        string   `json:"status"`
	Excerpt       string   `json:"excerpt,omitempty"`
	FeaturedMedia int      `json:"featured_media,omitempty"`
	Meta          PostMeta `json:"meta"`
}

// CreatedPost is the relevant part of the create-post response.
type CreatedPost struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// CreatePost creates a post and returns its ID and link.
func (c *Client) CreatePost(ctx context.Context, p Post) (*CreatedPost, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("wordpress: site URL is required")
	}

	created, err := request.Make[CreatedPost](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.BaseURL + "/wp-json/wp/v2/posts",
		Body:   p,
		Headers: map[string]string{
			"Authorization": c.authorization(),
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("wordpress: create post response contains no post ID")
	}
	return &created, nil
}

// UploadMedia uploads an image to the media library and returns its
// attachment ID. The body is sent raw, so this bypasses the JSON request
// helper.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int, error) {
	if c.BaseURL == "" {
		return 0, fmt.Errorf("wordpress: site URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	req.Header.Set("User-Agent", request.UserAgent)

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = request.DefaultClient
	}
	res, err := httpc.Do(req)
	if err != nil {
		return 0, c.scrub(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, c.scrub(err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return 0, c.scrub(fmt.Errorf("wordpress: uploading %q: want 2xx, got %d: %s", filename, res.StatusCode, body))
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &media); err != nil {
		return 0, c.scrub(err)
	}
	if media.ID == 0 {
		return 0, fmt.Errorf("wordpress: upload response contains no media ID")
	}
	return media.ID, nil
}

func (c *Client) scrub(err error) error {
	if c.scrubber == nil {
		return err
	}
	return fmt.Errorf("%s", c.scrubber.Replace(err.Error()))
}
