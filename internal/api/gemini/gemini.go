// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gemini implements a thin client for the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/contenthub/contentpilot/internal/request"
)

// defaultBaseURL is the hosted Gemini endpoint.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini API.
type Client struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint in tests.
	BaseURL    string
	HTTPClient *http.Client

	scrubber *strings.Replacer
}

// New returns a Gemini client. httpc may be nil to use the default client.
func New(apiKey, model string, httpc *http.Client) *Client {
	var scrubber *strings.Replacer
	if apiKey != "" {
		scrubber = strings.NewReplacer(apiKey, "[EXPUNGED]")
	}
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: httpc,
		scrubber:   scrubber,
	}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return defaultBaseURL
}

// Part is a subunit of generated content.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is a unit of conversation with the model.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends a system instruction and a user message to the model
// and returns the generated text.
func (c *Client) GenerateContent(ctx context.Context, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini: API key is required")
	}

	req := generateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: user}}},
		},
	}
	if system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}

	resp, err := request.Make[generateResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.base() + "/models/" + c.Model + ":generateContent",
		Body:   req,
		Headers: map[string]string{
			"x-goog-api-key": c.APIKey,
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: response contains no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
