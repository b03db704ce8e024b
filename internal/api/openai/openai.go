// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package openai implements a thin client for the OpenAI API, covering the
// chat completions and image generation endpoints. It also works with any
// OpenAI-compatible server via a custom base URL.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/contenthub/contentpilot/internal/request"
)

// defaultBaseURL is the hosted OpenAI endpoint.
const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible API.
type Client struct {
	APIKey string
	// BaseURL overrides the API endpoint, for compatible servers and tests.
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	scrubber *strings.Replacer
}

// New returns an OpenAI client. httpc may be nil to use the default client.
func New(apiKey, baseURL, model string, httpc *http.Client) *Client {
	var scrubber *strings.Replacer
	if apiKey != "" {
		scrubber = strings.NewReplacer(apiKey, "[EXPUNGED]")
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
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

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.APIKey,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends a system and a user message to the chat completions
// endpoint and returns the assistant reply text.
func (c *Client) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("openai: API key is required")
	}

	resp, err := request.Make[chatResponse](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.base() + "/chat/completions",
		Body: chatRequest{
			Model: c.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		},
		Headers:    c.headers(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: response contains no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n"`
	// ResponseFormat is only accepted by DALL·E models; gpt-image-1 always
	// returns base64.
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage generates one image and returns its raw bytes.
func (c *Client) GenerateImage(ctx context.Context, model, prompt, size string) ([]byte, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	req := imageRequest{
		Model:  model,
		Prompt: prompt,
		Size:   size,
		N:      1,
	}
	if !strings.HasPrefix(model, "gpt-image") {
		req.ResponseFormat = "b64_json"
	}

	resp, err := request.Make[imageResponse](ctx, request.Params{
		Method:     http.MethodPost,
		URL:        c.base() + "/images/generations",
		Body:       req,
		Headers:    c.headers(),
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai: response contains no image data")
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: decoding image data: %w", err)
	}
	return img, nil
}
