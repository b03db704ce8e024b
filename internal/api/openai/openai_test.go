// © 2025 Contenthub Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package openai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contenthub/contentpilot/internal/testutil"
)

func TestChatCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer testkey" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		testutil.AssertEqual(t, req.Model, "gpt-4o")
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		fmt.Fprint(w, `{"choices":[{"message":{"content":"generated text"}}]}`)
	}))
	t.Cleanup(srv.Close)

	c := New("testkey", srv.URL, "gpt-4o", srv.Client())
	got, err := c.ChatCompletion(t.Context(), "be terse", "write something")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, "generated text")
}

func TestChatCompletionNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	t.Cleanup(srv.Close)

	c := New("testkey", srv.URL, "gpt-4o", srv.Client())
	if _, err := c.ChatCompletion(t.Context(), "", "hi"); err == nil {
		t.Fatal("want an error for an empty choices list")
	}
}

func TestChatCompletionRequiresAPIKey(t *testing.T) {
	t.Parallel()

	c := New("", "", "gpt-4o", nil)
	if _, err := c.ChatCompletion(t.Context(), "", "hi"); err == nil {
		t.Fatal("want an error without an API key")
	}
}

func TestChatCompletionScrubsKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key supersecret", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := New("supersecret", srv.URL, "gpt-4o", srv.Client())
	_, err := c.ChatCompletion(t.Context(), "", "hi")
	if err == nil {
		t.Fatal("want an error for a 401 response")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Fatalf("error leaks the API key: %q", err)
	}
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()

	want := []byte("\x89PNG fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			http.NotFound(w, r)
			return
		}

		var req imageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		testutil.AssertEqual(t, req.Model, "gpt-image-1")
		testutil.AssertEqual(t, req.Size, "1024x1024")
		// gpt-image-1 rejects response_format.
		testutil.AssertEqual(t, req.ResponseFormat, "")

		fmt.Fprintf(w, `{"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString(want))
	}))
	t.Cleanup(srv.Close)

	c := New("testkey", srv.URL, "gpt-4o", srv.Client())
	got, err := c.GenerateImage(t.Context(), "gpt-image-1", "a cover image", "1024x1024")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, want)
}

func TestGenerateImageDallERequestsBase64(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		testutil.AssertEqual(t, req.ResponseFormat, "b64_json")
		fmt.Fprintf(w, `{"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString([]byte("img")))
	}))
	t.Cleanup(srv.Close)

	c := New("testkey", srv.URL, "gpt-4o", srv.Client())
	if _, err := c.GenerateImage(t.Context(), "dall-e-3", "a cover image", "1024x1024"); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateImageNoData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	c := New("testkey", srv.URL, "gpt-4o", srv.Client())
	if _, err := c.GenerateImage(t.Context(), "gpt-image-1", "a cover image", ""); err == nil {
		t.Fatal("want an error for an empty data list")
	}
}
