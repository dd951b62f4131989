package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
)

func testRequest() llm.ExtractionRequest {
	return llm.ExtractionRequest{
		System: "sos un extractor",
		Parts: []llm.ContentPart{
			{Type: "text", Text: "extrae los items"},
			{Type: "image_url", ImageURL: &llm.ImageURL{URL: "data:image/png;base64,aGk="}},
		},
	}
}

func TestExtractReturnsRawContent(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "```json\n{\"pedido_numero\":\"1\"}\n```"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", MaxTokens: 4000}, nil)
	content, err := c.Extract(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"pedido_numero\":\"1\"}\n```", content)

	// the response-size ceiling always travels with the request
	assert.Equal(t, float64(4000), gotBody["max_tokens"])
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestExtractNon2xxIsRemoteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteService))
}

func TestExtractEmptyChoicesIsRemoteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteService))
}

func TestExtractTimeoutIsRemoteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
	_, err := c.Extract(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteService))
}
