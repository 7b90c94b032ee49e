package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatModelTranslates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		assert.Contains(t, body.Messages[0].Content, "to German")
		assert.Equal(t, "Path appears clear.", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Der Weg scheint frei zu sein."}}]}`))
	}))
	defer srv.Close()

	b, err := NewBackend(Config{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	require.NoError(t, err)
	m, err := b.Load(context.Background(), "de", "Helsinki-NLP/opus-mt-en-de")
	require.NoError(t, err)

	out, err := m.Translate(context.Background(), "Path appears clear.")
	require.NoError(t, err)
	assert.Equal(t, "Der Weg scheint frei zu sein.", out)
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	b, err := NewBackend(Config{Model: "m"})
	require.NoError(t, err)
	_, err = b.Load(context.Background(), "ja", "")
	assert.Error(t, err)
}
