package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionSendsImageDataURL(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000000000")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "vision-model", body["model"])
		raw, _ := json.Marshal(body["messages"])
		assert.Contains(t, string(raw), "data:image/png;base64,")
		assert.Contains(t, string(raw), "visually impaired")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" a crosswalk with a red light "},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "vision-model"}, nil)
	require.NoError(t, err)

	text, err := p.Caption(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "a crosswalk with a red light", text)
	assert.Equal(t, "openai:vision-model", p.Name())
}

func TestCaptionPropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{APIKey: "k", BaseURL: srv.URL, Model: "m"}, nil)
	require.NoError(t, err)
	_, err = p.Caption(context.Background(), []byte("jpeg"))
	assert.Error(t, err)
}

func TestNewProviderRequiresModel(t *testing.T) {
	_, err := NewProvider(Config{}, nil)
	assert.Error(t, err)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "png", imageFormat([]byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, "gif", imageFormat([]byte("GIF89a")))
	assert.Equal(t, "jpeg", imageFormat([]byte{0xff, 0xd8, 0xff}))
}
