package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessworld-server-go/internal/platform/inference"
)

func TestMarianLoadAndTranslate(t *testing.T) {
	var loads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Helsinki-NLP/opus-mt-en-fr", body["model"])
		switch r.URL.Path {
		case "/load":
			loads.Add(1)
			w.WriteHeader(http.StatusNoContent)
		case "/translate":
			assert.Equal(t, "Path appears clear.", body["text"])
			_, _ = w.Write([]byte(`{"translation":"Le chemin semble dégagé."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	b := NewBackend(inference.NewClient(srv.URL))
	m, err := b.Load(context.Background(), "fr", "Helsinki-NLP/opus-mt-en-fr")
	require.NoError(t, err)
	out, err := m.Translate(context.Background(), "Path appears clear.")
	require.NoError(t, err)

	assert.Equal(t, "Le chemin semble dégagé.", out)
	assert.Equal(t, int32(1), loads.Load())
}

func TestMarianLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewBackend(inference.NewClient(srv.URL)).Load(context.Background(), "fr", "Helsinki-NLP/opus-mt-en-fr")
	assert.Error(t, err)
}
