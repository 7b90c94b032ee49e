package inference

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFileSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "frame.jpg", hdr.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))
		assert.Equal(t, "0.7", r.FormValue("threshold"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"caption":"a hallway"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithAPIKey("secret"))
	var out struct {
		Caption string `json:"caption"`
	}
	err := c.PostFile(context.Background(), "detect", "image", "frame.jpg", []byte("jpeg-bytes"), map[string]string{"threshold": "0.7"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a hallway", out.Caption)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"model":"m","text":"hi"}`, string(body))
		_, _ = w.Write([]byte(`{"translation":"salut"}`))
	}))
	defer srv.Close()

	var out struct {
		Translation string `json:"translation"`
	}
	err := NewClient(srv.URL).PostJSON(context.Background(), "/translate", map[string]string{"model": "m", "text": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "salut", out.Translation)
}

func TestNonOKStatusReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).PostJSON(context.Background(), "", map[string]string{}, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, statusErr.Body, "model not loaded")
}

func TestMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient(srv.URL).PostJSON(context.Background(), "", nil, &out)
	assert.ErrorContains(t, err, "decode response")
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewClient(srv.URL).Health(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, WithTimeout(time.Second)).Health(context.Background()))
}
