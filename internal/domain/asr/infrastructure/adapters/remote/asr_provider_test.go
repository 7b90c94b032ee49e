package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessworld-server-go/internal/platform/inference"
)

func TestRemoteTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("audio")
		require.NoError(t, err)
		assert.Equal(t, "audio.webm", hdr.Filename)
		assert.Equal(t, "en", r.FormValue("language"))
		_, _ = w.Write([]byte(`{"text":"describe the scene"}`))
	}))
	defer srv.Close()

	text, err := NewProvider(inference.NewClient(srv.URL), "en").Transcribe(context.Background(), []byte("a"), "")
	require.NoError(t, err)
	assert.Equal(t, "describe the scene", text)
}
