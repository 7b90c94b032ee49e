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

func TestRemoteCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := r.FormFile("image")
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"caption":"a man riding a bicycle"}`))
	}))
	defer srv.Close()

	p := NewProvider(inference.NewClient(srv.URL))
	text, err := p.Caption(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "a man riding a bicycle", text)
}
