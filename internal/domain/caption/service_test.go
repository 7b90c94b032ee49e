package caption

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	platformerrors "accessworld-server-go/internal/platform/errors"
)

type stubProvider struct {
	text string
	err  error
}

func (s stubProvider) Caption(context.Context, []byte) (string, error) { return s.text, s.err }
func (s stubProvider) Name() string                                    { return "stub" }

func TestCaptionSuccess(t *testing.T) {
	out := NewService(stubProvider{text: "  a dog\n on a  leash "}, nil).Caption(context.Background(), []byte("img"))
	assert.False(t, out.Degraded)
	assert.Equal(t, "a dog on a leash", out.Value)
}

func TestCaptionFailureUsesFallback(t *testing.T) {
	out := NewService(stubProvider{err: errors.New("503")}, nil).Caption(context.Background(), []byte("img"))
	assert.True(t, out.Degraded)
	assert.Equal(t, Fallback, out.Value)
	assert.True(t, platformerrors.IsKind(out.Err, platformerrors.KindProvider))
}

func TestCaptionEmptyIsDegraded(t *testing.T) {
	out := NewService(stubProvider{text: "   "}, nil).Caption(context.Background(), []byte("img"))
	assert.True(t, out.Degraded)
	assert.Equal(t, "Unable to describe the scene.", out.Value)
}
