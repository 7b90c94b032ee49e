package asr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	text string
	err  error
}

func (s stubProvider) Transcribe(context.Context, []byte, string) (string, error) { return s.text, s.err }
func (s stubProvider) Name() string                                               { return "stub" }

func TestTranscribe(t *testing.T) {
	out := NewService(stubProvider{text: " Is it safe\nto cross? "}, nil).Transcribe(context.Background(), []byte("audio"), "q.webm")
	assert.False(t, out.Degraded)
	assert.Equal(t, "Is it safe to cross?", out.Value)
}

func TestTranscribeFailureReturnsEmpty(t *testing.T) {
	out := NewService(stubProvider{err: errors.New("whisper down")}, nil).Transcribe(context.Background(), []byte("audio"), "q.webm")
	assert.True(t, out.Degraded)
	assert.Equal(t, "", out.Value)
	assert.ErrorContains(t, out.Err, "whisper down")
}

func TestTranscribeEmptyAudio(t *testing.T) {
	out := NewService(stubProvider{text: "x"}, nil).Transcribe(context.Background(), nil, "")
	assert.True(t, out.Degraded)
}

func TestTranscribeSilenceIsNotDegraded(t *testing.T) {
	out := NewService(stubProvider{text: "  "}, nil).Transcribe(context.Background(), []byte("audio"), "q.wav")
	assert.False(t, out.Degraded)
	assert.Empty(t, out.Value)
}
