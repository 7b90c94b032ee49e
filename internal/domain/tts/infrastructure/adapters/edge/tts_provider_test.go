package edge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

type fakeStream struct {
	audio []byte
	err   error
	delay time.Duration
}

func (f fakeStream) Stream() ([]byte, error) {
	time.Sleep(f.delay)
	return f.audio, f.err
}

func withStream(p *Provider, s fakeStream, gotText *string) *Provider {
	p.communicate = func(text string, _ ...edge_tts.CommunicateOption) (streamer, error) {
		*gotText = text
		return s, nil
	}
	return p
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	var text string
	p := withStream(NewProvider(Config{}, nil), fakeStream{audio: []byte("mp3")}, &text)

	audio, err := p.Synthesize(context.Background(), "Path appears clear.")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
	assert.Equal(t, "Path appears clear.", text)
	assert.Equal(t, "en-US-AriaNeural", p.Voice())
}

func TestSynthesizeErrors(t *testing.T) {
	var text string
	p := withStream(NewProvider(Config{Voice: "en-GB-SoniaNeural"}, nil), fakeStream{err: errors.New("ws closed")}, &text)
	_, err := p.Synthesize(context.Background(), "hello")
	assert.ErrorContains(t, err, "ws closed")

	p = withStream(NewProvider(Config{}, nil), fakeStream{}, &text)
	_, err = p.Synthesize(context.Background(), "hello")
	assert.Error(t, err)

	_, err = p.Synthesize(context.Background(), "")
	assert.Error(t, err)
}

func TestSynthesizeHonoursContext(t *testing.T) {
	var text string
	p := withStream(NewProvider(Config{}, nil), fakeStream{audio: []byte("late"), delay: 200 * time.Millisecond}, &text)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Synthesize(ctx, "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
