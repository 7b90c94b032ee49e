package ws

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	handleErr error
	closes    atomic.Int32
}

func (h *stubHandler) Handle(ctx context.Context) error { return h.handleErr }

func (h *stubHandler) Close() { h.closes.Add(1) }

func (h *stubHandler) GetSessionID() string { return "cam-1" }

func TestSessionRunReportsHandlerError(t *testing.T) {
	boom := errors.New("read failed")
	h := &stubHandler{handleErr: boom}
	s := NewSession(context.Background(), h, nil, nil)

	var got error
	s.Run(func(err error) { got = err })

	assert.Equal(t, "cam-1", s.ID())
	assert.ErrorIs(t, got, boom)
	assert.ErrorIs(t, context.Cause(s.Context()), boom)
	assert.EqualValues(t, 1, h.closes.Load())
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	h := &stubHandler{}
	s := NewSession(context.Background(), h, nil, nil)

	s.Close(nil)
	s.Close(errors.New("second"))

	require.Error(t, s.Context().Err())
	assert.ErrorIs(t, context.Cause(s.Context()), ErrSessionShutdown)
	assert.EqualValues(t, 1, h.closes.Load())
}

func TestSessionOutlivesParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := NewSession(parent, &stubHandler{}, nil, nil)
	cancel()

	assert.NoError(t, s.Context().Err())
	s.Close(nil)
}
