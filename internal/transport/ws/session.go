package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"accessworld-server-go/internal/utils"
)

// handlerCloseTimeout bounds how long Close waits for an in-flight analysis.
const handlerCloseTimeout = 5 * time.Second

// SessionHandler serves one upgraded connection until it returns.
type SessionHandler interface {
	Handle(ctx context.Context) error
	Close()
	GetSessionID() string
}

// Session binds an analyze handler to its socket. The first Close wins;
// later calls and the handler's own exit are no-ops.
type Session struct {
	id      string
	handler SessionHandler
	conn    *Connection
	logger  *utils.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	closeOnce sync.Once
}

// NewSession derives the session context from parent without its
// cancellation, since the upgrade request ends right after the handshake.
func NewSession(parent context.Context, handler SessionHandler, conn *Connection, logger *utils.Logger) *Session {
	ctx, cancel := context.WithCancelCause(context.WithoutCancel(parent))
	return &Session{
		id:      handler.GetSessionID(),
		handler: handler,
		conn:    conn,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Session) Context() context.Context { return s.ctx }

func (s *Session) ID() string { return s.id }

// Run blocks on the handler, then closes the session and reports the
// handler error to onDone.
func (s *Session) Run(onDone func(error)) {
	err := s.handler.Handle(s.ctx)
	s.Close(err)
	if onDone != nil {
		onDone(err)
	}
}

// Close cancels the session context with reason, waits for the handler to
// release its resources and closes the socket.
func (s *Session) Close(reason error) {
	s.closeOnce.Do(func() {
		if reason == nil {
			reason = ErrSessionShutdown
		}
		s.cancel(reason)
		s.awaitHandler()
		if s.conn == nil {
			return
		}
		if err := s.conn.Close(); err != nil && !errors.Is(err, ErrSessionShutdown) {
			s.logger.WarnTag("WebSocket", "会话 %s 关闭连接失败: %v", s.id, err)
		}
	})
}

func (s *Session) awaitHandler() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handler.Close()
	}()

	timer := time.NewTimer(handlerCloseTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.WarnTag("WebSocket", "会话 %s 等待分析结束超时", s.id)
	}
}
