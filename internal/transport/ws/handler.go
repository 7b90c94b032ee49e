package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/pipeline"
	"accessworld-server-go/internal/utils"
)

// Analyzer runs the perception pipeline. *pipeline.Orchestrator satisfies it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.PipelineResult
}

// ImageDecoder validates base64 frames. *image.Pipeline satisfies it.
type ImageDecoder interface {
	ProcessBase64(ctx context.Context, data, source string) (*image.Output, error)
}

// AnalyzeHandlerOptions wires an analyze session.
type AnalyzeHandlerOptions struct {
	Analyzer Analyzer
	Images   ImageDecoder
	Logger   *utils.Logger
	// MaxFrameBytes bounds one inbound message; base64 inflates images by 4/3.
	MaxFrameBytes int64
}

// NewAnalyzeBuilder returns a HandlerBuilder serving camera frames one at a time.
func NewAnalyzeBuilder(opts AnalyzeHandlerOptions) HandlerBuilder {
	return func(conn *Connection, _ *http.Request) (SessionHandler, error) {
		if opts.Analyzer == nil || opts.Images == nil {
			return nil, errors.New("analyze handler requires analyzer and image decoder")
		}
		conn.SetReadLimit(opts.MaxFrameBytes)
		return &analyzeHandler{
			id:       uuid.NewString(),
			conn:     conn,
			analyzer: opts.Analyzer,
			images:   opts.Images,
			logger:   opts.Logger,
		}, nil
	}
}

type analyzeHandler struct {
	id       string
	conn     *Connection
	analyzer Analyzer
	images   ImageDecoder
	logger   *utils.Logger
}

func (h *analyzeHandler) GetSessionID() string { return h.id }

func (h *analyzeHandler) Close() {
	_ = h.conn.Close()
}

// Handle 逐帧处理，直到客户端断开或会话被关闭
func (h *analyzeHandler) Handle(ctx context.Context) error {
	for {
		messageType, payload, err := h.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || h.conn.IsClosed() ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return err
		}
		if messageType != websocket.TextMessage {
			h.sendError("", "only text frames are supported")
			continue
		}

		msg, err := decodeMessage(payload)
		if err != nil {
			h.sendError("", "invalid message: "+err.Error())
			continue
		}

		switch strings.ToLower(msg.Type) {
		case TypePing:
			h.send(OutboundMessage{Type: TypePong, RequestID: msg.RequestID})
		case TypeAnalyze:
			h.analyze(ctx, msg)
		default:
			h.sendError(msg.RequestID, "unknown message type: "+msg.Type)
		}
	}
}

func (h *analyzeHandler) analyze(ctx context.Context, msg InboundMessage) {
	requestID := msg.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = pipeline.WithRequestID(ctx, requestID)

	output, err := h.images.ProcessBase64(ctx, msg.Image, "websocket")
	if err != nil {
		h.sendError(requestID, err.Error())
		return
	}

	result := h.analyzer.Run(ctx, pipeline.Request{
		Image:    output.Bytes,
		Language: msg.Language,
		Query:    utils.CleanText(msg.Query),
	})
	h.send(OutboundMessage{Type: TypeResult, RequestID: requestID, Data: &result})
}

func (h *analyzeHandler) sendError(requestID, message string) {
	h.send(OutboundMessage{Type: TypeError, RequestID: requestID, Message: message})
}

func (h *analyzeHandler) send(msg OutboundMessage) {
	data, err := encodeMessage(msg)
	if err != nil {
		h.logger.ErrorTag("WebSocket", "编码消息失败: %v", err)
		return
	}
	if err := h.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.WarnTag("WebSocket", "发送消息失败 session=%s: %v", h.id, err)
	}
}
